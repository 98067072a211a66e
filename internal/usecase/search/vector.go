package search

import (
	"github.com/kailas-cloud/reportdex/internal/domain/search/field"
	"github.com/kailas-cloud/reportdex/internal/domain/search/query"
)

// Nearest-neighbour parameters of the similarity path.
const (
	KNNCandidates = 100
	KNNK          = 10
	KNNBoost      = 10.0
	KNNMaxResults = 5
)

// CompileVector builds the nearest-neighbour query for a query embedding.
func CompileVector(embedding []float32) query.Query {
	return query.NewNearest(query.KNN{
		Field:         field.VectorizedContent,
		Vector:        embedding,
		K:             KNNK,
		NumCandidates: KNNCandidates,
		Boost:         KNNBoost,
		MaxResults:    KNNMaxResults,
	})
}
