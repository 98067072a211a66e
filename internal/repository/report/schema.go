package report

import (
	"github.com/kailas-cloud/reportdex/internal/db"
	"github.com/kailas-cloud/reportdex/internal/domain/search/field"
)

// Keyspace of confirmed reports.
const (
	KeyPrefix = "report:"
	IndexName = "reports:idx"
)

// Stored hash attributes that are not searchable fields.
const (
	attrTitle       = "title"
	attrLanguage    = "language"
	attrConfirmedAt = "confirmedAt"
)

// HNSWConfig HNSW index parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Key returns the hash key of a report.
func Key(id string) string {
	return KeyPrefix + id
}

// Schema builds the FT index over report hashes. Every searchable field is TEXT;
// fields compared by keyword also get a case-sensitive and a case-folded TAG twin
// over the same hash attribute.
func Schema(vectorDim int, hnsw HNSWConfig) *db.IndexDefinition {
	b := db.NewIndex(IndexName).Prefix(KeyPrefix).NoStopwords()
	for _, spec := range field.Table() {
		b.Text(spec.Name())
		if spec.HasExact() {
			b.TagAs(spec.Name(), spec.Name()+field.ExactSuffix, true)
			b.TagAs(spec.Name(), spec.Name()+field.FoldedSuffix, false)
		}
	}
	b.Numeric(attrConfirmedAt)
	b.VectorHNSW(field.VectorizedContent, vectorDim, db.DistanceCosine, hnsw.M, hnsw.EFConstruct)
	return b.MustBuild()
}

// ProjectionFields lists the hash attributes returned with a hit. The vector is left out.
func ProjectionFields() []string {
	out := []string{attrTitle}
	out = append(out, field.Names()...)
	return append(out, attrLanguage, attrConfirmedAt)
}
