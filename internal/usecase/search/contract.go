package search

import (
	"context"

	"github.com/kailas-cloud/reportdex/internal/domain"
	"github.com/kailas-cloud/reportdex/internal/domain/search/query"
	"github.com/kailas-cloud/reportdex/internal/domain/search/result"
)

// Executor runs a compiled query against an index and returns one page of hits.
// Hits come back in relevance order with highlight fragments when the query asks for them.
type Executor interface {
	Execute(ctx context.Context, q query.Query, page, size int) (result.Hits, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
