package report

import (
	"context"

	"github.com/kailas-cloud/reportdex/internal/domain"
	domreport "github.com/kailas-cloud/reportdex/internal/domain/report"
)

// Repository persists reports into the search index.
type Repository interface {
	EnsureIndex(ctx context.Context) error
	Save(ctx context.Context, r *domreport.Report) error
	Get(ctx context.Context, id string) (domreport.Report, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// LanguageDetector picks the description field a report is indexed under.
type LanguageDetector interface {
	Detect(text string) domreport.Language
}
