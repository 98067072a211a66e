package report

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/reportdex/internal/domain"
	dombatch "github.com/kailas-cloud/reportdex/internal/domain/batch"
	domreport "github.com/kailas-cloud/reportdex/internal/domain/report"
	"github.com/kailas-cloud/reportdex/internal/metrics"
)

// Defaults for bulk ingestion.
const (
	DefaultWorkers = 4
	MaxBatchSize   = 1000
)

// Service confirms analysis reports and indexes them for search.
type Service struct {
	repo     Repository
	embed    Embedder
	detector LanguageDetector
	workers  int
	now      func() time.Time
	logger   *zap.Logger
}

// New creates a report service. embed may be nil; reports are then indexed without vectors.
func New(repo Repository, embed Embedder, detector LanguageDetector, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		embed:    embed,
		detector: detector,
		workers:  DefaultWorkers,
		now:      time.Now,
		logger:   logger,
	}
}

// WithWorkers configures the bulk ingestion pool size.
func (s *Service) WithWorkers(n int) *Service {
	if n > 0 {
		s.workers = n
	}
	return s
}

// EnsureIndex creates the search index if missing.
func (s *Service) EnsureIndex(ctx context.Context) error {
	if err := s.repo.EnsureIndex(ctx); err != nil {
		return fmt.Errorf("ensure index: %w", err)
	}
	return nil
}

// Index validates a report, routes its description by language, vectorizes it and
// writes it to the index. A failed embedding is logged and the report is stored
// without a vector, so it stays reachable by text search.
func (s *Service) Index(ctx context.Context, in domreport.Input) (domreport.Report, error) {
	r, err := domreport.New(in)
	if err != nil {
		return domreport.Report{}, fmt.Errorf("%w: %w", domain.ErrInvalidReport, err)
	}
	if r.ID() == "" {
		r.SetID(uuid.NewString())
	}
	r.SetLanguage(s.detector.Detect(r.BehaviorDescription()))
	s.vectorize(ctx, &r)
	r.SetConfirmedAt(s.now().UTC())

	if err := s.repo.Save(ctx, &r); err != nil {
		return domreport.Report{}, fmt.Errorf("save report %s: %w", r.ID(), err)
	}

	metrics.ReportsIndexedTotal.
		WithLabelValues(string(r.Language()), strconv.FormatBool(len(r.Vector()) > 0)).
		Inc()
	s.logger.Debug("Report indexed",
		zap.String("id", r.ID()),
		zap.String("language", string(r.Language())),
		zap.Bool("vectorized", len(r.Vector()) > 0),
	)
	return r, nil
}

func (s *Service) vectorize(ctx context.Context, r *domreport.Report) {
	if s.embed == nil {
		return
	}
	text := r.EmbeddingText()
	if text == "" {
		return
	}
	res, err := s.embed.Embed(ctx, text)
	if err != nil {
		s.logger.Warn("Report embedding failed, indexing without vector",
			zap.String("id", r.ID()),
			zap.Error(err),
		)
		return
	}
	domain.UsageFromContext(ctx).Record(res.TotalTokens)
	r.SetVector(res.Embedding)
}

// Get returns an indexed report.
func (s *Service) Get(ctx context.Context, id string) (domreport.Report, error) {
	r, err := s.repo.Get(ctx, id)
	if err != nil {
		return domreport.Report{}, fmt.Errorf("get report %s: %w", id, err)
	}
	return r, nil
}

// IndexBatch indexes reports concurrently on a bounded worker pool.
// Results come back in input order; one bad item never fails the others.
func (s *Service) IndexBatch(ctx context.Context, items []domreport.Input) []dombatch.Result {
	results := make([]dombatch.Result, len(items))
	if len(items) == 0 {
		return results
	}
	if len(items) > MaxBatchSize {
		err := fmt.Errorf("batch size %d exceeds %d: %w", len(items), MaxBatchSize, domain.ErrInvalidReport)
		for i, in := range items {
			results[i] = dombatch.NewError(i, in.ID, err)
		}
		return results
	}

	pool, err := ants.NewPool(min(s.workers, len(items)))
	if err != nil {
		for i, in := range items {
			results[i] = dombatch.NewError(i, in.ID, fmt.Errorf("create worker pool: %w", err))
		}
		return results
	}
	defer pool.Release()

	// ctx may carry a usage collector, which is not safe for concurrent use
	var usageMu sync.Mutex
	usage := domain.UsageFromContext(ctx)

	var wg sync.WaitGroup
	for i, in := range items {
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				results[i] = dombatch.NewError(i, in.ID, err)
				return
			}
			itemCtx, itemUsage := domain.NewContextWithUsage(ctx)
			r, err := s.Index(itemCtx, in)
			if usage != nil {
				usageMu.Lock()
				usage.TotalTokens += itemUsage.TotalTokens
				usage.Calls += itemUsage.Calls
				usageMu.Unlock()
			}
			if err != nil {
				results[i] = dombatch.NewError(i, in.ID, err)
				return
			}
			results[i] = dombatch.NewOK(i, r.ID())
		})
		if submitErr != nil {
			wg.Done()
			results[i] = dombatch.NewError(i, in.ID, fmt.Errorf("submit: %w", submitErr))
		}
	}
	wg.Wait()

	sum := dombatch.Summarize(results)
	s.logger.Info("Bulk index finished",
		zap.Int("total", len(items)),
		zap.Int("ok", sum.OK),
		zap.Int("failed", sum.Failed),
	)
	return results
}
