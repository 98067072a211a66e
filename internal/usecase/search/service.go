package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/reportdex/internal/domain"
	"github.com/kailas-cloud/reportdex/internal/domain/search/match"
	"github.com/kailas-cloud/reportdex/internal/domain/search/mode"
	"github.com/kailas-cloud/reportdex/internal/domain/search/query"
	"github.com/kailas-cloud/reportdex/internal/domain/search/request"
	"github.com/kailas-cloud/reportdex/internal/domain/search/result"
	"github.com/kailas-cloud/reportdex/internal/metrics"
)

// DefaultExecTimeout bounds a single executor call.
const DefaultExecTimeout = 5 * time.Second

// Service compiles search requests and runs them through the executor.
type Service struct {
	exec    Executor
	embed   Embedder
	logger  *zap.Logger
	timeout time.Duration
}

// Option configures the search service.
type Option func(*Service)

// WithExecTimeout overrides DefaultExecTimeout. Non-positive values are ignored.
func WithExecTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New creates a search service. embed may be nil; vector requests then return empty pages.
func New(exec Executor, embed Embedder, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{exec: exec, embed: embed, logger: logger, timeout: DefaultExecTimeout}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Search runs a free-text query, or a similarity query when the request asks for it.
// A blank query returns an empty page without touching the executor.
func (s *Service) Search(ctx context.Context, req request.Search) (result.Page, error) {
	if req.Blank() {
		return result.EmptyPage(req.Page(), req.PageSize()), nil
	}
	if req.Vector() {
		return s.searchVector(ctx, req)
	}

	q, err := CompileFreeText(req.Query())
	if err != nil {
		metrics.SearchMalformedTotal.WithLabelValues(string(mode.FreeText)).Inc()
		return result.Page{}, err
	}
	metrics.SearchQueriesTotal.WithLabelValues(string(mode.FreeText), freeTextShape(q)).Inc()

	return s.execute(ctx, q, req.Page(), req.PageSize())
}

// SearchExpression runs a 3-element boolean expression [field:value, OP, field:value].
func (s *Service) SearchExpression(
	ctx context.Context, operands []string, page, size int,
) (result.Page, error) {
	req, err := request.New(strings.Join(operands, " "), page, size, false)
	if err != nil {
		metrics.SearchMalformedTotal.WithLabelValues(string(mode.Boolean)).Inc()
		return result.Page{}, fmt.Errorf("%w: %w", domain.ErrMalformedQuery, err)
	}

	q, err := CompileBoolean(operands)
	if err != nil {
		metrics.SearchMalformedTotal.WithLabelValues(string(mode.Boolean)).Inc()
		return result.Page{}, err
	}
	metrics.SearchQueriesTotal.WithLabelValues(
		string(mode.Boolean), strings.ToLower(strings.TrimSpace(operands[1])),
	).Inc()

	return s.execute(ctx, q, req.Page(), req.PageSize())
}

// searchVector degrades to an empty page when the query cannot be embedded.
func (s *Service) searchVector(ctx context.Context, req request.Search) (result.Page, error) {
	if s.embed == nil {
		metrics.SearchDegradedTotal.WithLabelValues("embedding_disabled").Inc()
		return result.EmptyPage(req.Page(), req.PageSize()), nil
	}

	res, err := s.embed.Embed(ctx, req.Query())
	if err != nil || len(res.Embedding) == 0 {
		s.logger.Warn("Query embedding failed, returning empty page",
			zap.Int("query_len", len(req.Query())),
			zap.Error(err),
		)
		metrics.SearchDegradedTotal.WithLabelValues("embedding_failed").Inc()
		return result.EmptyPage(req.Page(), req.PageSize()), nil
	}
	domain.UsageFromContext(ctx).Record(res.TotalTokens)

	q := CompileVector(res.Embedding)
	metrics.SearchQueriesTotal.WithLabelValues(string(mode.Vector), "knn").Inc()

	return s.execute(ctx, q, req.Page(), req.PageSize())
}

func (s *Service) execute(ctx context.Context, q query.Query, page, size int) (result.Page, error) {
	if err := q.Validate(); err != nil {
		return result.Page{}, fmt.Errorf("%w: %w", domain.ErrMalformedQuery, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	hits, err := s.exec.Execute(ctx, q, page, size)
	elapsed := time.Since(start)

	status := "ok"
	if err != nil {
		status = "error"
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			status = "timeout"
		}
	}
	metrics.SearchExecutorDuration.WithLabelValues(string(q.Kind()), status).Observe(elapsed.Seconds())

	if err != nil {
		s.logger.Error("Search executor failed",
			zap.String("kind", string(q.Kind())),
			zap.String("status", status),
			zap.Duration("duration", elapsed),
			zap.Error(err),
		)
		if status == "timeout" && !errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %w", err, context.DeadlineExceeded)
		}
		return result.Page{}, fmt.Errorf("%w: %w", domain.ErrExecutorFailure, err)
	}

	return assemble(hits, q, page, size), nil
}

// freeTextShape: only term queries carry fuzzy clauses.
func freeTextShape(q query.Query) string {
	for _, c := range q.Clauses() {
		if c.Mode() == match.Fuzzy {
			return "term"
		}
	}
	return "phrase"
}
