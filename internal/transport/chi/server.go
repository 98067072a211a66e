package chi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/reportdex/internal/domain"
	domreport "github.com/kailas-cloud/reportdex/internal/domain/report"
	"github.com/kailas-cloud/reportdex/internal/domain/search/request"
	"github.com/kailas-cloud/reportdex/internal/domain/search/result"
	"github.com/kailas-cloud/reportdex/internal/transport/dto"
	healthuc "github.com/kailas-cloud/reportdex/internal/usecase/health"
)

// maxBodyBytes bounds request bodies; descriptions are capped well below this.
const maxBodyBytes = 1 << 20

// SearchService runs free-text, similarity and boolean searches.
type SearchService interface {
	Search(ctx context.Context, req request.Search) (result.Page, error)
	SearchExpression(ctx context.Context, operands []string, page, size int) (result.Page, error)
}

// ReportService indexes and fetches reports.
type ReportService interface {
	Index(ctx context.Context, in domreport.Input) (domreport.Report, error)
	Get(ctx context.Context, id string) (domreport.Report, error)
}

// HealthService aggregates component health.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}

// Server serves the reportdex HTTP API.
type Server struct {
	search  SearchService
	reports ReportService
	health  HealthService
	logger  *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(search SearchService, reports ReportService, health HealthService, logger *zap.Logger) *Server {
	return &Server{search: search, reports: reports, health: health, logger: logger}
}

// Routes mounts the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/search", s.Search)
		r.Post("/search/expression", s.SearchExpression)
		r.Post("/index/confirm", s.ConfirmReport)
		r.Get("/reports/{id}", s.GetReport)
	})
}

// searchParams are the query parameters of GET /api/search.
type searchParams struct {
	Q    *string
	Page *int
	Size *int
	KNN  *bool
}

func bindSearchParams(r *http.Request) (searchParams, error) {
	var p searchParams
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "q", q, &p.Q); err != nil {
		return p, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "page", q, &p.Page); err != nil {
		return p, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "size", q, &p.Size); err != nil {
		return p, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "knn", q, &p.KNN); err != nil {
		return p, err
	}
	return p, nil
}

// Search handles GET /api/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	params, err := bindSearchParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid query parameter: "+err.Error())
		return
	}

	req, err := request.New(deref(params.Q), deref(params.Page), deref(params.Size), deref(params.KNN))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	page, err := s.search.Search(ctx, req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, dto.FromPage(page))
}

// SearchExpression handles POST /api/search/expression.
func (s *Server) SearchExpression(w http.ResponseWriter, r *http.Request) {
	var body ExpressionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	page, err := s.search.SearchExpression(r.Context(), body.Expression, body.Page, body.Size)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.FromPage(page))
}

// ConfirmReport handles POST /api/index/confirm.
func (s *Server) ConfirmReport(w http.ResponseWriter, r *http.Request) {
	var body dto.ReportRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	rep, err := s.reports.Index(ctx, body.Input())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setEmbeddingHeaders(w, usage)
	w.Header().Set("Location", "/api/reports/"+rep.ID())
	writeJSON(w, http.StatusCreated, dto.FromReport(&rep))
}

// GetReport handles GET /api/reports/{id}.
func (s *Server) GetReport(w http.ResponseWriter, r *http.Request) {
	rep, err := s.reports.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromReport(&rep))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{Status: string(report.Status), Checks: checks})
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage.Used() {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.TotalTokens))
		w.Header().Set("X-Embedding-Calls", strconv.Itoa(usage.Calls))
	}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
