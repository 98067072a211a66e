package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/reportdex/internal/domain"
	"github.com/kailas-cloud/reportdex/internal/logger"
)

// ErrorCode is the machine-readable error code in API error bodies.
type ErrorCode string

// API error codes.
const (
	CodeBadRequest        ErrorCode = "bad_request"
	CodeUnauthorized      ErrorCode = "unauthorized"
	CodeMalformedQuery    ErrorCode = "malformed_query"
	CodeInvalidReport     ErrorCode = "invalid_report"
	CodeVectorDimMismatch ErrorCode = "vector_dim_mismatch"
	CodeReportNotFound    ErrorCode = "report_not_found"
	CodeExecutorFailure   ErrorCode = "executor_failure"
	CodeExecutorTimeout   ErrorCode = "executor_timeout"
	CodeEmbeddingProvider ErrorCode = "embedding_provider_error"
	CodeInternalError     ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

var errorHandlers = []errorHandler{
	timeoutHandler,
	sentinelHandler(domain.ErrMalformedQuery, http.StatusBadRequest, CodeMalformedQuery),
	sentinelHandler(domain.ErrInvalidReport, http.StatusBadRequest, CodeInvalidReport),
	sentinelHandler(domain.ErrVectorDimMismatch, http.StatusBadRequest, CodeVectorDimMismatch),
	sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeReportNotFound),
	sentinelHandler(domain.ErrExecutorFailure, http.StatusBadGateway, CodeExecutorFailure),
	sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeEmbeddingProvider),
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// safeDomainMessage exposes caller mistakes verbatim and hides everything else behind the sentinel text.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrMalformedQuery) || errors.Is(err, domain.ErrInvalidReport) {
		return err.Error()
	}
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrVectorDimMismatch,
		domain.ErrExecutorFailure,
		domain.ErrEmbeddingProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func timeoutHandler(w http.ResponseWriter, err error, _ string) bool {
	if !errors.Is(err, domain.ErrExecutorFailure) || !errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	writeError(w, http.StatusGatewayTimeout, CodeExecutorTimeout, "search executor timed out")
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
