package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidReport signals a report that cannot be indexed.
	ErrInvalidReport = errors.New("invalid report")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")

	// ErrMalformedQuery signals a query that cannot be compiled.
	ErrMalformedQuery = errors.New("malformed query")
	// ErrExecutorFailure signals that the search backend failed or timed out.
	ErrExecutorFailure = errors.New("search executor failure")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)

// MalformedQueryError carries the reason a query was rejected.
type MalformedQueryError struct {
	Reason string
}

func (e *MalformedQueryError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMalformedQuery.Error(), e.Reason)
}

func (e *MalformedQueryError) Unwrap() error { return ErrMalformedQuery }

// NewMalformedQuery creates a malformed query error.
func NewMalformedQuery(format string, args ...any) error {
	return &MalformedQueryError{Reason: fmt.Sprintf(format, args...)}
}
