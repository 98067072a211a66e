package request

import (
	"fmt"
	"strings"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength  = 4096
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Search is a validated search request. A blank query is valid and yields an empty page.
type Search struct {
	query    string
	page     int
	pageSize int
	vector   bool
}

// New validates and normalizes search parameters.
// Defaults: pageSize=20. Page size is clamped to MaxPageSize.
func New(query string, page, pageSize int, vector bool) (Search, error) {
	query = strings.TrimSpace(query)
	if len(query) > MaxQueryLength {
		return Search{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	if page < 0 {
		return Search{}, fmt.Errorf("page must be >= 0")
	}
	if pageSize < 0 {
		return Search{}, fmt.Errorf("page size must be > 0")
	}
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return Search{query: query, page: page, pageSize: pageSize, vector: vector}, nil
}

// Query returns the trimmed raw query.
func (s Search) Query() string { return s.query }

// Page returns the zero-based page number.
func (s Search) Page() int { return s.page }

// PageSize returns the page size.
func (s Search) PageSize() int { return s.pageSize }

// Vector reports whether the caller asked for similarity search.
func (s Search) Vector() bool { return s.vector }

// Blank reports whether there is nothing to search for.
func (s Search) Blank() bool { return s.query == "" }

// Offset returns the number of hits to skip.
func (s Search) Offset() int { return s.page * s.pageSize }
