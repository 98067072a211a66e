// Package query is the backend-neutral compiled form of a search request.
// Executors render it into their own query language.
package query

import (
	"fmt"

	"github.com/kailas-cloud/reportdex/internal/domain/search/match"
	"github.com/kailas-cloud/reportdex/internal/domain/search/mode"
)

// Clause is a single-field predicate.
type Clause struct {
	field string
	mode  match.Mode
	value string
	boost float64
}

// NewClause creates a clause.
func NewClause(field string, m match.Mode, value string, boost float64) Clause {
	return Clause{field: field, mode: m, value: value, boost: boost}
}

// Field returns the target attribute.
func (c Clause) Field() string { return c.field }

// Mode returns the match mode.
func (c Clause) Mode() match.Mode { return c.mode }

// Value returns the compared value.
func (c Clause) Value() string { return c.value }

// Boost returns the relevance multiplier.
func (c Clause) Boost() float64 { return c.boost }

func (c Clause) String() string {
	return fmt.Sprintf("%s:%s(%q)^%g", c.field, c.mode, c.value, c.boost)
}

// Combinator folds clauses into one predicate.
type Combinator string

const (
	// AnyOf matches when at least MinimumMatches clauses match.
	AnyOf Combinator = "any_of"
	// AllOf matches when every clause matches.
	AllOf Combinator = "all_of"
	// Nearest is the vector path; it has no clauses.
	Nearest Combinator = "nearest"
)

// KNN describes a nearest-neighbour vector search.
type KNN struct {
	Field         string
	Vector        []float32
	K             int
	NumCandidates int
	Boost         float64
	MaxResults    int
}

// Highlight controls fragment extraction from matching fields.
type Highlight struct {
	PreTag       string
	PostTag      string
	FragmentSize int
	MaxFragments int
	Fields       []string
}

// Query is an immutable compiled query.
type Query struct {
	kind           mode.Mode
	combinator     Combinator
	clauses        []Clause
	excluded       []Clause
	minimumMatches int
	knn            *KNN
	highlight      *Highlight
}

// NewAnyOf matches documents satisfying at least minimumMatches clauses.
func NewAnyOf(kind mode.Mode, clauses []Clause, minimumMatches int) Query {
	return Query{kind: kind, combinator: AnyOf, clauses: clauses, minimumMatches: minimumMatches}
}

// NewAllOf matches documents satisfying every clause and none of the excluded ones.
func NewAllOf(kind mode.Mode, clauses []Clause, excluded []Clause) Query {
	return Query{kind: kind, combinator: AllOf, clauses: clauses, excluded: excluded}
}

// NewNearest creates a vector similarity query.
func NewNearest(knn KNN) Query {
	return Query{kind: mode.Vector, combinator: Nearest, knn: &knn}
}

// WithHighlight returns a copy carrying the highlight spec.
func (q Query) WithHighlight(h Highlight) Query {
	q.highlight = &h
	return q
}

// Kind returns the compilation path that produced the query.
func (q Query) Kind() mode.Mode { return q.kind }

// Combinator returns how clauses are folded.
func (q Query) Combinator() Combinator { return q.combinator }

// Clauses returns the positive clauses in compile order.
func (q Query) Clauses() []Clause { return q.clauses }

// Excluded returns clauses that must not match.
func (q Query) Excluded() []Clause { return q.excluded }

// MinimumMatches returns the any-of threshold. Zero for other combinators.
func (q Query) MinimumMatches() int { return q.minimumMatches }

// KNN returns the vector search spec, nil for text queries.
func (q Query) KNN() *KNN { return q.knn }

// Highlight returns the highlight spec, nil when highlighting is off.
func (q Query) Highlight() *Highlight { return q.highlight }

// Validate checks structural consistency before execution.
func (q Query) Validate() error {
	switch q.combinator {
	case AnyOf:
		if len(q.clauses) == 0 {
			return fmt.Errorf("any_of query has no clauses")
		}
		if q.minimumMatches < 1 || q.minimumMatches > len(q.clauses) {
			return fmt.Errorf("minimum matches %d out of range [1, %d]", q.minimumMatches, len(q.clauses))
		}
	case AllOf:
		if len(q.clauses) == 0 {
			return fmt.Errorf("all_of query has no clauses")
		}
	case Nearest:
		if q.knn == nil || len(q.knn.Vector) == 0 {
			return fmt.Errorf("nearest query has no vector")
		}
		if q.knn.K <= 0 || q.knn.NumCandidates < q.knn.K {
			return fmt.Errorf("invalid knn parameters k=%d candidates=%d", q.knn.K, q.knn.NumCandidates)
		}
	default:
		return fmt.Errorf("unknown combinator %q", q.combinator)
	}
	for _, group := range [][]Clause{q.clauses, q.excluded} {
		for _, c := range group {
			if !c.mode.IsValid() {
				return fmt.Errorf("clause %s: invalid mode", c)
			}
			if c.value == "" {
				return fmt.Errorf("clause %s: empty value", c)
			}
		}
	}
	return nil
}

// Window returns the part of the top MaxResults neighbours that a page covers.
// limit is zero when the page lies past the window.
func (k KNN) Window(page, size int) (offset, limit int) {
	top := k.MaxResults
	if top <= 0 || top > k.K {
		top = k.K
	}
	offset = page * size
	if offset >= top {
		return offset, 0
	}
	return offset, min(size, top-offset)
}
