package search

import (
	"github.com/kailas-cloud/reportdex/internal/domain/search/field"
	"github.com/kailas-cloud/reportdex/internal/domain/search/match"
	"github.com/kailas-cloud/reportdex/internal/domain/search/mode"
	"github.com/kailas-cloud/reportdex/internal/domain/search/query"
	"github.com/kailas-cloud/reportdex/internal/domain/search/request"
)

// Highlight settings for free-text results.
const (
	HighlightPreTag       = "<em>"
	HighlightPostTag      = "</em>"
	HighlightFragmentSize = 180
	HighlightMaxFragments = 3
)

// HighlightSpec is attached to every free-text query.
func HighlightSpec() query.Highlight {
	return query.Highlight{
		PreTag:       HighlightPreTag,
		PostTag:      HighlightPostTag,
		FragmentSize: HighlightFragmentSize,
		MaxFragments: HighlightMaxFragments,
		Fields:       field.Names(),
	}
}

type row struct {
	field  string
	weight field.Weight
}

// rows flattens the weight table into the (field, mode, boost) rows a query shape uses.
func rows(phrase bool) []row {
	var out []row
	for _, spec := range field.Table() {
		for _, w := range spec.Weights() {
			if w.AppliesTo(phrase) {
				out = append(out, row{field: spec.Name(), weight: w})
			}
		}
	}
	return out
}

// buildClause picks the value form a mode compares against.
func buildClause(name string, m match.Mode, c request.Classified, boost float64) query.Clause {
	value := c.Value
	if m == match.TermLowercased {
		value = c.Lowered
	}
	return query.NewClause(name, m, value, boost)
}

// CompileFreeText turns one search string into a weighted any-of query across every
// searchable field. 'quoted' input compiles to phrase clauses, bare input adds fuzzy
// and plain-match clauses.
func CompileFreeText(raw string) (query.Query, error) {
	c, err := request.Classify(raw)
	if err != nil {
		return query.Query{}, err
	}

	rs := rows(c.IsPhrase)
	clauses := make([]query.Clause, 0, len(rs))
	for _, r := range rs {
		clauses = append(clauses, buildClause(r.field, r.weight.Mode(), c, r.weight.Boost()))
	}

	return query.NewAnyOf(mode.FreeText, clauses, 1).WithHighlight(HighlightSpec()), nil
}
