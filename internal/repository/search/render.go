package search

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/kailas-cloud/reportdex/internal/db"
	"github.com/kailas-cloud/reportdex/internal/domain/search/field"
	"github.com/kailas-cloud/reportdex/internal/domain/search/match"
	"github.com/kailas-cloud/reportdex/internal/domain/search/query"
)

// render turns a compiled text query into RediSearch syntax (DIALECT 2).
// An empty string means no clause survived tokenization and nothing can match.
func render(q query.Query) (string, error) {
	switch q.Combinator() {
	case query.AnyOf:
		if q.MinimumMatches() > 1 {
			return "", fmt.Errorf("minimum matches %d not supported", q.MinimumMatches())
		}
		parts := renderAll(q.Clauses())
		return strings.Join(parts, " | "), nil

	case query.AllOf:
		parts := renderAll(q.Clauses())
		// every positive clause is required; one that cannot match empties the query
		if len(parts) == 0 || len(parts) < len(q.Clauses()) {
			return "", nil
		}
		for _, p := range renderAll(q.Excluded()) {
			parts = append(parts, "-"+p)
		}
		return strings.Join(parts, " "), nil

	default:
		return "", fmt.Errorf("combinator %q has no text rendering", q.Combinator())
	}
}

func renderAll(clauses []query.Clause) []string {
	out := make([]string, 0, len(clauses))
	for _, c := range clauses {
		if s := renderClause(c); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// renderClause renders one weighted predicate: (@field:...)=>{$weight:w;}
func renderClause(c query.Clause) string {
	var body string
	switch c.Mode() {
	case match.Term, match.TermLowercased:
		body = "@" + field.KeywordAttr(c.Field(), c.Mode()) + ":{" + db.EscapeTag(c.Value()) + "}"
	case match.Phrase:
		toks := tokenize(c.Value())
		if len(toks) == 0 {
			return ""
		}
		body = "@" + c.Field() + `:"` + strings.Join(toks, " ") + `"`
	case match.Fuzzy:
		toks := tokenize(c.Value())
		if len(toks) == 0 {
			return ""
		}
		pad := strings.Repeat("%", match.FuzzyDistance)
		for i, t := range toks {
			toks[i] = pad + t + pad
		}
		body = "@" + c.Field() + ":(" + strings.Join(toks, "|") + ")"
	case match.Plain:
		toks := tokenize(c.Value())
		if len(toks) == 0 {
			return ""
		}
		body = "@" + c.Field() + ":(" + strings.Join(toks, "|") + ")"
	default:
		return ""
	}
	return "(" + body + ")=>{$weight:" + strconv.FormatFloat(c.Boost(), 'f', -1, 64) + ";}"
}

// tokenize splits on anything that is not a letter or digit, the way the TEXT
// analyzer does, so the rendered terms never need escaping.
func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
