package request

import (
	"strings"

	"github.com/kailas-cloud/reportdex/internal/domain"
)

// Classified is a raw free-text query split into the forms the compiler needs.
type Classified struct {
	IsPhrase bool
	// Value is the query with phrase quotes removed, original case.
	Value string
	// Lowered is Value in lower case, for keyword fields indexed lowercased.
	Lowered string
}

// Classify decides whether a free-text query is a quoted phrase or a bare term.
// A phrase is wrapped in single quotes: 'APT Group'.
func Classify(raw string) (Classified, error) {
	q := strings.TrimSpace(raw)
	if q == "" {
		return Classified{}, domain.NewMalformedQuery("query is blank")
	}

	phrase := len(q) >= 2 && strings.HasPrefix(q, "'") && strings.HasSuffix(q, "'")
	value := q
	if phrase {
		value = strings.TrimSpace(q[1 : len(q)-1])
		if value == "" {
			return Classified{}, domain.NewMalformedQuery("phrase is empty")
		}
	}

	return Classified{
		IsPhrase: phrase,
		Value:    value,
		Lowered:  strings.TrimSpace(strings.ToLower(value)),
	}, nil
}
