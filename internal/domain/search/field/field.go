// Package field holds the searchable report fields and their relevance weights.
package field

import (
	"regexp"

	"github.com/kailas-cloud/reportdex/internal/domain/search/match"
)

// Searchable report attributes.
const (
	AnalystFullName       = "analystFullName"
	SampleHash            = "sampleHash"
	ThreatClassification  = "threatClassification"
	SecurityOrganization  = "securityOrganization"
	MalwareName           = "malwareName"
	BehaviorDescriptionSr = "behaviorDescriptionSr"
	BehaviorDescriptionEn = "behaviorDescriptionEn"

	// VectorizedContent holds the report embedding used by nearest-neighbour search.
	VectorizedContent = "vectorizedContent"
)

// Keyword twins of text fields. Term clauses target the case-sensitive twin,
// lowercased term clauses the case-folded one.
const (
	ExactSuffix  = "_exact"
	FoldedSuffix = "_folded"
)

// KeywordAttr returns the keyword attribute a term-mode clause on name compares against.
func KeywordAttr(name string, m match.Mode) string {
	if m == match.TermLowercased {
		return name + FoldedSuffix
	}
	return name + ExactSuffix
}

// Scope restricts a weight to phrase queries, term queries, or both.
type Scope uint8

const (
	Any Scope = iota
	PhraseOnly
	TermOnly
)

// Weight is one (mode, boost) row of a field.
type Weight struct {
	mode  match.Mode
	boost float64
	scope Scope
}

// Mode returns the clause match mode.
func (w Weight) Mode() match.Mode { return w.mode }

// Boost returns the relevance multiplier.
func (w Weight) Boost() float64 { return w.boost }

// Scope returns the query shapes the row applies to.
func (w Weight) Scope() Scope { return w.scope }

// AppliesTo reports whether the row is emitted for a phrase (true) or term (false) query.
func (w Weight) AppliesTo(phrase bool) bool {
	switch w.scope {
	case PhraseOnly:
		return phrase
	case TermOnly:
		return !phrase
	}
	return true
}

// Spec is the ordered list of weights of one searchable field.
type Spec struct {
	name    string
	weights []Weight
}

// Name returns the index attribute name.
func (s Spec) Name() string { return s.name }

// Weights returns a copy of the field rows in clause order.
func (s Spec) Weights() []Weight {
	out := make([]Weight, len(s.weights))
	copy(out, s.weights)
	return out
}

// Boost returns the boost of the first row with the given mode applicable to the query shape.
func (s Spec) Boost(m match.Mode, phrase bool) (float64, bool) {
	for _, w := range s.weights {
		if w.mode == m && w.AppliesTo(phrase) {
			return w.boost, true
		}
	}
	return 0, false
}

// MaxBoost returns the strongest boost the field can contribute.
func (s Spec) MaxBoost() float64 {
	var m float64
	for _, w := range s.weights {
		if w.boost > m {
			m = w.boost
		}
	}
	return m
}

// HasExact reports whether the field needs a keyword twin in the index.
func (s Spec) HasExact() bool {
	for _, w := range s.weights {
		if w.mode.Exact() {
			return true
		}
	}
	return false
}

func w(m match.Mode, boost float64, scope Scope) Weight {
	return Weight{mode: m, boost: boost, scope: scope}
}

// Hash > classification > org/malware > analyst > description.
// The description is stored per language and both halves carry the same phrase weight.
var table = []Spec{
	{name: AnalystFullName, weights: []Weight{
		w(match.Phrase, 3.0, Any),
		w(match.Fuzzy, 2.0, TermOnly),
	}},
	{name: SampleHash, weights: []Weight{
		w(match.Term, 5.0, Any),
		w(match.TermLowercased, 5.0, Any),
	}},
	{name: ThreatClassification, weights: []Weight{
		w(match.Term, 4.0, Any),
		w(match.TermLowercased, 4.0, Any),
		w(match.Phrase, 1.5, PhraseOnly),
		w(match.Plain, 1.5, TermOnly),
	}},
	{name: SecurityOrganization, weights: []Weight{
		w(match.Phrase, 2.5, Any),
		w(match.Fuzzy, 2.0, TermOnly),
		w(match.Term, 3.0, Any),
		w(match.TermLowercased, 3.0, Any),
	}},
	{name: MalwareName, weights: []Weight{
		w(match.Phrase, 2.5, Any),
		w(match.Fuzzy, 2.0, TermOnly),
		w(match.Term, 3.0, Any),
		w(match.TermLowercased, 3.0, Any),
	}},
	{name: BehaviorDescriptionSr, weights: []Weight{
		w(match.Plain, 1.0, TermOnly),
		w(match.Phrase, 1.5, Any),
	}},
	{name: BehaviorDescriptionEn, weights: []Weight{
		w(match.Plain, 1.2, TermOnly),
		w(match.Phrase, 1.5, Any),
	}},
}

// Table returns the field weight table in clause order.
func Table() []Spec {
	out := make([]Spec, len(table))
	for i, s := range table {
		out[i] = Spec{name: s.name, weights: s.Weights()}
	}
	return out
}

// Lookup returns the spec of a searchable field.
func Lookup(name string) (Spec, bool) {
	for _, s := range table {
		if s.name == name {
			return Spec{name: s.name, weights: s.Weights()}, true
		}
	}
	return Spec{}, false
}

// Names returns the searchable field names in table order.
func Names() []string {
	out := make([]string, len(table))
	for i, s := range table {
		out[i] = s.name
	}
	return out
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,63}$`)

// IsValidName checks that a caller-supplied field name is a plain identifier.
func IsValidName(name string) bool {
	return identRe.MatchString(name)
}
