// Package match enumerates how a single field clause compares the query value.
package match

// Mode is the comparison strategy of one compiled clause.
type Mode string

const (
	// Term is an exact keyword comparison against the original-case value.
	Term Mode = "term"
	// TermLowercased is an exact keyword comparison against the lowercased value.
	TermLowercased Mode = "term_lowercased"
	// Phrase matches the analyzed tokens in order.
	Phrase Mode = "phrase"
	// Fuzzy matches analyzed tokens within edit distance 1.
	Fuzzy Mode = "fuzzy"
	// Plain matches any analyzed token.
	Plain Mode = "plain"
)

// FuzzyDistance is the edit distance used by Fuzzy clauses.
const FuzzyDistance = 1

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	switch m {
	case Term, TermLowercased, Phrase, Fuzzy, Plain:
		return true
	}
	return false
}

// Exact reports whether the mode compares against the keyword form of a field.
func (m Mode) Exact() bool {
	return m == Term || m == TermLowercased
}
