package db

// TextQuery is the input for a full-text FT.SEARCH. Query is already in
// RediSearch syntax; the caller owns escaping.
type TextQuery struct {
	IndexName    string
	Query        string
	Offset       int
	Limit        int
	WithScores   bool
	ReturnFields []string
	Highlight    *HighlightOptions
	Summarize    *SummarizeOptions
}

// HighlightOptions wraps matched terms of the listed fields in tags.
type HighlightOptions struct {
	Fields   []string
	OpenTag  string
	CloseTag string
}

// SummarizeOptions cuts the listed fields down to fragments around matches.
type SummarizeOptions struct {
	Fields    []string
	Frags     int
	Len       int // fragment length in words
	Separator string
}

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	Field        string
	Vector       []float32
	K            int
	EFRuntime    int
	Offset       int
	Limit        int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
