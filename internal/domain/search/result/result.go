package result

import "github.com/kailas-cloud/reportdex/internal/domain/report"

// Record is a single search hit: the stored report plus highlighted fragments.
type Record struct {
	id         string
	score      float64
	report     report.Report
	highlights map[string][]string
}

// New creates a search record.
func New(id string, score float64, r report.Report, highlights map[string][]string) Record {
	return Record{id: id, score: score, report: r, highlights: highlights}
}

// ID returns the report identifier.
func (r *Record) ID() string { return r.id }

// Score returns the relevance score reported by the executor.
func (r *Record) Score() float64 { return r.score }

// Report returns the stored report projection.
func (r *Record) Report() report.Report { return r.report }

// Highlights returns field -> fragments. Nil when the query was not highlighted.
func (r *Record) Highlights() map[string][]string { return r.highlights }

// WithHighlights returns a copy with replaced fragments.
func (r Record) WithHighlights(h map[string][]string) Record {
	r.highlights = h
	return r
}

// Hits is what an executor returns for one page.
type Hits struct {
	Records []Record
	// Total is the number of matching reports across all pages.
	Total int
}

// Page is a slice of ranked results.
type Page struct {
	items         []Record
	number        int
	size          int
	totalElements int
}

// NewPage creates a result page.
func NewPage(items []Record, number, size, totalElements int) Page {
	if items == nil {
		items = []Record{}
	}
	return Page{items: items, number: number, size: size, totalElements: totalElements}
}

// EmptyPage is a page with no results.
func EmptyPage(number, size int) Page {
	return NewPage(nil, number, size, 0)
}

// Items returns the records in rank order.
func (p Page) Items() []Record { return p.items }

// Number returns the zero-based page number.
func (p Page) Number() int { return p.number }

// Size returns the requested page size.
func (p Page) Size() int { return p.size }

// TotalElements returns the total hit count reported by the executor.
func (p Page) TotalElements() int { return p.totalElements }

// TotalPages returns the number of pages needed for TotalElements.
func (p Page) TotalPages() int {
	if p.size <= 0 {
		return 0
	}
	return (p.totalElements + p.size - 1) / p.size
}
