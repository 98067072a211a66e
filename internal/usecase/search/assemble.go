package search

import (
	"github.com/kailas-cloud/reportdex/internal/domain/search/query"
	"github.com/kailas-cloud/reportdex/internal/domain/search/result"
)

// assemble keeps executor order, trims fragments to the highlight limit and takes
// the total from the executor.
func assemble(hits result.Hits, q query.Query, page, size int) result.Page {
	limit := 0
	if h := q.Highlight(); h != nil {
		limit = h.MaxFragments
	}

	items := make([]result.Record, 0, len(hits.Records))
	for _, rec := range hits.Records {
		items = append(items, rec.WithHighlights(capFragments(rec.Highlights(), limit)))
	}
	return result.NewPage(items, page, size, hits.Total)
}

func capFragments(in map[string][]string, limit int) map[string][]string {
	if limit <= 0 || len(in) == 0 {
		return nil
	}
	out := make(map[string][]string, len(in))
	for f, frags := range in {
		if len(frags) == 0 {
			continue
		}
		if len(frags) > limit {
			frags = frags[:limit]
		}
		out[f] = frags
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
