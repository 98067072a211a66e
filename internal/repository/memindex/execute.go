package memindex

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/blevesearch/bleve/v2"
	blevequery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/kailas-cloud/reportdex/internal/domain/search/field"
	"github.com/kailas-cloud/reportdex/internal/domain/search/match"
	"github.com/kailas-cloud/reportdex/internal/domain/search/query"
	"github.com/kailas-cloud/reportdex/internal/domain/search/result"
)

// Execute runs a compiled query and returns one page of hits.
func (x *Index) Execute(ctx context.Context, q query.Query, page, size int) (result.Hits, error) {
	switch q.Combinator() {
	case query.Nearest:
		return x.nearest(q.KNN(), page, size), nil
	case query.AnyOf, query.AllOf:
		return x.searchText(ctx, q, page, size)
	}
	return result.Hits{}, fmt.Errorf("unknown combinator %q", q.Combinator())
}

func (x *Index) searchText(ctx context.Context, q query.Query, page, size int) (result.Hits, error) {
	bq := translate(q)
	req := bleve.NewSearchRequestOptions(bq, size, page*size, false)
	hl := q.Highlight()
	if hl != nil {
		style, err := highlightStyle(hl)
		if err != nil {
			return result.Hits{}, err
		}
		req.Highlight = bleve.NewHighlightWithStyle(style)
		req.Highlight.Fields = hl.Fields
	}

	res, err := x.text.SearchInContext(ctx, req)
	if err != nil {
		return result.Hits{}, fmt.Errorf("bleve search: %w", err)
	}

	x.mu.RLock()
	defer x.mu.RUnlock()
	records := make([]result.Record, 0, len(res.Hits))
	for _, h := range res.Hits {
		rep, ok := x.reports[h.ID]
		if !ok {
			continue
		}
		var frags map[string][]string
		if hl != nil {
			frags = keepMarked(h.Fragments, hl)
		}
		records = append(records, result.New(h.ID, h.Score, rep, frags))
	}
	return result.Hits{Records: records, Total: int(res.Total)}, nil
}

// translate builds the bleve query tree for a text query.
func translate(q query.Query) blevequery.Query {
	clauses := make([]blevequery.Query, 0, len(q.Clauses()))
	for _, c := range q.Clauses() {
		clauses = append(clauses, clause(c))
	}

	if q.Combinator() == query.AnyOf {
		dq := bleve.NewDisjunctionQuery(clauses...)
		dq.SetMin(float64(q.MinimumMatches()))
		return dq
	}

	var excluded []blevequery.Query
	for _, c := range q.Excluded() {
		excluded = append(excluded, clause(c))
	}
	return blevequery.NewBooleanQuery(clauses, nil, excluded)
}

func clause(c query.Clause) blevequery.Query {
	switch c.Mode() {
	case match.Term, match.TermLowercased:
		tq := bleve.NewTermQuery(c.Value())
		tq.SetField(field.KeywordAttr(c.Field(), c.Mode()))
		tq.SetBoost(c.Boost())
		return tq
	case match.Phrase:
		pq := bleve.NewMatchPhraseQuery(c.Value())
		pq.SetField(c.Field())
		pq.SetBoost(c.Boost())
		return pq
	case match.Fuzzy:
		mq := bleve.NewMatchQuery(c.Value())
		mq.SetField(c.Field())
		mq.SetFuzziness(match.FuzzyDistance)
		mq.SetBoost(c.Boost())
		return mq
	default:
		mq := bleve.NewMatchQuery(c.Value())
		mq.SetField(c.Field())
		mq.SetBoost(c.Boost())
		return mq
	}
}

type scored struct {
	id    string
	score float64
}

// nearest is a brute-force cosine scan over the stored vectors.
func (x *Index) nearest(knn *query.KNN, page, size int) result.Hits {
	x.mu.RLock()
	defer x.mu.RUnlock()

	candidates := make([]scored, 0, len(x.reports))
	for id, rep := range x.reports {
		v := rep.Vector()
		if len(v) != len(knn.Vector) {
			continue
		}
		candidates = append(candidates, scored{id: id, score: cosine(knn.Vector, v)})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].id < candidates[j].id
	})

	top := knn.K
	if knn.MaxResults > 0 && knn.MaxResults < top {
		top = knn.MaxResults
	}
	if len(candidates) > top {
		candidates = candidates[:top]
	}

	total := len(candidates)
	offset, limit := knn.Window(page, size)
	if limit == 0 || offset >= total {
		return result.Hits{Total: total}
	}
	end := min(offset+limit, total)

	boost := knn.Boost
	if boost <= 0 {
		boost = 1
	}
	records := make([]result.Record, 0, end-offset)
	for _, c := range candidates[offset:end] {
		records = append(records, result.New(c.id, c.score*boost, x.reports[c.id], nil))
	}
	return result.Hits{Records: records, Total: total}
}

// cosine returns similarity clamped to [0,1], matching the Redis score conversion.
func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return max(0, dot/(math.Sqrt(na)*math.Sqrt(nb)))
}
