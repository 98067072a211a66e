package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/reportdex/internal/db"
	"github.com/kailas-cloud/reportdex/internal/domain/search/query"
	"github.com/kailas-cloud/reportdex/internal/domain/search/result"
	repreport "github.com/kailas-cloud/reportdex/internal/repository/report"
)

// Summarize settings. SUMMARIZE measures fragments in words.
const (
	fragmentSeparator = "|#|"
	charsPerWord      = 6
)

// store is the consumer interface for search operations (ISP).
type store interface {
	Search(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
}

// Repo implements usecase/search.Executor over the report FT index.
type Repo struct {
	store store
	index string
}

// New creates a search repository.
func New(s store) *Repo {
	return &Repo{store: s, index: repreport.IndexName}
}

// Execute runs a compiled query and returns one page of hits.
func (r *Repo) Execute(ctx context.Context, q query.Query, page, size int) (result.Hits, error) {
	if q.Combinator() == query.Nearest {
		return r.executeKNN(ctx, q.KNN(), page, size)
	}
	return r.executeText(ctx, q, page, size)
}

func (r *Repo) executeText(ctx context.Context, q query.Query, page, size int) (result.Hits, error) {
	expr, err := render(q)
	if err != nil {
		return result.Hits{}, err
	}
	if expr == "" {
		return result.Hits{}, nil
	}

	tq := &db.TextQuery{
		IndexName:    r.index,
		Query:        expr,
		Offset:       page * size,
		Limit:        size,
		WithScores:   true,
		ReturnFields: repreport.ProjectionFields(),
	}
	hl := q.Highlight()
	if hl != nil {
		// summarized fields replace the stored values, so the projection is fetched separately
		tq.ReturnFields = hl.Fields
		tq.Highlight = &db.HighlightOptions{Fields: hl.Fields, OpenTag: hl.PreTag, CloseTag: hl.PostTag}
		tq.Summarize = &db.SummarizeOptions{
			Fields:    hl.Fields,
			Frags:     hl.MaxFragments,
			Len:       max(1, hl.FragmentSize/charsPerWord),
			Separator: fragmentSeparator,
		}
	}

	sr, err := r.store.Search(ctx, tq)
	if err != nil {
		return result.Hits{}, fmt.Errorf("search %s: %w", r.index, err)
	}
	if sr == nil || len(sr.Entries) == 0 {
		return result.Hits{Total: totalOf(sr)}, nil
	}

	if hl == nil {
		records := make([]result.Record, 0, len(sr.Entries))
		for _, e := range sr.Entries {
			id := repreport.IDFromKey(e.Key)
			records = append(records, result.New(id, e.Score, repreport.ParseHashFields(id, e.Fields), nil))
		}
		return result.Hits{Records: records, Total: sr.Total}, nil
	}

	keys := make([]string, len(sr.Entries))
	for i, e := range sr.Entries {
		keys[i] = e.Key
	}
	stored, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return result.Hits{}, fmt.Errorf("load hits: %w", err)
	}

	records := make([]result.Record, 0, len(sr.Entries))
	for i, e := range sr.Entries {
		var fields map[string]string
		if i < len(stored) {
			fields = stored[i]
		}
		// deleted between search and load
		if len(fields) == 0 {
			continue
		}
		id := repreport.IDFromKey(e.Key)
		records = append(records, result.New(id, e.Score, repreport.ParseHashFields(id, fields), fragments(e.Fields, hl)))
	}
	return result.Hits{Records: records, Total: sr.Total}, nil
}

// executeKNN fetches the top MaxResults neighbours and cuts the requested page from them.
func (r *Repo) executeKNN(ctx context.Context, knn *query.KNN, page, size int) (result.Hits, error) {
	top := knn.K
	if knn.MaxResults > 0 && knn.MaxResults < top {
		top = knn.MaxResults
	}

	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.index,
		Field:        knn.Field,
		Vector:       knn.Vector,
		K:            knn.K,
		EFRuntime:    knn.NumCandidates,
		Offset:       0,
		Limit:        top,
		ReturnFields: repreport.ProjectionFields(),
	})
	if err != nil {
		return result.Hits{}, fmt.Errorf("search knn %s: %w", r.index, err)
	}
	total := min(totalOf(sr), top)
	if sr == nil {
		return result.Hits{Total: total}, nil
	}

	offset, limit := knn.Window(page, size)
	if limit == 0 || offset >= len(sr.Entries) {
		return result.Hits{Total: total}, nil
	}
	end := min(offset+limit, len(sr.Entries))

	boost := knn.Boost
	if boost <= 0 {
		boost = 1
	}
	records := make([]result.Record, 0, end-offset)
	for _, e := range sr.Entries[offset:end] {
		id := repreport.IDFromKey(e.Key)
		records = append(records, result.New(id, e.Score*boost, repreport.ParseHashFields(id, e.Fields), nil))
	}
	return result.Hits{Records: records, Total: total}, nil
}

// fragments keeps the summarized pieces that actually carry a highlight.
func fragments(fields map[string]string, hl *query.Highlight) map[string][]string {
	out := make(map[string][]string)
	for _, name := range hl.Fields {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		var kept []string
		for _, frag := range strings.Split(raw, fragmentSeparator) {
			frag = strings.TrimSpace(frag)
			if !strings.Contains(frag, hl.PreTag) {
				continue
			}
			kept = append(kept, frag)
			if hl.MaxFragments > 0 && len(kept) == hl.MaxFragments {
				break
			}
		}
		if len(kept) > 0 {
			out[name] = kept
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func totalOf(sr *db.SearchResult) int {
	if sr == nil {
		return 0
	}
	return sr.Total
}
