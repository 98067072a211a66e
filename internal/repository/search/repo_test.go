package search

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/reportdex/internal/db"
	"github.com/kailas-cloud/reportdex/internal/domain/search/match"
	"github.com/kailas-cloud/reportdex/internal/domain/search/mode"
	"github.com/kailas-cloud/reportdex/internal/domain/search/query"
	"github.com/kailas-cloud/reportdex/internal/domain/search/result"
)

func highlighted() query.Query {
	return query.NewAnyOf(mode.FreeText, []query.Clause{
		query.NewClause("malwareName", match.Plain, "emotet", 2),
	}, 1).WithHighlight(query.Highlight{
		PreTag:       "<em>",
		PostTag:      "</em>",
		FragmentSize: 180,
		MaxFragments: 2,
		Fields:       []string{"malwareName", "behaviorDescriptionEn"},
	})
}

func TestExecute_TextWithHighlights(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchFn = func(_ context.Context, q *db.TextQuery) (*db.SearchResult, error) {
		if q.IndexName != "reports:idx" {
			t.Errorf("index = %s", q.IndexName)
		}
		if q.Offset != 20 || q.Limit != 10 {
			t.Errorf("offset/limit = %d/%d", q.Offset, q.Limit)
		}
		if !q.WithScores || q.Highlight == nil || q.Summarize == nil {
			t.Fatalf("query options = %+v", q)
		}
		if q.Summarize.Len != 30 || q.Summarize.Frags != 2 || q.Summarize.Separator != "|#|" {
			t.Errorf("summarize = %+v", q.Summarize)
		}
		return &db.SearchResult{
			Total: 42,
			Entries: []db.SearchEntry{
				{Key: "report:a", Score: 9.5, Fields: map[string]string{
					"malwareName":           "<em>Emotet</em>",
					"behaviorDescriptionEn": "no match here|#|loads <em>emotet</em> again|#|<em>x</em>|#|<em>y</em>",
				}},
				{Key: "report:gone", Score: 3},
				{Key: "report:b", Score: 1.5, Fields: map[string]string{"behaviorDescriptionEn": "plain"}},
			},
		}, nil
	}
	ms.hgetAllMultiFn = func(_ context.Context, keys []string) ([]map[string]string, error) {
		if strings.Join(keys, ",") != "report:a,report:gone,report:b" {
			t.Errorf("keys = %v", keys)
		}
		return []map[string]string{
			{"malwareName": "Emotet", "sampleHash": "44d88612fea8a8f36de82e1278abb02f", "behaviorDescriptionEn": "full text"},
			{},
			{"malwareName": "Other"},
		}, nil
	}

	hits, err := repo.Execute(context.Background(), highlighted(), 2, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hits.Total != 42 {
		t.Errorf("Total = %d", hits.Total)
	}
	if len(hits.Records) != 2 {
		t.Fatalf("records = %d, want 2 (vanished hit skipped)", len(hits.Records))
	}

	first := hits.Records[0]
	if first.ID() != "a" || first.Score() != 9.5 {
		t.Errorf("first = %s/%f", first.ID(), first.Score())
	}
	rep := first.Report()
	if rep.MalwareName() != "Emotet" || rep.DescriptionEn() != "full text" {
		t.Errorf("projection not loaded from hash: %q / %q", rep.MalwareName(), rep.DescriptionEn())
	}
	desc := first.Highlights()["behaviorDescriptionEn"]
	if len(desc) != 2 || desc[0] != "loads <em>emotet</em> again" {
		t.Errorf("description fragments = %v", desc)
	}
	if hits.Records[1].Highlights() != nil {
		t.Errorf("second record fragments = %v, want none", hits.Records[1].Highlights())
	}
}

func TestExecute_BooleanReturnsProjection(t *testing.T) {
	repo, ms := newTestRepo(t)
	q := query.NewAllOf(mode.Boolean, []query.Clause{
		query.NewClause("malwareName", match.Phrase, "emotet", 1),
	}, nil)

	ms.searchFn = func(_ context.Context, tq *db.TextQuery) (*db.SearchResult, error) {
		if tq.Highlight != nil || tq.Summarize != nil {
			t.Error("boolean queries are not highlighted")
		}
		return &db.SearchResult{Total: 1, Entries: []db.SearchEntry{
			{Key: "report:x", Score: 1, Fields: map[string]string{"malwareName": "Emotet"}},
		}}, nil
	}
	ms.hgetAllMultiFn = func(context.Context, []string) ([]map[string]string, error) {
		t.Error("projection must come from the search reply")
		return nil, nil
	}

	hits, err := repo.Execute(context.Background(), q, 0, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits.Records) != 1 {
		t.Fatalf("records = %d", len(hits.Records))
	}
	rep := hits.Records[0].Report()
	if rep.MalwareName() != "Emotet" {
		t.Errorf("malwareName = %q", rep.MalwareName())
	}
}

func TestExecute_NothingToSearch(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchFn = func(context.Context, *db.TextQuery) (*db.SearchResult, error) {
		t.Fatal("store must not be called")
		return nil, nil
	}
	q := query.NewAnyOf(mode.FreeText, []query.Clause{
		query.NewClause("malwareName", match.Plain, "??", 1),
	}, 1)

	hits, err := repo.Execute(context.Background(), q, 0, 20)
	if err != nil || len(hits.Records) != 0 || hits.Total != 0 {
		t.Fatalf("Execute() = %+v, %v", hits, err)
	}
}

func TestExecute_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)
	storeErr := errors.New("connection reset")
	ms.searchFn = func(context.Context, *db.TextQuery) (*db.SearchResult, error) {
		return nil, storeErr
	}

	_, err := repo.Execute(context.Background(), highlighted(), 0, 20)
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func knnQuery() query.Query {
	return query.NewNearest(query.KNN{
		Field:         "vectorizedContent",
		Vector:        []float32{0.1, 0.2},
		K:             10,
		NumCandidates: 100,
		Boost:         10,
		MaxResults:    5,
	})
}

func knnEntries(n int) []db.SearchEntry {
	out := make([]db.SearchEntry, n)
	for i := range out {
		out[i] = db.SearchEntry{
			Key:    "report:" + string(rune('a'+i)),
			Score:  0.9 - float64(i)*0.1,
			Fields: map[string]string{"malwareName": "m"},
		}
	}
	return out
}

func TestExecute_KNNWindow(t *testing.T) {
	tests := []struct {
		name      string
		page      int
		size      int
		wantIDs   string
		wantTotal int
	}{
		{"first page inside window", 0, 3, "a,b,c", 5},
		{"second page truncated at window", 1, 3, "d,e", 5},
		{"page past window", 2, 3, "", 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, ms := newTestRepo(t)
			ms.searchKNNFn = func(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
				if q.K != 10 || q.EFRuntime != 100 || q.Limit != 5 || q.Offset != 0 {
					t.Errorf("knn query = %+v", q)
				}
				return &db.SearchResult{Total: 10, Entries: knnEntries(5)}, nil
			}

			hits, err := repo.Execute(context.Background(), knnQuery(), tt.page, tt.size)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if hits.Total != tt.wantTotal {
				t.Errorf("Total = %d, want %d", hits.Total, tt.wantTotal)
			}
			if got := ids(hits.Records); got != tt.wantIDs {
				t.Errorf("ids = %q, want %q", got, tt.wantIDs)
			}
		})
	}
}

func TestExecute_KNNBoostsScore(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchKNNFn = func(context.Context, *db.KNNQuery) (*db.SearchResult, error) {
		return &db.SearchResult{Total: 1, Entries: []db.SearchEntry{{Key: "report:a", Score: 0.5}}}, nil
	}

	hits, err := repo.Execute(context.Background(), knnQuery(), 0, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hits.Total != 1 || len(hits.Records) != 1 || hits.Records[0].Score() != 5 {
		t.Fatalf("hits = %+v", hits)
	}
}

func ids(records []result.Record) string {
	out := make([]string, len(records))
	for i := range records {
		out[i] = records[i].ID()
	}
	return strings.Join(out, ",")
}
