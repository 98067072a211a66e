package report

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/reportdex/internal/db"
	domreport "github.com/kailas-cloud/reportdex/internal/domain/report"
)

const testVectorDim = 4

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetFn        func(ctx context.Context, key string, fields map[string]string) error
	hgetAllFn     func(ctx context.Context, key string) (map[string]string, error)
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
	indexExistsFn func(ctx context.Context, name string) (bool, error)
}

func (m *mockStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	if m.hsetFn != nil {
		return m.hsetFn(ctx, key, fields)
	}
	return nil
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetAllFn != nil {
		return m.hgetAllFn(ctx, key)
	}
	return map[string]string{}, nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return false, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, testVectorDim), ms
}

func testReport(t *testing.T, lang domreport.Language) domreport.Report {
	t.Helper()
	r, err := domreport.New(domreport.Input{
		ID:                   "rep-1",
		Title:                "Emotet dropper",
		AnalystFullName:      "Ana Petrovic",
		SampleHash:           "44d88612fea8a8f36de82e1278abb02f",
		ThreatClassification: "Trojan",
		SecurityOrganization: "CERT RS",
		MalwareName:          "Emotet",
		BehaviorDescription:  "Drops a loader and beacons to C2.",
	})
	if err != nil {
		t.Fatalf("report.New: %v", err)
	}
	r.SetLanguage(lang)
	r.SetVector([]float32{0.1, 0.2, 0.3, 0.4})
	r.SetConfirmedAt(time.UnixMilli(1_700_000_000_000).UTC())
	return r
}
