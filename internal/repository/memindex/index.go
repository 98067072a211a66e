// Package memindex is an in-process report index on bleve. It backs the search
// and report services when no Redis is configured, e.g. in tests and local runs.
package memindex

import (
	"context"
	"fmt"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/kailas-cloud/reportdex/internal/domain"
	domreport "github.com/kailas-cloud/reportdex/internal/domain/report"
	"github.com/kailas-cloud/reportdex/internal/domain/search/field"
)

// Index holds reports in memory: text in a bleve index, vectors and projections in a map.
type Index struct {
	mu        sync.RWMutex
	text      bleve.Index
	reports   map[string]domreport.Report
	vectorDim int
}

// New creates an empty in-memory index.
func New(vectorDim int) (*Index, error) {
	im, err := buildMapping()
	if err != nil {
		return nil, fmt.Errorf("build mapping: %w", err)
	}
	idx, err := bleve.NewMemOnly(im)
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &Index{text: idx, reports: make(map[string]domreport.Report), vectorDim: vectorDim}, nil
}

// EnsureIndex is a no-op; the index exists from construction.
func (x *Index) EnsureIndex(context.Context) error { return nil }

// Save indexes a report, replacing any previous version with the same ID.
func (x *Index) Save(_ context.Context, rep *domreport.Report) error {
	if rep.ID() == "" {
		return fmt.Errorf("save report: empty id")
	}
	if v := rep.Vector(); len(v) > 0 && len(v) != x.vectorDim {
		return fmt.Errorf("report %s: got %d, want %d: %w", rep.ID(), len(v), x.vectorDim, domain.ErrVectorDimMismatch)
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	if err := x.text.Index(rep.ID(), document(rep)); err != nil {
		return fmt.Errorf("index %s: %w", rep.ID(), err)
	}
	x.reports[rep.ID()] = *rep
	return nil
}

// Get returns a report by ID.
func (x *Index) Get(_ context.Context, id string) (domreport.Report, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	rep, ok := x.reports[id]
	if !ok {
		return domreport.Report{}, domain.ErrNotFound
	}
	return rep, nil
}

// Count returns the number of indexed reports.
func (x *Index) Count() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.reports)
}

// Close releases the bleve index.
func (x *Index) Close() error {
	return x.text.Close()
}

// Ping reports the index as always reachable.
func (x *Index) Ping(context.Context) error { return nil }

func document(r *domreport.Report) map[string]interface{} {
	doc := map[string]interface{}{}
	put := func(name, v string) {
		if v == "" {
			return
		}
		doc[name] = v
		if spec, ok := field.Lookup(name); ok && spec.HasExact() {
			doc[name+field.ExactSuffix] = v
			doc[name+field.FoldedSuffix] = v
		}
	}
	put(field.AnalystFullName, r.AnalystFullName())
	put(field.SampleHash, r.SampleHash())
	put(field.ThreatClassification, r.ThreatClassification())
	put(field.SecurityOrganization, r.SecurityOrganization())
	put(field.MalwareName, r.MalwareName())
	put(field.BehaviorDescriptionSr, r.DescriptionSr())
	put(field.BehaviorDescriptionEn, r.DescriptionEn())
	return doc
}
