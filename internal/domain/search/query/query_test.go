package query

import (
	"testing"

	"github.com/kailas-cloud/reportdex/internal/domain/search/match"
	"github.com/kailas-cloud/reportdex/internal/domain/search/mode"
)

func TestValidate_AnyOf(t *testing.T) {
	c := NewClause("malwareName", match.Phrase, "emotet", 2.5)

	if err := NewAnyOf(mode.FreeText, []Clause{c}, 1).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := NewAnyOf(mode.FreeText, nil, 1).Validate(); err == nil {
		t.Error("expected error for empty clauses")
	}
	if err := NewAnyOf(mode.FreeText, []Clause{c}, 2).Validate(); err == nil {
		t.Error("expected error for minimum matches above clause count")
	}
}

func TestValidate_AllOfExcluded(t *testing.T) {
	must := NewClause("malwareName", match.Fuzzy, "emotet", 1)
	not := NewClause("threatClassification", match.Plain, "", 1)

	if err := NewAllOf(mode.Boolean, []Clause{must}, []Clause{not}).Validate(); err == nil {
		t.Error("expected error for empty excluded value")
	}
}

func TestValidate_Nearest(t *testing.T) {
	q := NewNearest(KNN{Field: "vectorizedContent", Vector: []float32{1}, K: 10, NumCandidates: 100})
	if err := q.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Kind() != mode.Vector {
		t.Errorf("Kind() = %q", q.Kind())
	}

	if err := NewNearest(KNN{K: 10, NumCandidates: 100}).Validate(); err == nil {
		t.Error("expected error for missing vector")
	}
	if err := NewNearest(KNN{Vector: []float32{1}, K: 10, NumCandidates: 5}).Validate(); err == nil {
		t.Error("expected error for candidates below k")
	}
}

func TestWithHighlight_Copy(t *testing.T) {
	base := NewAnyOf(mode.FreeText, []Clause{NewClause("a", match.Plain, "x", 1)}, 1)
	hl := base.WithHighlight(Highlight{PreTag: "<em>", PostTag: "</em>"})

	if base.Highlight() != nil {
		t.Error("WithHighlight mutated the receiver")
	}
	if hl.Highlight() == nil || hl.Highlight().PreTag != "<em>" {
		t.Errorf("Highlight() = %+v", hl.Highlight())
	}
}

func TestKNN_Window(t *testing.T) {
	k := KNN{K: 10, NumCandidates: 100, MaxResults: 5}
	tests := []struct {
		page, size, offset, limit int
	}{
		{0, 20, 0, 5},
		{0, 3, 0, 3},
		{1, 3, 3, 2},
		{2, 3, 6, 0},
		{1, 20, 20, 0},
	}
	for _, tt := range tests {
		off, lim := k.Window(tt.page, tt.size)
		if off != tt.offset || lim != tt.limit {
			t.Errorf("Window(%d, %d) = (%d, %d), want (%d, %d)", tt.page, tt.size, off, lim, tt.offset, tt.limit)
		}
	}
}
