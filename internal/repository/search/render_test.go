package search

import (
	"testing"

	"github.com/kailas-cloud/reportdex/internal/domain/search/match"
	"github.com/kailas-cloud/reportdex/internal/domain/search/mode"
	"github.com/kailas-cloud/reportdex/internal/domain/search/query"
)

func TestRenderClause(t *testing.T) {
	tests := []struct {
		name   string
		clause query.Clause
		want   string
	}{
		{
			"term targets exact twin",
			query.NewClause("sampleHash", match.Term, "44D88612", 5),
			`(@sampleHash_exact:{44D88612})=>{$weight:5;}`,
		},
		{
			"lowercased term targets folded twin",
			query.NewClause("sampleHash", match.TermLowercased, "44d88612", 5),
			`(@sampleHash_folded:{44d88612})=>{$weight:5;}`,
		},
		{
			"tag value escaped",
			query.NewClause("securityOrganization", match.Term, "CERT RS", 3),
			`(@securityOrganization_exact:{CERT\ RS})=>{$weight:3;}`,
		},
		{
			"phrase keeps token order",
			query.NewClause("malwareName", match.Phrase, "Emotet loader", 2.5),
			`(@malwareName:"Emotet loader")=>{$weight:2.5;}`,
		},
		{
			"fuzzy wraps each token",
			query.NewClause("malwareName", match.Fuzzy, "emotet-x", 2),
			`(@malwareName:(%emotet%|%x%))=>{$weight:2;}`,
		},
		{
			"plain ors tokens",
			query.NewClause("behaviorDescriptionEn", match.Plain, "drops loader", 1.2),
			`(@behaviorDescriptionEn:(drops|loader))=>{$weight:1.2;}`,
		},
		{
			"punctuation only is dropped",
			query.NewClause("malwareName", match.Phrase, "--", 2.5),
			"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := renderClause(tt.clause); got != tt.want {
				t.Errorf("renderClause() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRender_AnyOf(t *testing.T) {
	q := query.NewAnyOf(mode.FreeText, []query.Clause{
		query.NewClause("malwareName", match.Plain, "emotet", 1),
		query.NewClause("malwareName", match.Phrase, "!!", 1),
		query.NewClause("threatClassification", match.Plain, "trojan", 1.5),
	}, 1)

	got, err := render(q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `(@malwareName:(emotet))=>{$weight:1;} | (@threatClassification:(trojan))=>{$weight:1.5;}`
	if got != want {
		t.Errorf("render() = %s\nwant %s", got, want)
	}
}

func TestRender_AnyOfMinimumUnsupported(t *testing.T) {
	q := query.NewAnyOf(mode.FreeText, []query.Clause{
		query.NewClause("malwareName", match.Plain, "a", 1),
		query.NewClause("malwareName", match.Plain, "b", 1),
	}, 2)
	if _, err := render(q); err == nil {
		t.Fatal("expected error for minimum matches > 1")
	}
}

func TestRender_AllOfWithExclusions(t *testing.T) {
	q := query.NewAllOf(mode.Boolean,
		[]query.Clause{
			query.NewClause("malwareName", match.Phrase, "emotet", 1),
			query.NewClause("threatClassification", match.Phrase, "trojan", 1),
		},
		[]query.Clause{query.NewClause("securityOrganization", match.Phrase, "acme", 1)},
	)

	got, err := render(q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `(@malwareName:"emotet")=>{$weight:1;} (@threatClassification:"trojan")=>{$weight:1;} -(@securityOrganization:"acme")=>{$weight:1;}`
	if got != want {
		t.Errorf("render() = %s\nwant %s", got, want)
	}
}

func TestRender_AllOfNothingPositive(t *testing.T) {
	q := query.NewAllOf(mode.Boolean,
		[]query.Clause{query.NewClause("malwareName", match.Phrase, "...", 1)},
		[]query.Clause{query.NewClause("malwareName", match.Phrase, "emotet", 1)},
	)
	got, err := render(q)
	if err != nil || got != "" {
		t.Fatalf("render() = %q, %v; want empty", got, err)
	}
}

func TestRender_AllOfEmptyOperandMatchesNothing(t *testing.T) {
	q := query.NewAllOf(mode.Boolean,
		[]query.Clause{
			query.NewClause("malwareName", match.Fuzzy, "!!!", 1),
			query.NewClause("threatClassification", match.Plain, "trojan", 1),
		},
		nil,
	)
	got, err := render(q)
	if err != nil || got != "" {
		t.Fatalf("render() = %q, %v; want empty", got, err)
	}
}

func TestRender_EmptyExclusionIsDropped(t *testing.T) {
	q := query.NewAllOf(mode.Boolean,
		[]query.Clause{query.NewClause("threatClassification", match.Fuzzy, "trojan", 1)},
		[]query.Clause{query.NewClause("malwareName", match.Plain, "???", 1)},
	)
	got, err := render(q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "(@threatClassification:(%trojan%))=>{$weight:1;}"; got != want {
		t.Errorf("render() = %s\nwant %s", got, want)
	}
}

func TestRender_NearestRejected(t *testing.T) {
	q := query.NewNearest(query.KNN{Field: "v", Vector: []float32{1}, K: 1, NumCandidates: 1})
	if _, err := render(q); err == nil {
		t.Fatal("expected error")
	}
}

func TestTokenize(t *testing.T) {
	got := tokenize("Trojan.Win32/Emotet  čćž-42")
	want := []string{"Trojan", "Win32", "Emotet", "čćž", "42"}
	if len(got) != len(want) {
		t.Fatalf("tokenize() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %q, want %q", i, got[i], want[i])
		}
	}
}
