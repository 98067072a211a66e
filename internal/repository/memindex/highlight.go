package memindex

import (
	"fmt"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	simplefrag "github.com/blevesearch/bleve/v2/search/highlight/fragmenter/simple"
	htmlformat "github.com/blevesearch/bleve/v2/search/highlight/format/html"
	simplehl "github.com/blevesearch/bleve/v2/search/highlight/highlighter/simple"

	"github.com/kailas-cloud/reportdex/internal/domain/search/query"
)

// Highlight styles live in bleve's process-wide cache; each tag and size combination is defined once.
var styleMu sync.Mutex

// highlightStyle returns the name of a highlighter that cuts fragments to hl.FragmentSize
// characters and wraps matches in hl.PreTag/hl.PostTag.
func highlightStyle(hl *query.Highlight) (string, error) {
	name := fmt.Sprintf("report_hl_%d_%q_%q", hl.FragmentSize, hl.PreTag, hl.PostTag)

	styleMu.Lock()
	defer styleMu.Unlock()

	cache := bleve.Config.Cache
	if _, err := cache.HighlighterNamed(name); err == nil {
		return name, nil
	}

	frag := map[string]interface{}{"type": simplefrag.Name}
	if hl.FragmentSize > 0 {
		frag["size"] = float64(hl.FragmentSize)
	}
	if _, err := cache.DefineFragmenter(name+"_frag", frag); err != nil {
		return "", fmt.Errorf("define fragmenter: %w", err)
	}
	if _, err := cache.DefineFragmentFormatter(name+"_fmt", map[string]interface{}{
		"type":   htmlformat.Name,
		"before": hl.PreTag,
		"after":  hl.PostTag,
	}); err != nil {
		return "", fmt.Errorf("define formatter: %w", err)
	}
	if _, err := cache.DefineHighlighter(name, map[string]interface{}{
		"type":       simplehl.Name,
		"fragmenter": name + "_frag",
		"formatter":  name + "_fmt",
	}); err != nil {
		return "", fmt.Errorf("define highlighter: %w", err)
	}
	return name, nil
}

// keepMarked drops fragments without a highlighted term and caps each field at hl.MaxFragments.
func keepMarked(in map[string][]string, hl *query.Highlight) map[string][]string {
	out := make(map[string][]string)
	for name, frags := range in {
		var kept []string
		for _, f := range frags {
			if hl.PreTag != "" && !strings.Contains(f, hl.PreTag) {
				continue
			}
			kept = append(kept, f)
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
