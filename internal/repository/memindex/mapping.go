package memindex

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/single"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/kailas-cloud/reportdex/internal/domain/search/field"
)

// Analyzer names registered on the index mapping.
const (
	textAnalyzer   = "report_text"
	foldedAnalyzer = "keyword_lc"
)

// buildMapping mirrors the Redis schema: searchable fields are analyzed text,
// keyword rows get an exact and a lowercased twin.
func buildMapping() (*mapping.IndexMappingImpl, error) {
	im := bleve.NewIndexMapping()

	// unicode words, lowercased, no stop words so phrases keep every token
	if err := im.AddCustomAnalyzer(textAnalyzer, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     unicode.Name,
		"token_filters": []string{lowercase.Name},
	}); err != nil {
		return nil, err
	}
	if err := im.AddCustomAnalyzer(foldedAnalyzer, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     single.Name,
		"token_filters": []string{lowercase.Name},
	}); err != nil {
		return nil, err
	}

	doc := bleve.NewDocumentMapping()
	doc.Dynamic = false

	for _, spec := range field.Table() {
		text := bleve.NewTextFieldMapping()
		text.Analyzer = textAnalyzer
		text.Store = true
		text.IncludeTermVectors = true
		text.IncludeInAll = false
		doc.AddFieldMappingsAt(spec.Name(), text)

		if !spec.HasExact() {
			continue
		}
		exact := bleve.NewTextFieldMapping()
		exact.Analyzer = keyword.Name
		exact.Store = false
		exact.IncludeInAll = false
		doc.AddFieldMappingsAt(spec.Name()+field.ExactSuffix, exact)

		folded := bleve.NewTextFieldMapping()
		folded.Analyzer = foldedAnalyzer
		folded.Store = false
		folded.IncludeInAll = false
		doc.AddFieldMappingsAt(spec.Name()+field.FoldedSuffix, folded)
	}

	im.DefaultMapping = doc
	im.DefaultAnalyzer = textAnalyzer
	return im, nil
}
