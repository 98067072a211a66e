package report

import (
	"strconv"
	"time"

	"github.com/kailas-cloud/reportdex/internal/db"
	domreport "github.com/kailas-cloud/reportdex/internal/domain/report"
	"github.com/kailas-cloud/reportdex/internal/domain/search/field"
)

// BuildHashFields flattens a report into HSET fields. Empty attributes are left out
// so they never reach the index.
func BuildHashFields(r *domreport.Report) map[string]string {
	m := make(map[string]string, 12)
	put := func(k, v string) {
		if v != "" {
			m[k] = v
		}
	}
	put(attrTitle, r.Title())
	put(field.AnalystFullName, r.AnalystFullName())
	put(field.SampleHash, r.SampleHash())
	put(field.ThreatClassification, r.ThreatClassification())
	put(field.SecurityOrganization, r.SecurityOrganization())
	put(field.MalwareName, r.MalwareName())
	put(field.BehaviorDescriptionSr, r.DescriptionSr())
	put(field.BehaviorDescriptionEn, r.DescriptionEn())
	put(attrLanguage, string(r.Language()))
	if !r.ConfirmedAt().IsZero() {
		m[attrConfirmedAt] = strconv.FormatInt(r.ConfirmedAt().UnixMilli(), 10)
	}
	if len(r.Vector()) > 0 {
		m[field.VectorizedContent] = db.EncodeVector(r.Vector())
	}
	return m
}

// ParseHashFields rebuilds a report from its stored hash.
func ParseHashFields(id string, m map[string]string) domreport.Report {
	lang := domreport.Language(m[attrLanguage])
	description := m[field.BehaviorDescriptionEn]
	if sr := m[field.BehaviorDescriptionSr]; sr != "" {
		description = sr
		lang = domreport.Serbian
	}
	if lang == "" {
		lang = domreport.English
	}

	var confirmedAt time.Time
	if ms, err := strconv.ParseInt(m[attrConfirmedAt], 10, 64); err == nil {
		confirmedAt = time.UnixMilli(ms).UTC()
	}

	var vector []float32
	if raw, ok := m[field.VectorizedContent]; ok {
		vector = db.DecodeVector(raw)
	}

	return domreport.Reconstruct(domreport.Input{
		ID:                   id,
		Title:                m[attrTitle],
		AnalystFullName:      m[field.AnalystFullName],
		SampleHash:           m[field.SampleHash],
		ThreatClassification: m[field.ThreatClassification],
		SecurityOrganization: m[field.SecurityOrganization],
		MalwareName:          m[field.MalwareName],
		BehaviorDescription:  description,
	}, lang, vector, confirmedAt)
}
