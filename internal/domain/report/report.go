// Package report is the confirmed malware analysis record that gets indexed.
package report

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Language routes the behavior description to its per-language field.
type Language string

const (
	Serbian Language = "sr"
	English Language = "en"
)

var (
	idRegex   = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,128}$`)
	hashRegex = regexp.MustCompile(`^[a-fA-F0-9]{32,128}$`)
)

// MaxDescriptionSize bounds the behavior description in bytes.
const MaxDescriptionSize = 65536

// Report is a confirmed analysis. Immutable once built.
type Report struct {
	id                   string
	title                string
	analystFullName      string
	sampleHash           string
	threatClassification string
	securityOrganization string
	malwareName          string
	description          string
	language             Language
	vector               []float32
	confirmedAt          time.Time
}

// Input carries caller-supplied report attributes.
type Input struct {
	ID                   string
	Title                string
	AnalystFullName      string
	SampleHash           string
	ThreatClassification string
	SecurityOrganization string
	MalwareName          string
	BehaviorDescription  string
}

// New validates and creates a Report. An empty ID is allowed; the indexing service assigns one.
func New(in Input) (Report, error) {
	if in.ID != "" && !idRegex.MatchString(in.ID) {
		return Report{}, fmt.Errorf("report ID must be 1-128 alphanumeric, underscore or hyphen characters")
	}
	hash := strings.TrimSpace(in.SampleHash)
	if hash == "" {
		return Report{}, fmt.Errorf("sample hash is required")
	}
	if !hashRegex.MatchString(hash) {
		return Report{}, fmt.Errorf("sample hash must be 32-128 hex characters")
	}
	if strings.TrimSpace(in.MalwareName) == "" &&
		strings.TrimSpace(in.ThreatClassification) == "" &&
		strings.TrimSpace(in.BehaviorDescription) == "" {
		return Report{}, fmt.Errorf("one of malware name, threat classification or behavior description is required")
	}
	if len(in.BehaviorDescription) > MaxDescriptionSize {
		return Report{}, fmt.Errorf("behavior description too large (max %d bytes)", MaxDescriptionSize)
	}

	return Report{
		id:                   in.ID,
		title:                strings.TrimSpace(in.Title),
		analystFullName:      strings.TrimSpace(in.AnalystFullName),
		sampleHash:           hash,
		threatClassification: strings.TrimSpace(in.ThreatClassification),
		securityOrganization: strings.TrimSpace(in.SecurityOrganization),
		malwareName:          strings.TrimSpace(in.MalwareName),
		description:          strings.TrimSpace(in.BehaviorDescription),
		language:             English,
	}, nil
}

// Reconstruct creates a Report without validation (storage hydration).
func Reconstruct(in Input, lang Language, vector []float32, confirmedAt time.Time) Report {
	return Report{
		id:                   in.ID,
		title:                in.Title,
		analystFullName:      in.AnalystFullName,
		sampleHash:           in.SampleHash,
		threatClassification: in.ThreatClassification,
		securityOrganization: in.SecurityOrganization,
		malwareName:          in.MalwareName,
		description:          in.BehaviorDescription,
		language:             lang,
		vector:               vector,
		confirmedAt:          confirmedAt,
	}
}

// ID returns the report identifier.
func (r *Report) ID() string { return r.id }

// Title returns the report title.
func (r *Report) Title() string { return r.title }

// AnalystFullName returns the analyst who confirmed the report.
func (r *Report) AnalystFullName() string { return r.analystFullName }

// SampleHash returns the analyzed sample hash as submitted.
func (r *Report) SampleHash() string { return r.sampleHash }

// ThreatClassification returns the threat class.
func (r *Report) ThreatClassification() string { return r.threatClassification }

// SecurityOrganization returns the reporting organization.
func (r *Report) SecurityOrganization() string { return r.securityOrganization }

// MalwareName returns the malware family name.
func (r *Report) MalwareName() string { return r.malwareName }

// BehaviorDescription returns the free-text behavior description.
func (r *Report) BehaviorDescription() string { return r.description }

// Language returns the detected description language.
func (r *Report) Language() Language { return r.language }

// Vector returns the report embedding, nil when vectorization failed.
func (r *Report) Vector() []float32 { return r.vector }

// ConfirmedAt returns when the report was indexed.
func (r *Report) ConfirmedAt() time.Time { return r.confirmedAt }

// DescriptionSr returns the description when it was routed to the Serbian field.
func (r *Report) DescriptionSr() string {
	if r.language == Serbian {
		return r.description
	}
	return ""
}

// DescriptionEn returns the description when it was routed to the English field.
func (r *Report) DescriptionEn() string {
	if r.language != Serbian {
		return r.description
	}
	return ""
}

// EmbeddingText is the text vectorized for semantic search.
func (r *Report) EmbeddingText() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{r.title, r.malwareName, r.threatClassification, r.description} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "\n")
}

// SetID assigns the identifier.
func (r *Report) SetID(id string) { r.id = id }

// SetLanguage routes the description.
func (r *Report) SetLanguage(l Language) { r.language = l }

// SetVector sets the embedding.
func (r *Report) SetVector(v []float32) { r.vector = v }

// SetConfirmedAt stamps the indexing time.
func (r *Report) SetConfirmedAt(t time.Time) { r.confirmedAt = t }
