// Package dto holds the JSON views shared by the HTTP, MCP and CLI transports.
package dto

import (
	"time"

	domreport "github.com/kailas-cloud/reportdex/internal/domain/report"
	"github.com/kailas-cloud/reportdex/internal/domain/search/result"
)

// ReportRequest is the body of POST /api/index/confirm.
type ReportRequest struct {
	ID                   string `json:"id,omitempty"`
	Title                string `json:"title,omitempty"`
	AnalystFullName      string `json:"analystFullName,omitempty"`
	SampleHash           string `json:"sampleHash"`
	ThreatClassification string `json:"threatClassification,omitempty"`
	SecurityOrganization string `json:"securityOrganization,omitempty"`
	MalwareName          string `json:"malwareName,omitempty"`
	BehaviorDescription  string `json:"behaviorDescription,omitempty"`
}

// Input converts the request body into domain input.
func (r ReportRequest) Input() domreport.Input {
	return domreport.Input{
		ID:                   r.ID,
		Title:                r.Title,
		AnalystFullName:      r.AnalystFullName,
		SampleHash:           r.SampleHash,
		ThreatClassification: r.ThreatClassification,
		SecurityOrganization: r.SecurityOrganization,
		MalwareName:          r.MalwareName,
		BehaviorDescription:  r.BehaviorDescription,
	}
}

// ReportResponse is a stored report as seen by API clients.
type ReportResponse struct {
	ID                    string     `json:"id"`
	Title                 string     `json:"title,omitempty"`
	AnalystFullName       string     `json:"analystFullName,omitempty"`
	SampleHash            string     `json:"sampleHash,omitempty"`
	ThreatClassification  string     `json:"threatClassification,omitempty"`
	SecurityOrganization  string     `json:"securityOrganization,omitempty"`
	MalwareName           string     `json:"malwareName,omitempty"`
	BehaviorDescriptionSr string     `json:"behaviorDescriptionSr,omitempty"`
	BehaviorDescriptionEn string     `json:"behaviorDescriptionEn,omitempty"`
	Language              string     `json:"language,omitempty"`
	ConfirmedAt           *time.Time `json:"confirmedAt,omitempty"`
}

// HitResponse is one ranked search result.
type HitResponse struct {
	ReportResponse
	Score      float64             `json:"score"`
	Highlights map[string][]string `json:"highlights,omitempty"`
}

// PageResponse is the paged search envelope.
type PageResponse struct {
	Content       []HitResponse `json:"content"`
	Number        int           `json:"number"`
	Size          int           `json:"size"`
	TotalElements int           `json:"total_elements"`
	TotalPages    int           `json:"total_pages"`
}

// FromReport converts a domain report.
func FromReport(r *domreport.Report) ReportResponse {
	resp := ReportResponse{
		ID:                    r.ID(),
		Title:                 r.Title(),
		AnalystFullName:       r.AnalystFullName(),
		SampleHash:            r.SampleHash(),
		ThreatClassification:  r.ThreatClassification(),
		SecurityOrganization:  r.SecurityOrganization(),
		MalwareName:           r.MalwareName(),
		BehaviorDescriptionSr: r.DescriptionSr(),
		BehaviorDescriptionEn: r.DescriptionEn(),
		Language:              string(r.Language()),
	}
	if t := r.ConfirmedAt(); !t.IsZero() {
		resp.ConfirmedAt = &t
	}
	return resp
}

// FromPage converts a domain result page.
func FromPage(p result.Page) PageResponse {
	items := p.Items()
	content := make([]HitResponse, len(items))
	for i := range items {
		rep := items[i].Report()
		content[i] = HitResponse{
			ReportResponse: FromReport(&rep),
			Score:          items[i].Score(),
			Highlights:     items[i].Highlights(),
		}
		if content[i].ID == "" {
			content[i].ID = items[i].ID()
		}
	}
	return PageResponse{
		Content:       content,
		Number:        p.Number(),
		Size:          p.Size(),
		TotalElements: p.TotalElements(),
		TotalPages:    p.TotalPages(),
	}
}
