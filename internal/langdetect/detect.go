// Package langdetect routes behavior descriptions to a per-language field.
package langdetect

import (
	"strings"

	"github.com/abadojack/whatlanggo"

	"github.com/kailas-cloud/reportdex/internal/domain/report"
)

// Detector classifies description text as Serbian or English.
type Detector struct {
	detect func(text string) whatlanggo.Lang
}

// New creates a whatlanggo-backed detector.
func New() Detector {
	return Detector{detect: func(text string) whatlanggo.Lang {
		return whatlanggo.Detect(text).Lang
	}}
}

// Detect returns Serbian for Serbian and Croatian text (the two are routinely
// confused on short input) and English for everything else, including blanks.
func (d Detector) Detect(text string) report.Language {
	if strings.TrimSpace(text) == "" {
		return report.English
	}
	return route(d.detect(text))
}

func route(l whatlanggo.Lang) report.Language {
	switch l {
	case whatlanggo.Srp, whatlanggo.Hrv:
		return report.Serbian
	default:
		return report.English
	}
}
