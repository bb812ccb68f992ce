package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Severity is a CVSS severity label as reported by the backend.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
	SeverityUnknown  Severity = "N/A"
)

// NormalizeSeverity maps a free-form backend label onto a known severity.
// Unrecognized labels collapse to SeverityUnknown.
func NormalizeSeverity(s string) Severity {
	switch Severity(strings.ToUpper(strings.TrimSpace(s))) {
	case SeverityCritical:
		return SeverityCritical
	case SeverityHigh:
		return SeverityHigh
	case SeverityMedium:
		return SeverityMedium
	case SeverityLow:
		return SeverityLow
	default:
		return SeverityUnknown
	}
}

// Score is a CVSS base score. The backend serializes it either as a JSON
// number or as the string "N/A", so it unmarshals from both and always
// marshals back as a string.
type Score string

// ScoreNA is the score used when the backend has no CVSS data.
const ScoreNA Score = "N/A"

// UnmarshalJSON accepts both `7.5` and `"7.5"` (and `"N/A"`).
func (s *Score) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		if strings.TrimSpace(asString) == "" {
			*s = ScoreNA
			return nil
		}
		*s = Score(asString)
		return nil
	}

	var asNumber json.Number
	if err := json.Unmarshal(data, &asNumber); err != nil {
		return err
	}
	*s = Score(asNumber.String())
	return nil
}

// Float returns the numeric value of the score, or 0 and false when the
// score is "N/A" or otherwise non-numeric.
func (s Score) Float() (float64, bool) {
	f, err := strconv.ParseFloat(string(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Citation is a structured summary of one vulnerability record attached to
// an assistant reply as supporting evidence.
type Citation struct {
	CVEID     string   `json:"cveId"`
	Severity  Severity `json:"severity"`
	Score     Score    `json:"score"`
	Published string   `json:"published"`
	Status    string   `json:"status"`
}

// CVERecord is one full vulnerability record as returned by direct lookup.
type CVERecord struct {
	CVEID        string   `json:"cve_id"`
	Severity     Severity `json:"severity"`
	Score        Score    `json:"score"`
	Status       string   `json:"status"`
	Published    string   `json:"published"`
	LastModified string   `json:"lastModified"`
	Year         string   `json:"year,omitempty"`
	Description  string   `json:"description"`
}

// Citation projects the record onto the citation shape used on assistant
// messages.
func (r *CVERecord) Citation() Citation {
	return Citation{
		CVEID:     r.CVEID,
		Severity:  r.Severity,
		Score:     r.Score,
		Published: r.Published,
		Status:    r.Status,
	}
}
