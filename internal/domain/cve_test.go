package domain

import (
	"encoding/json"
	"testing"
)

func TestScoreUnmarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  Score
	}{
		{"number", `7.5`, "7.5"},
		{"integer number", `10`, "10"},
		{"string", `"9.8"`, "9.8"},
		{"not available", `"N/A"`, ScoreNA},
		{"empty string", `""`, ScoreNA},
		{"blank string", `"  "`, ScoreNA},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var s Score
			if err := json.Unmarshal([]byte(tt.input), &s); err != nil {
				t.Fatalf("unmarshal %s: %v", tt.input, err)
			}
			if s != tt.want {
				t.Errorf("Score = %q, want %q", s, tt.want)
			}
		})
	}
}

func TestScoreUnmarshalRejectsNonScalar(t *testing.T) {
	t.Parallel()

	var s Score
	if err := json.Unmarshal([]byte(`{"v":1}`), &s); err == nil {
		t.Error("expected error for object input")
	}
}

func TestScoreFloat(t *testing.T) {
	t.Parallel()

	if f, ok := Score("7.5").Float(); !ok || f != 7.5 {
		t.Errorf("Float() = %v, %v", f, ok)
	}
	if _, ok := ScoreNA.Float(); ok {
		t.Error("N/A must not parse as a number")
	}
}

func TestNormalizeSeverity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  Severity
	}{
		{"CRITICAL", SeverityCritical},
		{"critical", SeverityCritical},
		{" High ", SeverityHigh},
		{"medium", SeverityMedium},
		{"LOW", SeverityLow},
		{"", SeverityUnknown},
		{"moderate", SeverityUnknown},
	}
	for _, tt := range tests {
		if got := NormalizeSeverity(tt.input); got != tt.want {
			t.Errorf("NormalizeSeverity(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCVERecordCitation(t *testing.T) {
	t.Parallel()

	record := CVERecord{
		CVEID:        "CVE-2023-1234",
		Severity:     SeverityHigh,
		Score:        "7.5",
		Status:       "Analyzed",
		Published:    "2023-03-01",
		LastModified: "2023-06-15",
		Description:  "details",
	}
	c := record.Citation()
	if c.CVEID != record.CVEID || c.Severity != record.Severity || c.Score != record.Score {
		t.Errorf("citation = %+v", c)
	}
	if c.Published != record.Published || c.Status != record.Status {
		t.Errorf("citation = %+v", c)
	}
}
