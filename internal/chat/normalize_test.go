package chat

import (
	"errors"
	"strings"
	"testing"

	"github.com/vulnwatch/cyberrag/internal/backend"
	"github.com/vulnwatch/cyberrag/internal/domain"
)

func TestNormalizeLookupHitLayout(t *testing.T) {
	t.Parallel()

	record := &domain.CVERecord{
		CVEID:        "CVE-2021-44228",
		Severity:     domain.SeverityCritical,
		Score:        "10.0",
		Status:       "Analyzed",
		Published:    "2021-12-10",
		LastModified: "2023-11-07",
		Description:  "Apache Log4j2 JNDI features allow remote code execution.",
	}

	msg := normalizeLookupHit(record)

	if msg.Role != domain.RoleAssistant || msg.IsError {
		t.Fatalf("unexpected message flags: %+v", msg)
	}

	lines := strings.Split(msg.Content, "\n")
	if lines[0] != "**CVE-2021-44228**" {
		t.Errorf("line 0 = %q, want bold identifier", lines[0])
	}

	// Fields appear in a fixed order.
	order := []string{"**CVE-2021-44228**", "Severity:", "Status:", "Published:", "Last Modified:", "Apache Log4j2"}
	pos := -1
	for _, marker := range order {
		i := strings.Index(msg.Content, marker)
		if i < 0 {
			t.Fatalf("content missing %q:\n%s", marker, msg.Content)
		}
		if i < pos {
			t.Errorf("%q appears out of order", marker)
		}
		pos = i
	}

	if !strings.Contains(msg.Content, "Severity: **CRITICAL** (CVSS 10.0)") {
		t.Errorf("severity line malformed:\n%s", msg.Content)
	}
	if strings.HasSuffix(msg.Content, "\n") || strings.HasPrefix(msg.Content, "\n") {
		t.Error("content must be trimmed")
	}
	if len(msg.Sources) != 1 || msg.Sources[0].CVEID != "CVE-2021-44228" {
		t.Errorf("sources = %+v, want singleton citation", msg.Sources)
	}
}

func TestNormalizeLookupHitHandlesMissingScore(t *testing.T) {
	t.Parallel()

	msg := normalizeLookupHit(&domain.CVERecord{
		CVEID:    "CVE-2024-9999",
		Severity: domain.SeverityUnknown,
		Score:    domain.ScoreNA,
	})
	if !strings.Contains(msg.Content, "(CVSS N/A)") {
		t.Errorf("missing-score rendering wrong:\n%s", msg.Content)
	}
}

func TestNormalizeLookupMiss(t *testing.T) {
	t.Parallel()

	msg := normalizeLookupMiss("CVE-2019-0001")
	if !msg.IsError {
		t.Error("miss must be error-flagged")
	}
	if !strings.Contains(msg.Content, "**CVE-2019-0001**") {
		t.Errorf("miss must name the identifier:\n%s", msg.Content)
	}
	if len(msg.Sources) != 0 {
		t.Error("miss carries no sources")
	}
}

func TestNormalizeQueryResultPassThrough(t *testing.T) {
	t.Parallel()

	result := &backend.QueryResult{
		Answer: "Here is **what I found**.\n\n- item",
		Sources: []domain.Citation{
			{CVEID: "CVE-2022-1111", Severity: domain.SeverityMedium, Score: "5.4"},
		},
	}
	msg := normalizeQueryResult(result)

	if msg.Content != result.Answer {
		t.Errorf("answer altered: %q", msg.Content)
	}
	if msg.IsError {
		t.Error("query success must not be error-flagged")
	}
	if len(msg.Sources) != 1 || msg.Sources[0].Score != "5.4" {
		t.Errorf("sources altered: %+v", msg.Sources)
	}
}

func TestNormalizeFailure(t *testing.T) {
	t.Parallel()

	msg := normalizeFailure(errors.New("dial tcp: connection refused"))
	if !msg.IsError {
		t.Error("failure must be error-flagged")
	}
	if !strings.Contains(msg.Content, "dial tcp: connection refused") {
		t.Errorf("failure text missing from message:\n%s", msg.Content)
	}
	if !strings.Contains(msg.Content, "try again") {
		t.Errorf("failure message must invite a retry:\n%s", msg.Content)
	}
}
