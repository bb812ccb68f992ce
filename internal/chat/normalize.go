package chat

import (
	"fmt"
	"strings"

	"github.com/vulnwatch/cyberrag/internal/backend"
	"github.com/vulnwatch/cyberrag/internal/domain"
)

// The normalizer maps every backend outcome onto exactly one assistant
// message. The display layer is the only place that interprets the
// **...** emphasis markup embedded in the content.

// normalizeLookupHit renders a direct-lookup success. The field order is
// fixed so rendering and tests can rely on the textual structure.
func normalizeLookupHit(record *domain.CVERecord) domain.Message {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s**\n\n", record.CVEID)
	fmt.Fprintf(&sb, "Severity: **%s** (CVSS %s)\n", record.Severity, record.Score)
	fmt.Fprintf(&sb, "Status: %s\n", record.Status)
	fmt.Fprintf(&sb, "Published: %s\n", record.Published)
	fmt.Fprintf(&sb, "Last Modified: %s\n\n", record.LastModified)
	sb.WriteString(record.Description)

	content := strings.TrimSpace(sb.String())
	return domain.NewAssistantMessage(content, []domain.Citation{record.Citation()}, false)
}

// normalizeLookupMiss renders a direct lookup the backend had no record
// for. Recoverable: the user can simply submit again.
func normalizeLookupMiss(id string) domain.Message {
	content := fmt.Sprintf(
		"I couldn't find **%s** in the vulnerability database. "+
			"Double-check the identifier, or ask a question and I'll search for related records.",
		id)
	return domain.NewAssistantMessage(content, nil, true)
}

// normalizeQueryResult renders a semantic-search success: the answer
// verbatim, the citation list passed through unchanged.
func normalizeQueryResult(result *backend.QueryResult) domain.Message {
	return domain.NewAssistantMessage(result.Answer, result.Sources, false)
}

// normalizeFailure renders any transport or domain failure. The failure
// never propagates past the dispatcher; it becomes one error message and
// the session returns to idle.
func normalizeFailure(err error) domain.Message {
	content := fmt.Sprintf(
		"Sorry, I ran into a problem answering that: %s. "+
			"Please verify the CyberRAG backend is running and reachable, then try again.",
		err.Error())
	return domain.NewAssistantMessage(content, nil, true)
}
