// Package chat implements the conversational core: the message store,
// CVE identifier extraction, the query dispatcher, and normalization of
// backend responses into displayable messages.
package chat

import (
	"regexp"
	"strings"
)

// cvePattern matches a canonical CVE identifier anywhere in free text:
// "CVE", a 4-digit year, and a sequence of 4 or more digits. Shorter
// year or sequence fragments do not match.
var cvePattern = regexp.MustCompile(`(?i)CVE-\d{4}-\d{4,}`)

// ExtractCVEID returns the first CVE identifier found in text, normalized
// to its canonical uppercase form, or "" when text contains none. It is a
// pure function: same input, same output, no side effects.
func ExtractCVEID(text string) string {
	match := cvePattern.FindString(text)
	if match == "" {
		return ""
	}
	return strings.ToUpper(match)
}
