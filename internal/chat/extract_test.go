package chat

import "testing"

func TestExtractCVEID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"canonical form", "CVE-2023-1234", "CVE-2023-1234"},
		{"lowercase", "cve-2023-1234", "CVE-2023-1234"},
		{"mixed case", "Cve-2024-30940", "CVE-2024-30940"},
		{"embedded in sentence", "tell me about CVE-2021-44228 please", "CVE-2021-44228"},
		{"five digit sequence", "CVE-2024-123456", "CVE-2024-123456"},
		{"leftmost of several", "compare cve-2020-0001 with CVE-2021-9999", "CVE-2020-0001"},
		{"no identifier", "what are the worst vulnerabilities of 2024?", ""},
		{"empty", "", ""},
		{"three digit year", "CVE-202-1234", ""},
		{"three digit sequence", "CVE-2023-123", ""},
		{"missing hyphen", "CVE20231234", ""},
		{"year alone", "CVE-2023-", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ExtractCVEID(tt.input); got != tt.want {
				t.Errorf("ExtractCVEID(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtractCVEIDIsIdempotent(t *testing.T) {
	t.Parallel()

	input := "is cve-2023-1234 still exploited?"
	first := ExtractCVEID(input)
	for i := 0; i < 5; i++ {
		if got := ExtractCVEID(input); got != first {
			t.Fatalf("run %d: got %q, want %q", i, got, first)
		}
	}
}
