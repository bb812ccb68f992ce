package backend

import (
	"github.com/vulnwatch/cyberrag/internal/domain"
)

// HistoryEntry is one prior conversation turn as the backend expects it.
// It deliberately carries only role and content: presentation metadata
// (timestamps, sources, error flags) must never reach the backend.
type HistoryEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// QueryResult is the outcome of a successful semantic search.
type QueryResult struct {
	Answer  string
	Sources []domain.Citation
}

// Stats describes the backend vulnerability database.
type Stats struct {
	TotalCVEs      int    `json:"total_cves"`
	Database       string `json:"database"`
	EmbeddingModel string `json:"embedding_model"`
	LastUpdate     string `json:"last_update"`
}

// NewsRequest filters the recent-CVE feed.
type NewsRequest struct {
	Filter    string `json:"filter"`              // today, week, month, custom
	Severity  string `json:"severity,omitempty"`  // CRITICAL, HIGH, MEDIUM, LOW
	Limit     int    `json:"limit,omitempty"`
	StartDate string `json:"startDate,omitempty"` // custom filter only
	EndDate   string `json:"endDate,omitempty"`
}

// NewsResult is a page of recently modified CVEs.
type NewsResult struct {
	CVEs   []domain.CVERecord
	Total  int
	Filter string
}

// Wire shapes. The Flask backend uses snake_case keys that differ from the
// domain JSON contract, so requests and responses decode into these private
// structs and convert at the boundary.

type queryRequest struct {
	Query   string         `json:"query"`
	History []HistoryEntry `json:"history"`
}

type wireSource struct {
	CVEID              string       `json:"cve_id"`
	Severity           string       `json:"severity"`
	Score              domain.Score `json:"score"`
	Status             string       `json:"status"`
	Published          string       `json:"published"`
	Year               string       `json:"year"`
	DescriptionPreview string       `json:"description_preview"`
}

func (s wireSource) citation() domain.Citation {
	return domain.Citation{
		CVEID:     s.CVEID,
		Severity:  domain.Severity(s.Severity),
		Score:     s.Score,
		Published: s.Published,
		Status:    s.Status,
	}
}

type queryResponse struct {
	Success bool         `json:"success"`
	Answer  string       `json:"answer"`
	Sources []wireSource `json:"sources"`
	Error   string       `json:"error"`
	Message string       `json:"message"`
}

type lookupResponse struct {
	Success      bool         `json:"success"`
	CVEID        string       `json:"cve_id"`
	Severity     string       `json:"severity"`
	Score        domain.Score `json:"score"`
	Status       string       `json:"status"`
	Published    string       `json:"published"`
	LastModified string       `json:"lastModified"`
	Year         string       `json:"year"`
	Description  string       `json:"description"`
	Error        string       `json:"error"`
}

func (r lookupResponse) record() *domain.CVERecord {
	return &domain.CVERecord{
		CVEID:        r.CVEID,
		Severity:     domain.Severity(r.Severity),
		Score:        r.Score,
		Status:       r.Status,
		Published:    r.Published,
		LastModified: r.LastModified,
		Year:         r.Year,
		Description:  r.Description,
	}
}

type searchRequest struct {
	Search string `json:"search"`
	Limit  int    `json:"limit,omitempty"`
}

type wireCVE struct {
	CVEID        string       `json:"cve_id"`
	Severity     string       `json:"severity"`
	Score        domain.Score `json:"score"`
	Status       string       `json:"status"`
	Published    string       `json:"published"`
	LastModified string       `json:"lastModified"`
	Year         string       `json:"year"`
	Description  string       `json:"description"`
}

func (c wireCVE) record() domain.CVERecord {
	return domain.CVERecord{
		CVEID:        c.CVEID,
		Severity:     domain.Severity(c.Severity),
		Score:        c.Score,
		Status:       c.Status,
		Published:    c.Published,
		LastModified: c.LastModified,
		Year:         c.Year,
		Description:  c.Description,
	}
}

type searchResponse struct {
	Success bool      `json:"success"`
	Results []wireCVE `json:"results"`
	Count   int       `json:"count"`
	Error   string    `json:"error"`
}

type newsResponse struct {
	Success bool      `json:"success"`
	CVEs    []wireCVE `json:"cves"`
	Total   int       `json:"total"`
	Filter  string    `json:"filter"`
	Error   string    `json:"error"`
}

type statsResponse struct {
	Success bool `json:"success"`
	Stats
	Error string `json:"error"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
