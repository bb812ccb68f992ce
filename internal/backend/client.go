// Package backend provides the HTTP client for the CyberRAG retrieval
// backend. The backend owns semantic search, the CVE database, and its
// nightly refresh; this package only speaks its JSON API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vulnwatch/cyberrag/internal/domain"
)

var (
	// ErrNotFound indicates a direct lookup for an identifier the backend
	// has no record for. Callers treat this as a domain miss, not a failure.
	ErrNotFound = errors.New("cve not found")

	errUnexpectedStatus = errors.New("unexpected response status")
)

// Client is the retrieval backend as seen by the rest of the application.
type Client interface {
	// LookupCVE retrieves one vulnerability record by canonical identifier.
	// Returns ErrNotFound when the backend has no such record.
	LookupCVE(ctx context.Context, id string) (*domain.CVERecord, error)

	// Query runs a semantic search conditioned on conversation history.
	Query(ctx context.Context, query string, history []HistoryEntry) (*QueryResult, error)

	// Search finds CVE records matching a free-text term.
	Search(ctx context.Context, term string, limit int) ([]domain.CVERecord, error)

	// News returns recently modified CVEs matching the request filters.
	News(ctx context.Context, req NewsRequest) (*NewsResult, error)

	// Stats describes the backend vulnerability database.
	Stats(ctx context.Context) (*Stats, error)

	// Health verifies the backend is reachable.
	Health(ctx context.Context) error
}

// ClientConfig holds configuration for the HTTP client.
type ClientConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
}

// DefaultClientConfig returns default configuration.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL:        "http://localhost:5001",
		RequestTimeout: 60 * time.Second,
	}
}

// HTTPClient implements Client against the Flask backend API.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewHTTPClient creates a client for the backend at cfg.BaseURL.
// No network I/O happens here; call Health to probe reachability.
func NewHTTPClient(cfg ClientConfig, logger *slog.Logger) (*HTTPClient, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultClientConfig().BaseURL
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultClientConfig().RequestTimeout
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid backend base URL %q: %w", cfg.BaseURL, err)
	}

	return &HTTPClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.RequestTimeout},
		logger:  logger,
	}, nil
}

// LookupCVE retrieves one record by exact identifier.
func (c *HTTPClient) LookupCVE(ctx context.Context, id string) (*domain.CVERecord, error) {
	var resp lookupResponse
	status, err := c.get(ctx, "/api/cve/"+url.PathEscape(id), &resp)
	if err != nil {
		return nil, err
	}

	if status == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if !resp.Success {
		return nil, fmt.Errorf("lookup %s: %w: %d", id, errUnexpectedStatus, status)
	}
	return resp.record(), nil
}

// Query runs a semantic search with conversation history as context.
func (c *HTTPClient) Query(ctx context.Context, query string, history []HistoryEntry) (*QueryResult, error) {
	var resp queryResponse
	if err := c.post(ctx, "/api/query", queryRequest{Query: query, History: history}, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		// Domain failure: the backend answered but could not process the
		// query. Surface its own explanation when it gave one.
		reason := resp.Error
		if reason == "" {
			reason = resp.Message
		}
		if reason == "" {
			reason = "semantic search failed"
		}
		return nil, errors.New(reason)
	}

	sources := make([]domain.Citation, len(resp.Sources))
	for i, s := range resp.Sources {
		sources[i] = s.citation()
	}
	return &QueryResult{Answer: resp.Answer, Sources: sources}, nil
}

// Search finds CVE records matching a free-text term.
func (c *HTTPClient) Search(ctx context.Context, term string, limit int) ([]domain.CVERecord, error) {
	var resp searchResponse
	if err := c.post(ctx, "/api/search", searchRequest{Search: term, Limit: limit}, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, backendError("search", resp.Error)
	}
	records := make([]domain.CVERecord, len(resp.Results))
	for i, r := range resp.Results {
		records[i] = r.record()
	}
	return records, nil
}

// News returns recently modified CVEs matching the request filters.
func (c *HTTPClient) News(ctx context.Context, req NewsRequest) (*NewsResult, error) {
	if req.Filter == "" {
		req.Filter = "week"
	}
	var resp newsResponse
	if err := c.post(ctx, "/api/news", req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, backendError("news", resp.Error)
	}
	records := make([]domain.CVERecord, len(resp.CVEs))
	for i, r := range resp.CVEs {
		records[i] = r.record()
	}
	return &NewsResult{CVEs: records, Total: resp.Total, Filter: resp.Filter}, nil
}

// Stats describes the backend vulnerability database.
func (c *HTTPClient) Stats(ctx context.Context) (*Stats, error) {
	var resp statsResponse
	if _, err := c.get(ctx, "/api/stats", &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, backendError("stats", resp.Error)
	}
	return &resp.Stats, nil
}

// Health verifies the backend is reachable and reports itself healthy.
func (c *HTTPClient) Health(ctx context.Context) error {
	var resp healthResponse
	if _, err := c.get(ctx, "/api/health", &resp); err != nil {
		return err
	}
	if resp.Status != "healthy" {
		return fmt.Errorf("backend unhealthy: %s", resp.Status)
	}
	return nil
}

func backendError(op, reason string) error {
	if reason == "" {
		reason = "backend reported failure"
	}
	return fmt.Errorf("%s: %s", op, reason)
}

func (c *HTTPClient) get(ctx context.Context, path string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return 0, fmt.Errorf("build request %s: %w", path, err)
	}
	return c.do(req, out)
}

func (c *HTTPClient) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request %s: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	_, err = c.do(req, out)
	return err
}

// do executes the request and decodes the JSON body into out. The status
// code is returned alongside so callers can distinguish domain misses
// (which the backend expresses as non-2xx JSON bodies) from transport
// failures.
func (c *HTTPClient) do(req *http.Request, out any) (int, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("backend request %s: %w", req.URL.Path, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Debug("failed to close response body", "path", req.URL.Path, "error", closeErr)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response %s: %w", req.URL.Path, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return resp.StatusCode, fmt.Errorf("backend request %s: %w: %d", req.URL.Path, errUnexpectedStatus, resp.StatusCode)
		}
		return resp.StatusCode, fmt.Errorf("decode response %s: %w", req.URL.Path, err)
	}
	return resp.StatusCode, nil
}
