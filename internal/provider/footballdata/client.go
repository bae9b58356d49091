// Package footballdata provides the HTTP client for the football-data.org v4
// API, the live match source.
//
// football-data uses header-based auth (X-Auth-Token) and a strict per-minute
// request quota. Rate limiting is handled via a token bucket limiter.
package footballdata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/albapepper/goalbot/internal/match"
)

const DefaultBaseURL = "https://api.football-data.org/v4"

// Client is the HTTP client for football-data endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiToken   string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a football-data HTTP client with rate limiting.
// A non-positive timeout falls back to 30s.
func NewClient(baseURL, apiToken string, requestsPerMinute int, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	limit := rate.Inf
	if requestsPerMinute > 0 {
		limit = rate.Limit(float64(requestsPerMinute) / 60.0)
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiToken:   apiToken,
		limiter:    rate.NewLimiter(limit, 1),
		logger:     logger,
	}
}

// matchesResponse is the /matches envelope. Matches stay raw so that one
// irregular match cannot fail the whole decode.
type matchesResponse struct {
	Matches []json.RawMessage `json:"matches"`
}

// LiveMatches returns every match the API currently reports as live.
func (c *Client) LiveMatches(ctx context.Context) ([]match.Match, error) {
	body, err := c.get(ctx, "/matches", url.Values{"status": {"LIVE"}})
	if err != nil {
		return nil, err
	}

	var resp matchesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode matches: %w", err)
	}

	matches := make([]match.Match, 0, len(resp.Matches))
	for i, rawMsg := range resp.Matches {
		// UseNumber keeps 64-bit IDs exact.
		var raw map[string]any
		dec := json.NewDecoder(bytes.NewReader(rawMsg))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			c.logger.Warn("Skipping undecodable match", "index", i, "error", err)
			continue
		}
		m, err := match.FromRaw(raw)
		if err != nil {
			c.logger.Warn("Skipping match", "index", i, "error", err)
			continue
		}
		matches = append(matches, m)
	}

	c.logger.Debug("Fetched live matches", "count", len(matches))
	return matches, nil
}

// get performs a rate-limited GET request to a football-data endpoint.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Auth-Token", c.apiToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("football-data %s returned %d: %s", path, resp.StatusCode, truncate(body, 200))
	}
	return body, nil
}

// truncate returns a truncated string for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
