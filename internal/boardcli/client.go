package boardcli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/okian/internxp/internal/domain/types"
)

const devPrincipalHeader = "X-Local-Dev-Principal"

// Client fetches leaderboard rows over HTTP.
type Client struct {
	http *http.Client
	cfg  *Config
}

// NewClient creates a client with the configured timeout.
func NewClient(cfg *Config) *Client {
	return &Client{http: &http.Client{Timeout: cfg.Timeout}, cfg: cfg}
}

// Leaderboard calls GET /candidate/leaderboard with the configured filters.
func (c *Client) Leaderboard(ctx context.Context) ([]types.Entry, error) {
	q := url.Values{}
	if c.cfg.Department != "" {
		q.Set("department", c.cfg.Department)
	}
	if c.cfg.Period != "" {
		q.Set("period", c.cfg.Period)
	}
	if c.cfg.Scope != "" {
		q.Set("scope", c.cfg.Scope)
	}
	if c.cfg.Limit > 0 {
		q.Set("limit", strconv.Itoa(c.cfg.Limit))
	}
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/candidate/leaderboard"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	} else {
		req.Header.Set(devPrincipalHeader, c.cfg.Principal)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d: %s", ErrBadStatus, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var entries []types.Entry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return entries, nil
}
