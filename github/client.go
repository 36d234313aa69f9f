// Package github reads closed issues and pull requests from the GitHub REST
// API as context for repository analysis. All access is read-only. Bodies
// are truncated to fixed byte budgets before they reach a model prompt.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/bradleyfalzon/ghinstallation/v2"

	"github.com/fixscout/fixscout/evidence"
)

const (
	defaultBaseURL = "https://api.github.com"
	userAgent      = "fixscout"
	requestTimeout = 30 * time.Second

	// Byte budgets for text bodies returned to the caller.
	issueBodyPreviewLimit = 4000
	issueBodyFullLimit    = 12000
	prPatchLimit          = 8000
	commentBodyLimit      = 4000

	perPage = 100
)

// APIError indicates the API returned a non-2xx status.
type APIError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("GitHub API returned %d for %s: %s", e.StatusCode, e.URL, e.Body)
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// requestError marks transport and API failures that a tool binding should
// surface as an error record rather than abort the call chain.
type requestError struct {
	err error
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

// IsRequestError reports whether err originated from a GitHub request, as
// opposed to invalid arguments supplied by the caller.
func IsRequestError(err error) bool {
	var reqErr *requestError
	return errors.As(err, &reqErr)
}

// Client is a minimal read-only GitHub REST API client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	recorder   *evidence.Recorder
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL, mainly for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithToken sets an explicit bearer token instead of reading the environment.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// NewClient creates a client that authenticates with a personal access token
// from the environment when one is set. Unauthenticated access works for
// public repositories at a lower rate limit.
func NewClient(recorder *evidence.Recorder, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    defaultBaseURL,
		token:      tokenFromEnv(),
		recorder:   recorder,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewAppClient creates a client authenticating as a GitHub App installation.
// The privateKey should be the PEM-encoded private key of the GitHub App.
func NewAppClient(appID, installationID int64, privateKey []byte, recorder *evidence.Recorder, logger *slog.Logger) (*Client, error) {
	transport, err := ghinstallation.New(http.DefaultTransport, appID, installationID, privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create installation transport: %w", err)
	}
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout, Transport: transport},
		baseURL:    defaultBaseURL,
		recorder:   recorder,
		logger:     logger,
	}, nil
}

func tokenFromEnv() string {
	for _, name := range []string{"GITHUB_TOKEN", "GITHUB_API_TOKEN", "GH_TOKEN"} {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// getJSON performs a GET request and decodes the JSON response into out.
// Transport and API failures come back wrapped so IsRequestError matches.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.logger.Debug("GitHub API request", "url", u)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &requestError{err: fmt.Errorf("request to %s failed: %w", u, err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &requestError{err: fmt.Errorf("failed to read response from %s: %w", u, err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &requestError{err: &APIError{
			StatusCode: resp.StatusCode,
			URL:        u,
			Body:       truncateBytes(string(body), 200),
		}}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &requestError{err: fmt.Errorf("failed to decode response from %s: %w", u, err)}
	}
	return nil
}

// truncateBytes cuts s at max bytes. Limits are byte counts, so a multibyte
// rune at the boundary may be split.
func truncateBytes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

// isoSinceDays formats a cutoff timestamp sinceDays in the past as RFC 3339
// UTC for the API's "since" parameter.
func isoSinceDays(days int) string {
	return time.Now().UTC().AddDate(0, 0, -days).Format(time.RFC3339)
}
