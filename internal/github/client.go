// Package github resolves live release and repository data for plugins from
// the GitHub REST API.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/csp2hub/plugin-repository/internal/domain"
	"github.com/csp2hub/plugin-repository/internal/version"
)

// DefaultAPIURL is the public GitHub REST endpoint
const DefaultAPIURL = "https://api.github.com"

// DefaultTimeout is the default HTTP timeout for API requests
const DefaultTimeout = 30 * time.Second

// UserAgent identifies the tooling to the API
const UserAgent = "CSP2-Plugin-Repository/1.0"

// maxResponseSize bounds how much of an API response is read into memory
const maxResponseSize = 10 * 1024 * 1024

// ClientConfig holds configuration for the GitHub client
type ClientConfig struct {
	// APIURL is the REST API base URL
	APIURL string
	// Token is sent as a bearer token when set
	Token string
	// Timeout is the HTTP request timeout
	Timeout time.Duration
	// CacheDir enables the conditional-request cache when non-empty
	CacheDir string
}

// DefaultConfig returns a ClientConfig with default values
func DefaultConfig() ClientConfig {
	return ClientConfig{
		APIURL:  DefaultAPIURL,
		Timeout: DefaultTimeout,
	}
}

// Client implements domain.ReleaseSource against the GitHub REST API
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	cache      *ResponseCache
}

// NewClient creates a new GitHub client with the given configuration
func NewClient(config ClientConfig) *Client {
	if config.APIURL == "" {
		config.APIURL = DefaultAPIURL
	}
	config.APIURL = strings.TrimRight(config.APIURL, "/")
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}

	client := &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}

	if config.CacheDir != "" {
		client.cache = NewResponseCache(config.CacheDir)
	}

	return client
}

// releaseResponse is the subset of the "get latest release" payload we use
type releaseResponse struct {
	TagName     string         `json:"tag_name"`
	PublishedAt *time.Time     `json:"published_at"`
	HTMLURL     string         `json:"html_url"`
	Body        string         `json:"body"`
	Assets      []domain.Asset `json:"assets"`
}

// repoResponse is the subset of the "get repository" payload we use
type repoResponse struct {
	Description     string    `json:"description"`
	StargazersCount int       `json:"stargazers_count"`
	Homepage        string    `json:"homepage"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// FetchLatestRelease retrieves the latest published release of owner/repo and
// normalizes its tag. Failures are logged and reported as unavailable.
func (c *Client) FetchLatestRelease(ctx context.Context, owner, repo string) domain.Lookup[domain.ReleaseInfo] {
	var payload releaseResponse
	if err := c.getJSON(ctx, c.repoPath(owner, repo)+"/releases/latest", &payload); err != nil {
		log.Warn().Err(err).Str("owner", owner).Str("repo", repo).Msg("Failed to fetch release")
		return domain.Unavailable[domain.ReleaseInfo](err)
	}

	normalized := version.Normalize(payload.TagName)

	info := domain.ReleaseInfo{
		Tag:        payload.TagName,
		Version:    normalized.Version,
		Confidence: string(normalized.Confidence),
		Changelog:  payload.HTMLURL,
		Body:       payload.Body,
		Assets:     payload.Assets,
	}
	if payload.PublishedAt != nil {
		info.PublishedAt = *payload.PublishedAt
	}

	return domain.Found(info)
}

// FetchRepoInfo retrieves repository metadata used as fallback values.
// Failures are logged and reported as unavailable.
func (c *Client) FetchRepoInfo(ctx context.Context, owner, repo string) domain.Lookup[domain.RepoInfo] {
	var payload repoResponse
	if err := c.getJSON(ctx, c.repoPath(owner, repo), &payload); err != nil {
		log.Warn().Err(err).Str("owner", owner).Str("repo", repo).Msg("Failed to fetch repo info")
		return domain.Unavailable[domain.RepoInfo](err)
	}

	return domain.Found(domain.RepoInfo{
		Description: payload.Description,
		Stars:       payload.StargazersCount,
		Homepage:    payload.Homepage,
		CreatedAt:   payload.CreatedAt,
		UpdatedAt:   payload.UpdatedAt,
	})
}

// repoPath builds the API path for a repository
func (c *Client) repoPath(owner, repo string) string {
	return fmt.Sprintf("%s/repos/%s/%s", c.config.APIURL, url.PathEscape(owner), url.PathEscape(repo))
}

// getJSON performs a GET against the API and decodes the body into out.
// With a cache configured, the stored ETag is sent and a 304 is served locally.
func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("User-Agent", UserAgent)
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}

	var cached *CachedResponse
	if c.cache != nil {
		if entry, ok := c.cache.Get(endpoint); ok {
			cached = entry
			req.Header.Set("If-None-Match", entry.ETag)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.NewAppErrorWithCause(domain.ErrUpstreamUnavailable, "request failed", err, map[string]any{"url": endpoint})
	}
	defer resp.Body.Close()

	logRateLimit(resp, endpoint)

	var body []byte
	switch {
	case resp.StatusCode == http.StatusNotModified && cached != nil:
		log.Debug().Str("url", endpoint).Msg("Served from conditional-request cache")
		body = cached.Body
	case resp.StatusCode == http.StatusOK:
		body, err = io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}
		if c.cache != nil {
			if etag := resp.Header.Get("ETag"); etag != "" {
				if err := c.cache.Set(endpoint, etag, body); err != nil {
					log.Debug().Err(err).Str("url", endpoint).Msg("Failed to store cached response")
				}
			}
		}
	default:
		return statusError(resp, endpoint)
	}

	if err := json.Unmarshal(body, out); err != nil {
		// Drop the entry so the next run fetches a fresh body instead of
		// revalidating one that can never decode
		if c.cache != nil {
			c.cache.Invalidate(endpoint)
		}
		return domain.NewAppErrorWithCause(domain.ErrInvalidInput, "failed to parse response", err, map[string]any{"url": endpoint})
	}

	return nil
}

// statusError maps a non-success response to a domain error
func statusError(resp *http.Response, endpoint string) error {
	details := map[string]any{"url": endpoint, "status": resp.StatusCode}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.NewAppError(domain.ErrNotFound, "resource not found", details)
	case (resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests) &&
		resp.Header.Get("X-RateLimit-Remaining") == "0":
		details["reset"] = resp.Header.Get("X-RateLimit-Reset")
		return domain.NewAppError(domain.ErrRateLimited, "API rate limit exceeded", details)
	default:
		return domain.NewAppError(domain.ErrUpstreamUnavailable, fmt.Sprintf("unexpected HTTP %d", resp.StatusCode), details)
	}
}

// logRateLimit records the remaining request budget reported by the API
func logRateLimit(resp *http.Response, endpoint string) {
	remaining := resp.Header.Get("X-RateLimit-Remaining")
	if remaining == "" {
		return
	}
	log.Debug().
		Str("url", endpoint).
		Str("remaining", remaining).
		Str("limit", resp.Header.Get("X-RateLimit-Limit")).
		Msg("GitHub rate limit")
}
