package github

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// cacheFileSuffix is appended to the hashed URL to form a cache file name
const cacheFileSuffix = ".etag.json"

// ResponseCache stores API response bodies keyed by URL together with their
// ETag so repeated runs can issue conditional requests. A 304 reply does not
// count against the GitHub rate limit.
type ResponseCache struct {
	cacheDir string
	mu       sync.RWMutex
}

// CachedResponse is a single stored API response
type CachedResponse struct {
	URL      string          `json:"url"`
	ETag     string          `json:"etag"`
	Body     json.RawMessage `json:"body"`
	CachedAt time.Time       `json:"cached_at"`
}

// NewResponseCache creates a ResponseCache rooted at cacheDir
func NewResponseCache(cacheDir string) *ResponseCache {
	return &ResponseCache{cacheDir: cacheDir}
}

// Get returns the stored response for url, if any
func (c *ResponseCache) Get(url string) (*CachedResponse, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.pathFor(url))
	if err != nil {
		return nil, false
	}

	var entry CachedResponse
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}

	// A hash collision or a stale layout is treated as a miss
	if entry.URL != url || entry.ETag == "" {
		return nil, false
	}

	return &entry, true
}

// Set stores body and its ETag for url
func (c *ResponseCache) Set(url, etag string, body []byte) error {
	if !json.Valid(body) {
		return fmt.Errorf("refusing to cache non-JSON body for %s", url)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(c.cacheDir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	entry := CachedResponse{
		URL:      url,
		ETag:     etag,
		Body:     json.RawMessage(body),
		CachedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	path := c.pathFor(url)

	// Write atomically using temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename cache file: %w", err)
	}

	return nil
}

// Invalidate removes the stored response for url
func (c *ResponseCache) Invalidate(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_ = os.Remove(c.pathFor(url))
}

func (c *ResponseCache) pathFor(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(c.cacheDir, hex.EncodeToString(sum[:])+cacheFileSuffix)
}
