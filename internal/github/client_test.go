package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/csp2hub/plugin-repository/internal/domain"
	"github.com/csp2hub/plugin-repository/internal/version"
)

const releaseJSON = `{
  "tag_name": "v2.3.1",
  "published_at": "2024-05-01T10:00:00Z",
  "html_url": "https://github.com/alice/cs2-admin/releases/tag/v2.3.1",
  "body": "Fixes",
  "assets": [
    {"name": "cs2-admin-src.tar.gz", "browser_download_url": "https://example.com/src.tar.gz", "size": 10},
    {"name": "cs2-admin.zip", "browser_download_url": "https://example.com/cs2-admin.zip", "size": 2048}
  ]
}`

const repoJSON = `{
  "description": "Admin commands",
  "stargazers_count": 42,
  "homepage": null,
  "created_at": "2023-01-02T03:04:05Z",
  "updated_at": "2024-06-01T00:00:00Z"
}`

func newTestClient(t *testing.T, handler http.HandlerFunc, cacheDir string) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(ClientConfig{
		APIURL:   server.URL,
		Token:    "test-token",
		Timeout:  5 * time.Second,
		CacheDir: cacheDir,
	})
}

func TestNewClient(t *testing.T) {
	t.Run("with empty config uses defaults", func(t *testing.T) {
		client := NewClient(ClientConfig{})

		if client.config.APIURL != DefaultAPIURL {
			t.Errorf("expected default APIURL, got %s", client.config.APIURL)
		}
		if client.config.Timeout != DefaultTimeout {
			t.Errorf("expected default Timeout, got %v", client.config.Timeout)
		}
		if client.cache != nil {
			t.Error("expected no cache without a cache dir")
		}
	})

	t.Run("trims trailing slash", func(t *testing.T) {
		client := NewClient(ClientConfig{APIURL: "https://ghe.example.com/api/v3/"})
		if client.config.APIURL != "https://ghe.example.com/api/v3" {
			t.Errorf("unexpected APIURL %s", client.config.APIURL)
		}
	})
}

func TestFetchLatestRelease(t *testing.T) {
	t.Run("successful fetch", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/repos/alice/cs2-admin/releases/latest" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
				t.Errorf("expected bearer token, got %q", got)
			}
			if got := r.Header.Get("User-Agent"); got != UserAgent {
				t.Errorf("expected user agent %q, got %q", UserAgent, got)
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(releaseJSON))
		}, "")

		lookup := client.FetchLatestRelease(context.Background(), "alice", "cs2-admin")
		release, ok := lookup.Get()
		if !ok {
			t.Fatalf("expected release, got %v", lookup.Reason)
		}

		if release.Tag != "v2.3.1" {
			t.Errorf("expected tag v2.3.1, got %s", release.Tag)
		}
		if release.Version != "2.3.1" {
			t.Errorf("expected version 2.3.1, got %s", release.Version)
		}
		if release.Confidence != string(version.Exact) {
			t.Errorf("expected exact confidence, got %s", release.Confidence)
		}
		if !release.PublishedAt.Equal(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)) {
			t.Errorf("unexpected published time %v", release.PublishedAt)
		}
		if len(release.Assets) != 2 {
			t.Fatalf("expected 2 assets, got %d", len(release.Assets))
		}

		asset, found := release.FindAsset(".zip")
		if !found || asset.Size != 2048 {
			t.Errorf("expected zip asset with size 2048, got %+v", asset)
		}
	})

	t.Run("build tag is normalized", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"tag_name":"build-42","assets":[]}`))
		}, "")

		release, ok := client.FetchLatestRelease(context.Background(), "o", "r").Get()
		if !ok {
			t.Fatal("expected release")
		}
		if release.Version != "0.0.42" {
			t.Errorf("expected 0.0.42, got %s", release.Version)
		}
		if !release.PublishedAt.IsZero() {
			t.Error("expected zero published time when absent")
		}
	})

	t.Run("no releases", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}, "")

		lookup := client.FetchLatestRelease(context.Background(), "o", "r")
		if lookup.Available {
			t.Fatal("expected unavailable release")
		}
		if !domain.IsNotFound(lookup.Reason) {
			t.Errorf("expected not found reason, got %v", lookup.Reason)
		}
	})

	t.Run("rate limited", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.Header().Set("X-RateLimit-Reset", "1700000000")
			w.WriteHeader(http.StatusForbidden)
		}, "")

		lookup := client.FetchLatestRelease(context.Background(), "o", "r")
		if lookup.Available {
			t.Fatal("expected unavailable release")
		}
		if !domain.IsRateLimited(lookup.Reason) {
			t.Errorf("expected rate limited reason, got %v", lookup.Reason)
		}
	})

	t.Run("forbidden without exhausted budget", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-RateLimit-Remaining", "12")
			w.WriteHeader(http.StatusForbidden)
		}, "")

		lookup := client.FetchLatestRelease(context.Background(), "o", "r")
		if domain.IsRateLimited(lookup.Reason) {
			t.Error("did not expect rate limited reason")
		}
		if !domain.HasCode(lookup.Reason, domain.ErrUpstreamUnavailable) {
			t.Errorf("expected upstream unavailable, got %v", lookup.Reason)
		}
	})

	t.Run("invalid JSON response", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("invalid json"))
		}, "")

		if client.FetchLatestRelease(context.Background(), "o", "r").Available {
			t.Fatal("expected unavailable release for invalid JSON")
		}
	})

	t.Run("unreachable server", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		server.Close()

		client := NewClient(ClientConfig{APIURL: server.URL, Timeout: time.Second})
		lookup := client.FetchLatestRelease(context.Background(), "o", "r")
		if lookup.Available {
			t.Fatal("expected unavailable release")
		}
		if !domain.HasCode(lookup.Reason, domain.ErrUpstreamUnavailable) {
			t.Errorf("expected upstream unavailable, got %v", lookup.Reason)
		}
	})
}

func TestFetchRepoInfo(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/alice/cs2-admin" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(repoJSON))
	}, "")

	info, ok := client.FetchRepoInfo(context.Background(), "alice", "cs2-admin").Get()
	if !ok {
		t.Fatal("expected repo info")
	}

	if info.Description != "Admin commands" {
		t.Errorf("unexpected description %q", info.Description)
	}
	if info.Stars != 42 {
		t.Errorf("expected 42 stars, got %d", info.Stars)
	}
	if info.Homepage != "" {
		t.Errorf("expected empty homepage for null, got %q", info.Homepage)
	}
	if info.CreatedAt.Year() != 2023 {
		t.Errorf("unexpected created time %v", info.CreatedAt)
	}
}

func TestConditionalRequests(t *testing.T) {
	var requests, notModified atomic.Int32

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.Header.Get("If-None-Match") == `"abc"` {
			notModified.Add(1)
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"abc"`)
		w.Write([]byte(repoJSON))
	}, t.TempDir())

	for i := 0; i < 2; i++ {
		info, ok := client.FetchRepoInfo(context.Background(), "alice", "cs2-admin").Get()
		if !ok {
			t.Fatalf("request %d: expected repo info", i)
		}
		if info.Stars != 42 {
			t.Errorf("request %d: expected 42 stars, got %d", i, info.Stars)
		}
	}

	if requests.Load() != 2 {
		t.Errorf("expected 2 requests, got %d", requests.Load())
	}
	if notModified.Load() != 1 {
		t.Errorf("expected second request to be conditional, got %d", notModified.Load())
	}
}

func TestUndecodableCachedBodyIsInvalidated(t *testing.T) {
	var conditional atomic.Int32

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-None-Match") != "" {
			conditional.Add(1)
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"fresh"`)
		w.Write([]byte(repoJSON))
	}, t.TempDir())

	endpoint := client.repoPath("alice", "cs2-admin")
	// Valid JSON that cannot decode into the repository payload
	if err := client.cache.Set(endpoint, `"stale"`, []byte(`[1,2,3]`)); err != nil {
		t.Fatalf("failed to seed cache: %v", err)
	}

	if _, ok := client.FetchRepoInfo(context.Background(), "alice", "cs2-admin").Get(); ok {
		t.Fatal("expected the undecodable cached body to be reported as unavailable")
	}
	if _, ok := client.cache.Get(endpoint); ok {
		t.Fatal("expected the cache entry to be dropped")
	}

	info, ok := client.FetchRepoInfo(context.Background(), "alice", "cs2-admin").Get()
	if !ok {
		t.Fatal("expected an unconditional refetch to succeed")
	}
	if info.Stars != 42 {
		t.Errorf("expected 42 stars, got %d", info.Stars)
	}
	if conditional.Load() != 1 {
		t.Errorf("expected only the first request to be conditional, got %d", conditional.Load())
	}
}
