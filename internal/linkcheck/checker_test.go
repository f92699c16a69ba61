package linkcheck

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csp2hub/plugin-repository/internal/domain"
	"github.com/csp2hub/plugin-repository/internal/manifest"
)

func newProbeServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("expected HEAD, got %s", r.Method)
		}
		if got := r.Header.Get("User-Agent"); got != UserAgent {
			t.Errorf("expected user agent %q, got %q", UserAgent, got)
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/moved", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ok", http.StatusFound)
	})
	mux.HandleFunc("/unchanged", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotModified)
	})
	mux.HandleFunc("/choices", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMultipleChoices)
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		w.WriteHeader(http.StatusOK)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestProbesFor(t *testing.T) {
	entry := domain.PluginEntry{
		Download:   domain.Download{URL: "https://dl/p.zip"},
		Repository: domain.Repository{Owner: "o", Repo: "r"},
		Links:      domain.Links{Homepage: "https://plugin.example.com"},
		Media:      domain.Media{Icon: "https://img/icon.png"},
	}

	probes := ProbesFor(entry)

	assert.Equal(t, []Probe{
		{Kind: KindDownload, URL: "https://dl/p.zip"},
		{Kind: KindRepository, URL: "https://github.com/o/r"},
		{Kind: KindHomepage, URL: "https://plugin.example.com"},
		{Kind: KindIcon, URL: "https://img/icon.png"},
	}, probes)
}

func TestProbesFor_SkipsGitHubHomepageAndMissingFields(t *testing.T) {
	entry := domain.PluginEntry{
		Repository: domain.Repository{Owner: "o", Repo: "r"},
		Links:      domain.Links{Homepage: "https://github.com/o/r"},
	}

	probes := ProbesFor(entry)

	require.Len(t, probes, 1)
	assert.Equal(t, KindRepository, probes[0].Kind)
}

func TestCheckURL(t *testing.T) {
	server := newProbeServer(t)
	checker := NewChecker(Options{Timeout: 200 * time.Millisecond})

	tests := []struct {
		name   string
		path   string
		ok     bool
		status int
	}{
		{"success", "/ok", true, http.StatusOK},
		{"redirect followed", "/moved", true, http.StatusOK},
		{"not modified", "/unchanged", true, http.StatusNotModified},
		{"unfollowable 3xx", "/choices", true, http.StatusMultipleChoices},
		{"server error", "/broken", false, http.StatusInternalServerError},
		{"not found", "/gone", false, http.StatusNotFound},
		{"timeout", "/slow", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := checker.CheckURL(context.Background(), Probe{Kind: KindDownload, URL: server.URL + tt.path})
			assert.Equal(t, tt.ok, result.OK)
			assert.Equal(t, tt.status, result.Status)
		})
	}

	t.Run("timeout message", func(t *testing.T) {
		result := checker.CheckURL(context.Background(), Probe{URL: server.URL + "/slow"})
		assert.Contains(t, result.Describe(), "timed out")
	})

	t.Run("network error", func(t *testing.T) {
		closed := httptest.NewServer(http.NotFoundHandler())
		closed.Close()

		result := checker.CheckURL(context.Background(), Probe{URL: closed.URL})
		assert.False(t, result.OK)
		assert.NotEmpty(t, result.Err)
	})

	t.Run("invalid URL", func(t *testing.T) {
		result := checker.CheckURL(context.Background(), Probe{URL: "://bad"})
		assert.False(t, result.OK)
		assert.Contains(t, result.Err, "invalid URL")
	})
}

func TestCheckPlugin_RunsProbesConcurrently(t *testing.T) {
	var inFlight, peak atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(100 * time.Millisecond)
		inFlight.Add(-1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	entry := domain.PluginEntry{
		ID:       "p",
		Download: domain.Download{URL: server.URL + "/download"},
		Links:    domain.Links{Homepage: server.URL + "/home"},
		Media:    domain.Media{Icon: server.URL + "/icon"},
	}

	results, err := NewChecker(Options{}).CheckPlugin(context.Background(), entry)
	require.NoError(t, err)

	require.Len(t, results, 3)
	for _, r := range results {
		assert.True(t, r.OK)
		assert.Equal(t, "p", r.PluginID)
	}
	assert.Equal(t, KindDownload, results[0].Kind)
	assert.Equal(t, KindIcon, results[2].Kind)
	assert.Greater(t, peak.Load(), int32(1))
}

func TestCheckManifest(t *testing.T) {
	server := newProbeServer(t)

	m := &domain.Manifest{Plugins: []domain.PluginEntry{
		{
			ID:       "good",
			Download: domain.Download{URL: server.URL + "/ok"},
			Links:    domain.Links{Homepage: server.URL + "/ok"},
		},
		{
			ID:       "bad",
			Download: domain.Download{URL: server.URL + "/gone"},
			Media:    domain.Media{Icon: server.URL + "/ok"},
		},
	}}

	var visited []string
	checker := NewChecker(Options{
		Timeout: time.Second,
		Delay:   10 * time.Millisecond,
		OnPlugin: func(entry domain.PluginEntry, results []Result) {
			visited = append(visited, entry.ID)
		},
	})

	summary, err := checker.CheckManifest(context.Background(), m)
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 3, summary.Passed())
	assert.False(t, summary.OK())
	assert.Equal(t, []string{"good", "bad"}, visited)
}

func TestCheckManifest_Cancelled(t *testing.T) {
	server := newProbeServer(t)
	m := &domain.Manifest{Plugins: []domain.PluginEntry{
		{ID: "a", Download: domain.Download{URL: server.URL + "/ok"}},
		{ID: "b", Download: domain.Download{URL: server.URL + "/ok"}},
	}}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := NewChecker(Options{Delay: time.Hour}).CheckManifest(ctx, m)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCheckFile(t *testing.T) {
	dir := t.TempDir()

	_, err := NewChecker(Options{}).CheckFile(context.Background(), filepath.Join(dir, "manifest.json"))
	require.Error(t, err)
	assert.True(t, domain.IsResourceMissing(err))

	server := newProbeServer(t)
	path := filepath.Join(dir, "manifest.json")
	require.NoError(t, manifest.Write(path, &domain.Manifest{
		Version: domain.ManifestVersion,
		Plugins: []domain.PluginEntry{{ID: "a", Download: domain.Download{URL: server.URL + "/ok"}}},
	}))

	summary, err := NewChecker(Options{}).CheckFile(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, summary.OK())
	assert.Equal(t, 1, summary.Total)
}

func TestCheckManifest_Empty(t *testing.T) {
	summary, err := NewChecker(Options{}).CheckManifest(context.Background(), &domain.Manifest{})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Total)
	assert.True(t, summary.OK())
}
