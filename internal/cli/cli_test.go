package cli

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csp2hub/plugin-repository/internal/domain"
	"github.com/csp2hub/plugin-repository/internal/manifest"
)

const validPlugin = `{
  "id": "admin-tools",
  "repository": {"owner": "alice", "repo": "cs2-admin"},
  "metadata": {"name": "Admin Tools", "descriptionZh": "管理工具", "category": "admin"}
}`

type workspace struct {
	pluginsDir   string
	manifestPath string
}

func newWorkspace(t *testing.T) workspace {
	t.Helper()
	root := t.TempDir()
	ws := workspace{
		pluginsDir:   filepath.Join(root, "plugins"),
		manifestPath: filepath.Join(root, "out", "manifest.json"),
	}
	require.NoError(t, os.MkdirAll(ws.pluginsDir, 0755))

	t.Setenv("PLUGINS_DIR", ws.pluginsDir)
	t.Setenv("MANIFEST_PATH", ws.manifestPath)
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("GITHUB_CACHE_DIR", "")
	t.Setenv("GENERATE_REQUEST_DELAY", "0s")
	t.Setenv("LINKCHECK_DELAY", "0s")
	return ws
}

func (ws workspace) addPlugin(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(ws.pluginsDir, name), []byte(content), 0644))
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func fakeGitHub(t *testing.T, downloadURL string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/alice/cs2-admin/releases/latest", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{
  "tag_name": "v1.4.0",
  "published_at": "2025-03-01T10:00:00Z",
  "html_url": "https://github.com/alice/cs2-admin/releases/tag/v1.4.0",
  "assets": [{"name": "admin-tools.zip", "browser_download_url": %q, "size": 2048}]
}`, downloadURL)
	})
	mux.HandleFunc("/repos/alice/cs2-admin", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"description": "Admin commands", "stargazers_count": 12, "homepage": ""}`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestRootCmd_RejectsPositionalArgs(t *testing.T) {
	newWorkspace(t)

	for _, sub := range []string{"generate", "validate", "check-links", "serve", "healthcheck"} {
		t.Run(sub, func(t *testing.T) {
			_, err := execute(t, sub, "extra")
			assert.Error(t, err)
		})
	}
}

func TestRootCmd_InvalidConfig(t *testing.T) {
	newWorkspace(t)
	t.Setenv("LOG_LEVEL", "loud")

	_, err := execute(t, "validate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration validation failed")
}

func TestValidateCmd_Passes(t *testing.T) {
	ws := newWorkspace(t)
	ws.addPlugin(t, "admin-tools.json", validPlugin)

	out, err := execute(t, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "admin-tools.json")
	assert.Contains(t, out, "Manifest not yet generated")
	assert.Contains(t, out, "All validations passed!")
}

func TestValidateCmd_MissingDescriptionZhOnlyWarns(t *testing.T) {
	ws := newWorkspace(t)
	ws.addPlugin(t, "p.json", `{"id": "p", "repository": {"owner": "o", "repo": "r"}, "metadata": {"name": "P"}}`)

	out, err := execute(t, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "1 warning(s) found")
}

func TestValidateCmd_MissingOwnerFails(t *testing.T) {
	ws := newWorkspace(t)
	ws.addPlugin(t, "p.json", `{"id": "p", "repository": {"repo": "r"}, "metadata": {"descriptionZh": "中文"}}`)

	out, err := execute(t, "validate")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrChecksFailed))
	assert.True(t, domain.IsValidationError(err))
	assert.Contains(t, out, "repository.owner is required")
	assert.Contains(t, out, "Validation failed!")
}

func TestValidateCmd_FlagOverridesEnvironment(t *testing.T) {
	newWorkspace(t)
	other := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(other, "admin-tools.json"), []byte(validPlugin), 0644))

	out, err := execute(t, "validate", "--plugins-dir", other)
	require.NoError(t, err)
	assert.Contains(t, out, "admin-tools.json")
}

func TestValidateCmd_MissingSchemaOverride(t *testing.T) {
	ws := newWorkspace(t)
	ws.addPlugin(t, "admin-tools.json", validPlugin)

	_, err := execute(t, "validate", "--plugin-schema", filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrChecksFailed))
}

func TestGenerateThenValidateAndCheckLinks(t *testing.T) {
	ws := newWorkspace(t)
	ws.addPlugin(t, "admin-tools.json", validPlugin)
	ws.addPlugin(t, "disabled.json", `{"id": "disabled", "enabled": false, "repository": {"owner": "x", "repo": "y"}}`)

	links := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(links.Close)

	gh := fakeGitHub(t, links.URL+"/admin-tools.zip")
	t.Setenv("GITHUB_API_URL", gh.URL)

	out, err := execute(t, "generate")
	require.NoError(t, err)
	assert.Contains(t, out, "Manifest generated successfully")
	assert.Contains(t, out, "Total plugins: 1")

	m, err := manifest.Read(ws.manifestPath)
	require.NoError(t, err)
	require.Len(t, m.Plugins, 1)
	assert.Equal(t, "1.4.0", m.Plugins[0].Version)
	assert.Equal(t, links.URL+"/admin-tools.zip", m.Plugins[0].Download.URL)

	out, err = execute(t, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Manifest is valid")
	assert.Contains(t, out, "Plugins: 1")

	// The repository probe would reach github.com, so drop the coordinates
	// and keep every probe on the local server.
	m.Plugins[0].Repository.Owner = ""
	m.Plugins[0].Media.Icon = links.URL + "/icon.png"
	require.NoError(t, manifest.Write(ws.manifestPath, m))

	out, err = execute(t, "check-links")
	require.NoError(t, err)
	assert.Contains(t, out, "Download: "+links.URL+"/admin-tools.zip")
	assert.Contains(t, out, "Total checks: 2")
	assert.Contains(t, out, "All links are accessible!")
}

func TestCheckLinksCmd_FailingLink(t *testing.T) {
	ws := newWorkspace(t)

	links := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/gone.png" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(links.Close)

	m := &domain.Manifest{
		Version:        domain.ManifestVersion,
		UpdateInterval: domain.DefaultUpdateInterval,
		Plugins: []domain.PluginEntry{{
			ID:       "p",
			Name:     "P",
			Download: domain.Download{URL: links.URL + "/p.zip"},
			Media:    domain.Media{Icon: links.URL + "/gone.png"},
		}},
	}
	require.NoError(t, manifest.Write(ws.manifestPath, m))

	out, err := execute(t, "check-links")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrChecksFailed))
	assert.Contains(t, out, "Icon: "+links.URL+"/gone.png - Status: 404")
	assert.Contains(t, out, "Failed: 1")
}

func TestCheckLinksCmd_MissingManifest(t *testing.T) {
	newWorkspace(t)

	out, err := execute(t, "check-links")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrChecksFailed))
	assert.Contains(t, out, "Manifest not found")
}

func TestCheckLinksCmd_UnparseableManifest(t *testing.T) {
	ws := newWorkspace(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(ws.manifestPath), 0755))
	require.NoError(t, os.WriteFile(ws.manifestPath, []byte("{oops"), 0644))

	_, err := execute(t, "check-links")
	require.Error(t, err)
}

func TestHealthCheckCmd(t *testing.T) {
	newWorkspace(t)

	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(healthy.Close)

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	require.NoError(t, performHealthCheck(healthy.URL+"/health", cmd))
	assert.Contains(t, out.String(), "Health check passed")

	unhealthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(unhealthy.Close)

	err := performHealthCheck(unhealthy.URL+"/health", cmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 503")
}
