package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPluginConfig_IsEnabled(t *testing.T) {
	on, off := true, false

	assert.True(t, (&PluginConfig{}).IsEnabled())
	assert.True(t, (&PluginConfig{Enabled: &on}).IsEnabled())
	assert.False(t, (&PluginConfig{Enabled: &off}).IsEnabled())
}

func TestPluginConfig_IsVerified(t *testing.T) {
	assert.False(t, (&PluginConfig{}).IsVerified())
	assert.False(t, (&PluginConfig{Verification: &Verification{Method: "manual"}}).IsVerified())
	assert.True(t, (&PluginConfig{Verification: &Verification{Method: VerificationGitHub}}).IsVerified())
}

func TestPluginConfig_MetadataOrEmpty(t *testing.T) {
	assert.Equal(t, Metadata{}, (&PluginConfig{}).MetadataOrEmpty())

	cfg := &PluginConfig{Metadata: &Metadata{Name: "Admin"}}
	assert.Equal(t, "Admin", cfg.MetadataOrEmpty().Name)
}

func TestReleaseInfo_FindAsset(t *testing.T) {
	release := &ReleaseInfo{Assets: []Asset{
		{Name: "plugin-windows.tar.gz"},
		{Name: "plugin-linux.zip", BrowserDownloadURL: "https://example.com/linux.zip"},
		{Name: "plugin-windows.zip"},
	}}

	asset, ok := release.FindAsset(".zip")
	assert.True(t, ok)
	assert.Equal(t, "plugin-linux.zip", asset.Name)

	_, ok = release.FindAsset(".7z")
	assert.False(t, ok)
}

func TestLookup(t *testing.T) {
	found := Found(RepoInfo{Stars: 3})
	v, ok := found.Get()
	assert.True(t, ok)
	assert.Equal(t, 3, v.Stars)

	reason := errors.New("boom")
	missing := Unavailable[RepoInfo](reason)
	_, ok = missing.Get()
	assert.False(t, ok)
	assert.Equal(t, reason, missing.Reason)
}

func TestAppError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewAppErrorWithCause(ErrUpstreamUnavailable, "api unreachable", cause, nil)

	assert.Equal(t, "UPSTREAM_UNAVAILABLE: api unreachable (caused by: connection refused)", err.Error())
	assert.ErrorIs(t, err, cause)

	wrapped := fmt.Errorf("fetch release: %w", NewAppError(ErrRateLimited, "slow down", nil))
	assert.True(t, IsRateLimited(wrapped))
	assert.False(t, IsNotFound(wrapped))
	assert.False(t, HasCode(cause, ErrUpstreamUnavailable))

	assert.Equal(t, "list", NewAppError(ErrNotFound, "x", nil).WithOperation("list").Operation)
}

func TestRepoURL(t *testing.T) {
	assert.Equal(t, "https://github.com/alice/tools", RepoURL("alice", "tools"))
	assert.Equal(t, "https://github.com/alice/tools", Repository{Owner: "alice", Repo: "tools"}.URL())
}
