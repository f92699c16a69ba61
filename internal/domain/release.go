package domain

import (
	"strings"
	"time"
)

// Asset is a downloadable file attached to a hosting-platform release
type Asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
	Size               int64  `json:"size"`
}

// ReleaseInfo is the latest release of a plugin repository, fetched per run
type ReleaseInfo struct {
	Tag         string    `json:"tag"`
	Version     string    `json:"version"`     // Normalized X.Y.Z
	Confidence  string    `json:"confidence"`  // How the version was derived from the tag
	PublishedAt time.Time `json:"publishedAt"` // Zero when the API omits it
	Changelog   string    `json:"changelog"`
	Body        string    `json:"body"`
	Assets      []Asset   `json:"assets"`
}

// FindAsset returns the first asset whose name contains pattern
func (r *ReleaseInfo) FindAsset(pattern string) (Asset, bool) {
	for _, a := range r.Assets {
		if strings.Contains(a.Name, pattern) {
			return a, true
		}
	}
	return Asset{}, false
}

// RepoInfo carries repository statistics used only as fallback values
type RepoInfo struct {
	Description string    `json:"description"`
	Stars       int       `json:"stars"`
	Homepage    string    `json:"homepage"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Lookup is the outcome of a best-effort upstream call. Callers must check
// Available before reading Value; an unavailable lookup means "skip for this run".
type Lookup[T any] struct {
	Value     T
	Available bool
	Reason    error
}

// Found wraps a successfully fetched value
func Found[T any](v T) Lookup[T] {
	return Lookup[T]{Value: v, Available: true}
}

// Unavailable records why an upstream value could not be fetched
func Unavailable[T any](reason error) Lookup[T] {
	return Lookup[T]{Reason: reason}
}

// Get returns the value and whether it is available
func (l Lookup[T]) Get() (T, bool) {
	return l.Value, l.Available
}
