// Package storage holds the persisted catalog in memory for the HTTP server.
package storage

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/csp2hub/plugin-repository/internal/domain"
	"github.com/csp2hub/plugin-repository/internal/manifest"
)

// StaleFactor is how many update intervals may pass before the catalog is
// reported as degraded
const StaleFactor = 2

// PluginFilter narrows a plugin listing. Zero values match everything.
type PluginFilter struct {
	Category string
	Featured *bool
	// Query is matched case-insensitively against id, name, descriptions and tags
	Query string
}

// Store implements domain.CatalogRepository over a manifest file on disk
type Store struct {
	mu        sync.RWMutex
	path      string
	catalog   *domain.Manifest
	byID      map[string]int
	loadedAt  time.Time
	loadCount int
	lastErr   error
	now       func() time.Time
}

// NewStore creates a Store for the manifest at path. Call Load before use.
func NewStore(path string) *Store {
	return &Store{
		path: path,
		byID: make(map[string]int),
		now:  time.Now,
	}
}

// Path returns the manifest location
func (s *Store) Path() string {
	return s.path
}

// Load reads the manifest from disk. On failure the previously loaded
// catalog, if any, keeps being served.
func (s *Store) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m, err := manifest.Read(s.path)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.lastErr = err
		log.Error().Err(err).Str("path", s.path).Msg("Failed to load catalog")
		return err
	}

	byID := make(map[string]int, len(m.Plugins))
	for i, p := range m.Plugins {
		if _, dup := byID[p.ID]; dup {
			log.Warn().Str("plugin", p.ID).Msg("Duplicate plugin id in catalog, keeping first")
			continue
		}
		byID[p.ID] = i
	}

	s.catalog = m
	s.byID = byID
	s.loadedAt = s.now()
	s.loadCount++
	s.lastErr = nil

	log.Info().
		Str("path", s.path).
		Int("plugins", len(m.Plugins)).
		Str("last_updated", m.LastUpdated).
		Msg("Catalog loaded")

	return nil
}

// Reload re-reads the manifest from disk
func (s *Store) Reload(ctx context.Context) error {
	return s.Load(ctx)
}

// Manifest returns the loaded catalog
func (s *Store) Manifest(ctx context.Context) (*domain.Manifest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.catalog == nil {
		return nil, domain.NewAppError(domain.ErrResourceMissing, "catalog not loaded", map[string]any{"path": s.path})
	}
	return s.catalog, nil
}

// Plugins returns the entries matching filter in catalog order
func (s *Store) Plugins(ctx context.Context, filter PluginFilter) ([]domain.PluginEntry, error) {
	m, err := s.Manifest(ctx)
	if err != nil {
		return nil, err
	}

	query := strings.ToLower(strings.TrimSpace(filter.Query))
	result := make([]domain.PluginEntry, 0, len(m.Plugins))
	for _, p := range m.Plugins {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.Featured != nil && p.Featured != *filter.Featured {
			continue
		}
		if query != "" && !matchesQuery(p, query) {
			continue
		}
		result = append(result, p)
	}

	return result, nil
}

// Plugin returns the entry with the given id
func (s *Store) Plugin(ctx context.Context, id string) (*domain.PluginEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.catalog == nil {
		return nil, domain.NewAppError(domain.ErrResourceMissing, "catalog not loaded", map[string]any{"path": s.path})
	}

	i, ok := s.byID[id]
	if !ok {
		return nil, domain.NewAppError(domain.ErrNotFound, "plugin not found", map[string]any{"id": id})
	}

	entry := s.catalog.Plugins[i]
	return &entry, nil
}

func matchesQuery(p domain.PluginEntry, query string) bool {
	fields := []string{p.ID, p.Name, p.Description, p.DescriptionZh}
	fields = append(fields, p.Tags...)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), query) {
			return true
		}
	}
	return false
}

// HealthCheck reports unhealthy without a catalog and degraded when the
// catalog is stale or the last reload failed
func (s *Store) HealthCheck(ctx context.Context) domain.HealthStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	details := map[string]any{
		"path":       s.path,
		"load_count": s.loadCount,
	}

	if s.catalog == nil {
		msg := "Catalog has not been loaded"
		if s.lastErr != nil {
			details["error"] = s.lastErr.Error()
		}
		return domain.HealthStatus{
			Status:    domain.HealthStatusUnhealthy,
			Message:   msg,
			Details:   details,
			Timestamp: now,
		}
	}

	details["plugin_count"] = len(s.catalog.Plugins)
	details["last_updated"] = s.catalog.LastUpdated
	details["loaded_at"] = s.loadedAt

	status := domain.HealthStatusHealthy
	message := "Catalog is being served"

	if s.lastErr != nil {
		status = domain.HealthStatusDegraded
		message = "Last reload failed, serving previous catalog"
		details["error"] = s.lastErr.Error()
	}

	age, err := catalogAge(s.catalog, now)
	switch {
	case err != nil:
		status = domain.HealthStatusDegraded
		message = "Catalog timestamp is not parseable"
		details["error"] = err.Error()
	case age > staleAfter(s.catalog):
		status = domain.HealthStatusDegraded
		message = "Catalog is stale"
		details["age_seconds"] = int(age.Seconds())
	default:
		details["age_seconds"] = int(age.Seconds())
	}

	return domain.HealthStatus{
		Status:    status,
		Message:   message,
		Details:   details,
		Timestamp: now,
	}
}

func catalogAge(m *domain.Manifest, now time.Time) (time.Duration, error) {
	updated, err := time.Parse(time.RFC3339, m.LastUpdated)
	if err != nil {
		return 0, err
	}
	return now.Sub(updated), nil
}

func staleAfter(m *domain.Manifest) time.Duration {
	interval := m.UpdateInterval
	if interval <= 0 {
		interval = domain.DefaultUpdateInterval
	}
	return time.Duration(StaleFactor*interval) * time.Second
}
