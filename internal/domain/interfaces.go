package domain

import "context"

// ReleaseSource resolves live release and repository data from the hosting API.
// Both calls fail soft: an unavailable lookup means the plugin is skipped this run.
type ReleaseSource interface {
	FetchLatestRelease(ctx context.Context, owner, repo string) Lookup[ReleaseInfo]
	FetchRepoInfo(ctx context.Context, owner, repo string) Lookup[RepoInfo]
}

// ConfigLoader reads plugin configs from their backing store
type ConfigLoader interface {
	LoadEnabled(ctx context.Context) ([]PluginConfig, []LoadError, error)
}

// HealthReporter is a component that can describe its own health
type HealthReporter interface {
	HealthCheck(ctx context.Context) HealthStatus
}

// CatalogRepository serves a persisted manifest to readers
type CatalogRepository interface {
	HealthReporter
	Manifest(ctx context.Context) (*Manifest, error)
	Reload(ctx context.Context) error
}

// HealthChecker defines the interface for system health monitoring
type HealthChecker interface {
	CheckHealth(ctx context.Context) SystemHealth
}
