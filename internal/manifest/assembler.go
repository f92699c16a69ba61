// Package manifest assembles the published plugin catalog from plugin configs
// and live release data, and reads and writes the persisted document.
package manifest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/csp2hub/plugin-repository/internal/domain"
	"github.com/csp2hub/plugin-repository/internal/version"
)

// Options tunes an Assembler run
type Options struct {
	// DefaultPattern is used for configs without a downloadPattern
	DefaultPattern string
	// RequestDelay separates consecutive plugins to stay polite to the API
	RequestDelay time.Duration
	// Now returns the current time; defaults to time.Now
	Now func() time.Time
}

// SkippedPlugin records a config that produced no entry
type SkippedPlugin struct {
	ID     string
	Reason string
}

// Downgrade records an entry whose version went backwards since the previous run
type Downgrade struct {
	ID       string
	Previous string
	Current  string
}

// Result is the outcome of one assembly run
type Result struct {
	RunID      string
	Manifest   *domain.Manifest
	Skipped    []SkippedPlugin
	LoadErrors []domain.LoadError
	Downgrades []Downgrade
}

// Assembler builds a Manifest from enabled configs and a release source
type Assembler struct {
	loader domain.ConfigLoader
	source domain.ReleaseSource
	opts   Options
}

// NewAssembler creates an Assembler
func NewAssembler(loader domain.ConfigLoader, source domain.ReleaseSource, opts Options) *Assembler {
	if opts.DefaultPattern == "" {
		opts.DefaultPattern = DefaultDownloadPattern
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Assembler{
		loader: loader,
		source: source,
		opts:   opts,
	}
}

// Assemble loads every enabled config, resolves its latest release and
// returns the sorted catalog. Plugins without a release or matching asset are
// skipped. previous may be nil; when set it is used to flag version downgrades.
func (a *Assembler) Assemble(ctx context.Context, previous *domain.Manifest) (*Result, error) {
	result := &Result{RunID: uuid.NewString()}
	logger := log.With().Str("run_id", result.RunID).Logger()

	configs, loadErrors, err := a.loader.LoadEnabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load plugin configs: %w", err)
	}
	result.LoadErrors = loadErrors

	for _, le := range loadErrors {
		logger.Error().Str("file", le.FilePath).Int("line", le.Line).Msg(le.Error)
	}

	categories, err := DefaultCategories()
	if err != nil {
		return nil, err
	}

	plugins := make([]domain.PluginEntry, 0, len(configs))
	for i, cfg := range configs {
		if i > 0 {
			if err := sleep(ctx, a.opts.RequestDelay); err != nil {
				return nil, err
			}
		}

		entry, skip := a.buildOne(ctx, logger, cfg)
		if skip != nil {
			result.Skipped = append(result.Skipped, *skip)
			continue
		}

		if d, ok := checkDowngrade(previous, entry); ok {
			logger.Warn().
				Str("plugin", d.ID).
				Str("previous", d.Previous).
				Str("current", d.Current).
				Msg("Published version is older than the previous manifest")
			result.Downgrades = append(result.Downgrades, d)
		}

		plugins = append(plugins, entry)
	}

	SortPlugins(plugins)

	result.Manifest = &domain.Manifest{
		Version:        domain.ManifestVersion,
		LastUpdated:    FormatTimestamp(a.opts.Now()),
		UpdateInterval: domain.DefaultUpdateInterval,
		Categories:     categories,
		Plugins:        plugins,
		Statistics:     ComputeStatistics(plugins),
	}

	stats := result.Manifest.Statistics
	logger.Info().
		Int("total_plugins", stats.TotalPlugins).
		Int("verified_plugins", stats.VerifiedPlugins).
		Int("active_authors", stats.ActiveAuthors).
		Int("skipped", len(result.Skipped)).
		Int("load_errors", len(result.LoadErrors)).
		Msg("Manifest assembled")

	return result, nil
}

// buildOne resolves a single plugin. A non-nil SkippedPlugin means no entry.
func (a *Assembler) buildOne(ctx context.Context, logger zerolog.Logger, cfg domain.PluginConfig) (domain.PluginEntry, *SkippedPlugin) {
	owner, repo := cfg.Repository.Owner, cfg.Repository.Repo
	logger.Info().Str("plugin", cfg.ID).Str("owner", owner).Str("repo", repo).Msg("Processing plugin")

	releaseLookup := a.source.FetchLatestRelease(ctx, owner, repo)
	repoLookup := a.source.FetchRepoInfo(ctx, owner, repo)

	release, ok := releaseLookup.Get()
	if !ok {
		logger.Warn().Str("plugin", cfg.ID).Err(releaseLookup.Reason).Msg("Skipping plugin, no release found")
		return domain.PluginEntry{}, &SkippedPlugin{ID: cfg.ID, Reason: reasonText("no release found", releaseLookup.Reason)}
	}

	entry, err := BuildEntry(cfg, release, repoLookup, a.opts.DefaultPattern, a.opts.Now())
	if err != nil {
		logger.Warn().Str("plugin", cfg.ID).Err(err).Msg("Skipping plugin, no matching asset found")
		return domain.PluginEntry{}, &SkippedPlugin{ID: cfg.ID, Reason: reasonText("no matching asset found", err)}
	}

	logger.Info().Str("plugin", cfg.ID).Str("version", entry.Version).Msg("Plugin resolved")
	return entry, nil
}

func checkDowngrade(previous *domain.Manifest, entry domain.PluginEntry) (Downgrade, bool) {
	if previous == nil {
		return Downgrade{}, false
	}
	old, found := previous.FindPlugin(entry.ID)
	if !found || !version.IsDowngrade(old.Version, entry.Version) {
		return Downgrade{}, false
	}
	return Downgrade{ID: entry.ID, Previous: old.Version, Current: entry.Version}, true
}

func reasonText(summary string, cause error) string {
	if cause == nil {
		return summary
	}
	return summary + ": " + cause.Error()
}

// sleep waits for d or until ctx is done
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
