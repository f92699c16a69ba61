package loader

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/csp2hub/plugin-repository/internal/domain"
)

// FileConfigLoader loads plugin configs from a directory of JSON files
type FileConfigLoader struct {
	scanner *Scanner
	parser  *Parser
}

// NewFileConfigLoader creates a loader for the given plugins directory
func NewFileConfigLoader(dir string) *FileConfigLoader {
	return &FileConfigLoader{
		scanner: NewScanner(dir),
		parser:  NewParser(),
	}
}

// LoadFiles parses every config file in the directory. Per-file failures are
// collected and never stop the scan; the returned error is reserved for a
// missing or unreadable directory.
func (l *FileConfigLoader) LoadFiles(ctx context.Context) ([]ParsedFile, []domain.LoadError, error) {
	paths, err := l.scanner.Scan(ctx)
	if err != nil {
		return nil, nil, err
	}

	var files []ParsedFile
	var loadErrors []domain.LoadError

	for _, path := range paths {
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		default:
		}

		parsed, loadErr := l.parser.ParseFile(path)
		if loadErr != nil {
			loadErrors = append(loadErrors, *loadErr)
			continue
		}

		files = append(files, *parsed)
	}

	return files, loadErrors, nil
}

// LoadAll returns every parsable config, enabled or not
func (l *FileConfigLoader) LoadAll(ctx context.Context) ([]domain.PluginConfig, []domain.LoadError, error) {
	files, loadErrors, err := l.LoadFiles(ctx)
	if err != nil {
		return nil, nil, err
	}

	configs := make([]domain.PluginConfig, 0, len(files))
	for _, f := range files {
		configs = append(configs, f.Config)
	}

	return configs, loadErrors, nil
}

// LoadEnabled returns the configs that take part in manifest generation,
// dropping entries with "enabled": false
func (l *FileConfigLoader) LoadEnabled(ctx context.Context) ([]domain.PluginConfig, []domain.LoadError, error) {
	all, loadErrors, err := l.LoadAll(ctx)
	if err != nil {
		return nil, nil, err
	}

	enabled := FilterEnabled(all)

	log.Info().
		Int("found", len(all)).
		Int("enabled", len(enabled)).
		Int("failed", len(loadErrors)).
		Msg("Loaded plugin configs")

	return enabled, loadErrors, nil
}

// FilterEnabled keeps configs whose enabled flag is absent or true
func FilterEnabled(configs []domain.PluginConfig) []domain.PluginConfig {
	enabled := make([]domain.PluginConfig, 0, len(configs))
	for _, cfg := range configs {
		if cfg.IsEnabled() {
			enabled = append(enabled, cfg)
		}
	}
	return enabled
}
