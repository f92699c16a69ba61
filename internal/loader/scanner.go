// Package loader reads per-plugin configuration files from the plugins directory.
package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/csp2hub/plugin-repository/internal/domain"
)

// ConfigExtension is the file extension recognized as a plugin config
const ConfigExtension = ".json"

// Scanner lists plugin config files in a single directory
type Scanner struct {
	dir string
}

// NewScanner creates a new Scanner for the given plugins directory
func NewScanner(dir string) *Scanner {
	return &Scanner{dir: dir}
}

// Scan returns the paths of all config files in the directory, sorted by name.
// Sub-directories are not descended into.
func (s *Scanner) Scan(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.NewAppErrorWithCause(domain.ErrResourceMissing,
				fmt.Sprintf("plugins directory %s not found", s.dir), err, nil)
		}
		return nil, fmt.Errorf("failed to read plugins directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if entry.IsDir() || !isConfigFile(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(s.dir, entry.Name()))
	}

	sort.Strings(files)
	return files, nil
}

// isConfigFile checks whether a file name carries the config extension
func isConfigFile(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ConfigExtension)
}

// BaseName strips the directory and the .json extension from a config path
func BaseName(path string) string {
	name := filepath.Base(path)
	return name[:len(name)-len(filepath.Ext(name))]
}
