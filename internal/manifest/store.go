package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/csp2hub/plugin-repository/internal/domain"
)

// Write persists m to path as 2-space indented JSON.
// Uses atomic write pattern: temp file → sync → rename, so readers never see
// a truncated catalog.
func Write(path string, m *domain.Manifest) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	return atomicWrite(path, append(data, '\n'))
}

// Read loads a persisted manifest. A missing file yields a RESOURCE_MISSING error.
func Read(path string) (*domain.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.NewAppErrorWithCause(domain.ErrResourceMissing, "manifest not found", err, map[string]any{"path": path})
		}
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	var m domain.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, domain.NewAppErrorWithCause(domain.ErrInvalidInput, "manifest is not valid JSON", err, map[string]any{"path": path})
	}

	return &m, nil
}

func atomicWrite(targetPath string, data []byte) error {
	// Create temp file in the same directory to ensure same filesystem
	dir := filepath.Dir(targetPath)
	tempFile, err := os.CreateTemp(dir, ".manifest-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("failed to write to temp file: %w", err)
	}

	if err := tempFile.Sync(); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// CreateTemp uses 0600; the catalog is meant to be published
	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions on temp file: %w", err)
	}

	if err := os.Rename(tempPath, targetPath); err != nil {
		return fmt.Errorf("failed to rename temp file to target: %w", err)
	}

	success = true
	return nil
}
