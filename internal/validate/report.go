package validate

import (
	"fmt"

	"github.com/csp2hub/plugin-repository/internal/domain"
)

// Severity classifies an Issue
type Severity string

const (
	// SeverityError fails the run
	SeverityError Severity = "error"
	// SeverityWarning is advisory and never fails the run
	SeverityWarning Severity = "warning"
)

// Issue is one finding about a file
type Issue struct {
	Severity Severity
	Message  string
}

// FileResult collects the findings for one plugin config file
type FileResult struct {
	Path     string
	Name     string
	ID       string
	Errors   []Issue
	Warnings []Issue
}

// Valid reports whether the file produced no errors
func (f *FileResult) Valid() bool {
	return len(f.Errors) == 0
}

func (f *FileResult) addError(msg string) {
	f.Errors = append(f.Errors, Issue{Severity: SeverityError, Message: msg})
}

func (f *FileResult) addWarning(msg string) {
	f.Warnings = append(f.Warnings, Issue{Severity: SeverityWarning, Message: msg})
}

// ManifestSummary holds the headline fields of a valid manifest
type ManifestSummary struct {
	Version     string
	Plugins     int
	LastUpdated string
}

// ManifestResult is the outcome of validating the persisted manifest
type ManifestResult struct {
	Path    string
	Present bool
	Errors  []Issue
	Summary ManifestSummary
}

// Valid reports whether the manifest is absent or passed validation
func (m *ManifestResult) Valid() bool {
	return len(m.Errors) == 0
}

func (m *ManifestResult) addError(msg string) {
	m.Errors = append(m.Errors, Issue{Severity: SeverityError, Message: msg})
}

// Report accumulates every finding of a validation run
type Report struct {
	PluginsDir string
	Plugins    []FileResult
	Manifest   ManifestResult
	// Problems are run-level errors not tied to one file
	Problems []Issue
}

func (r *Report) addProblem(msg string) {
	r.Problems = append(r.Problems, Issue{Severity: SeverityError, Message: msg})
}

// Errors returns the total number of errors
func (r *Report) Errors() int {
	n := len(r.Problems) + len(r.Manifest.Errors)
	for i := range r.Plugins {
		n += len(r.Plugins[i].Errors)
	}
	return n
}

// Warnings returns the total number of warnings
func (r *Report) Warnings() int {
	n := 0
	for i := range r.Plugins {
		n += len(r.Plugins[i].Warnings)
	}
	return n
}

// ValidFiles returns how many plugin files had no errors
func (r *Report) ValidFiles() int {
	n := 0
	for i := range r.Plugins {
		if r.Plugins[i].Valid() {
			n++
		}
	}
	return n
}

// Passed reports whether the run found no errors. Warnings do not count.
func (r *Report) Passed() bool {
	return r.Errors() == 0
}

// Err returns a VALIDATION_FAILED error carrying the counts, or nil when the
// run passed
func (r *Report) Err() error {
	if r.Passed() {
		return nil
	}
	return domain.NewAppError(
		domain.ErrValidationFailed,
		fmt.Sprintf("%d validation error(s)", r.Errors()),
		map[string]any{
			"errors":      r.Errors(),
			"warnings":    r.Warnings(),
			"plugins_dir": r.PluginsDir,
		},
	).WithOperation("validate")
}
