// Package validate checks plugin config files and the persisted manifest,
// collecting errors and advisory warnings into a Report.
package validate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"

	"github.com/csp2hub/plugin-repository/internal/domain"
	"github.com/csp2hub/plugin-repository/internal/loader"
	"github.com/csp2hub/plugin-repository/internal/manifest"
	"github.com/csp2hub/plugin-repository/internal/schema"
	"github.com/csp2hub/plugin-repository/internal/version"
)

// Validator runs schema, structural, and advisory checks
type Validator struct {
	pluginSchema   *schema.Validator
	manifestSchema *schema.Validator
	structural     *validator.Validate
	parser         *loader.Parser
}

// New creates a Validator from compiled plugin and manifest schemas
func New(pluginSchema, manifestSchema *schema.Validator) *Validator {
	structural := validator.New()
	structural.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{
		pluginSchema:   pluginSchema,
		manifestSchema: manifestSchema,
		structural:     structural,
		parser:         loader.NewParser(),
	}
}

// Run validates every config in pluginsDir and then the manifest at
// manifestPath. The error is reserved for cancellation.
func (v *Validator) Run(ctx context.Context, pluginsDir, manifestPath string) (*Report, error) {
	report := &Report{PluginsDir: pluginsDir}

	if err := v.ValidatePlugins(ctx, pluginsDir, report); err != nil {
		return nil, err
	}
	v.ValidateManifest(manifestPath, report)

	log.Info().
		Int("files", len(report.Plugins)).
		Int("valid", report.ValidFiles()).
		Int("errors", report.Errors()).
		Int("warnings", report.Warnings()).
		Bool("passed", report.Passed()).
		Msg("Validation finished")

	return report, nil
}

// ValidatePlugins validates each *.json file in dir and appends the results
// to report. A missing directory or an empty one is a run-level error.
func (v *Validator) ValidatePlugins(ctx context.Context, dir string, report *Report) error {
	paths, err := loader.NewScanner(dir).Scan(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		report.addProblem(fmt.Sprintf("Error validating plugins: %v", err))
		return nil
	}

	if len(paths) == 0 {
		report.addProblem("No plugin configuration files found")
		return nil
	}

	seenIDs := make(map[string]string)
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}

		var result FileResult
		data, err := os.ReadFile(path)
		if err != nil {
			result = FileResult{Path: path, Name: filepath.Base(path)}
			result.addError(fmt.Sprintf("Error: %v", err))
		} else {
			result = v.ValidateFile(path, data)
		}

		if result.ID != "" {
			if first, dup := seenIDs[result.ID]; dup {
				result.addWarning(fmt.Sprintf("Duplicate id %q, already declared in %s", result.ID, first))
			} else {
				seenIDs[result.ID] = result.Name
			}
		}

		log.Debug().
			Str("file", result.Name).
			Int("errors", len(result.Errors)).
			Int("warnings", len(result.Warnings)).
			Msg("Validated plugin config")

		report.Plugins = append(report.Plugins, result)
	}

	return nil
}

// ValidateFile checks a single config document
func (v *Validator) ValidateFile(path string, data []byte) FileResult {
	baseName := loader.BaseName(path)
	result := FileResult{Path: path, Name: filepath.Base(path)}

	if !json.Valid(data) {
		_, loadErr := v.parser.ParseContent(data, path)
		msg := "Invalid JSON"
		if loadErr != nil {
			msg = fmt.Sprintf("Invalid JSON (line %d): %s", loadErr.Line, strings.TrimPrefix(loadErr.Error, "invalid JSON: "))
		}
		result.addError(msg)
		return result
	}

	violations, err := v.pluginSchema.Validate(data)
	if err != nil {
		result.addError(fmt.Sprintf("Invalid JSON: %v", err))
		return result
	}
	for _, viol := range violations {
		result.addError("Schema: " + viol.String())
	}

	cfg, loadErr := v.parser.ParseContent(data, path)
	if loadErr != nil {
		// Wrong value types; the schema violations above already describe them
		if len(violations) == 0 {
			result.addError(loadErr.Error)
		}
		return result
	}
	result.ID = cfg.ID

	if msg := v.checkRepository(cfg.Repository); msg != "" {
		result.addError(msg)
	}

	if cfg.ID != baseName {
		result.addWarning(fmt.Sprintf("ID mismatch: config.id=%q but filename=%q", cfg.ID, result.Name))
	}

	if cfg.Metadata == nil {
		result.addWarning("Missing metadata - plugin will have limited information")
	}

	meta := cfg.MetadataOrEmpty()
	if meta.DescriptionZh == "" {
		result.addWarning("Missing Chinese description (descriptionZh)")
	}

	if meta.FrameworkVersion != "" && !version.ValidConstraint(meta.FrameworkVersion) {
		result.addWarning(fmt.Sprintf("frameworkVersion %q is not a valid version constraint", meta.FrameworkVersion))
	}

	return result
}

// checkRepository returns a message when owner or repo is missing
func (v *Validator) checkRepository(repo domain.RepositoryRef) string {
	err := v.structural.Struct(repo)
	if err == nil {
		return ""
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Sprintf("Missing or invalid repository information: %v", err)
	}

	fields := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fields = append(fields, fmt.Sprintf("repository.%s is %s", fe.Field(), fe.Tag()))
	}
	return "Missing or invalid repository information: " + strings.Join(fields, ", ")
}

// ValidateManifest validates the persisted manifest into report.Manifest.
// An absent file means it has not been generated yet and is not an error.
func (v *Validator) ValidateManifest(path string, report *Report) {
	result := ManifestResult{Path: path}
	defer func() { report.Manifest = result }()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Warn().Str("path", path).Msg("Manifest not found, run generate first")
			return
		}
		result.Present = true
		result.addError(fmt.Sprintf("Error validating manifest: %v", err))
		return
	}
	result.Present = true

	if !gjson.ValidBytes(data) {
		_, loadErr := v.parser.ParseContent(data, path)
		msg := "Invalid JSON"
		if loadErr != nil {
			msg = fmt.Sprintf("Invalid JSON (line %d)", loadErr.Line)
		}
		result.addError(msg)
		return
	}

	violations, err := v.manifestSchema.Validate(data)
	if err != nil {
		result.addError(fmt.Sprintf("Invalid JSON: %v", err))
		return
	}
	for _, viol := range violations {
		result.addError("Schema: " + viol.String())
	}
	if len(violations) > 0 {
		return
	}

	known := make(map[string]struct{})
	for _, id := range manifest.CategoryIDs() {
		known[id] = struct{}{}
	}
	gjson.GetBytes(data, "plugins").ForEach(func(_, p gjson.Result) bool {
		category := p.Get("category").String()
		if _, ok := known[category]; !ok {
			result.addError(fmt.Sprintf("Plugin %q has unknown category %q", p.Get("id").String(), category))
		}
		return true
	})

	fields := gjson.GetManyBytes(data, "version", "plugins.#", "lastUpdated")
	result.Summary = ManifestSummary{
		Version:     fields[0].String(),
		Plugins:     int(fields[1].Int()),
		LastUpdated: fields[2].String(),
	}
}
