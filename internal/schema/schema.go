// Package schema compiles JSON Schema documents and reports every violation
// found in an instance.
package schema

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/csp2hub/plugin-repository/internal/domain"
)

//go:embed schemas/*.json
var embedded embed.FS

// Names of the built-in schemas
const (
	PluginSchemaName   = "plugin.schema.json"
	ManifestSchemaName = "manifest.schema.json"
)

var printer = message.NewPrinter(language.English)

// Violation is a single schema constraint failure
type Violation struct {
	// Path is the JSON pointer of the offending value, "/" for the document root
	Path    string
	Message string
}

func (v Violation) String() string {
	return v.Path + ": " + v.Message
}

// Validator validates JSON documents against one compiled schema
type Validator struct {
	name   string
	schema *jsonschema.Schema
}

// Compile builds a Validator from raw schema JSON. name identifies the schema
// in error messages and relative references.
func Compile(name string, data []byte) (*Validator, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, domain.NewAppErrorWithCause(domain.ErrInvalidInput, "schema is not valid JSON", err, map[string]any{"schema": name})
	}

	c := jsonschema.NewCompiler()
	c.DefaultDraft(jsonschema.Draft7)
	c.AssertFormat()

	if err := c.AddResource(name, doc); err != nil {
		return nil, fmt.Errorf("failed to add schema %s: %w", name, err)
	}

	compiled, err := c.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
	}

	return &Validator{name: name, schema: compiled}, nil
}

// Load compiles the schema at overridePath, or the embedded schema called
// name when overridePath is empty
func Load(name, overridePath string) (*Validator, error) {
	if overridePath == "" {
		data, err := embedded.ReadFile("schemas/" + name)
		if err != nil {
			return nil, fmt.Errorf("unknown built-in schema %s: %w", name, err)
		}
		return Compile(name, data)
	}

	data, err := os.ReadFile(overridePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.NewAppErrorWithCause(domain.ErrResourceMissing, "schema file not found", err, map[string]any{"path": overridePath})
		}
		return nil, fmt.Errorf("failed to read schema %s: %w", overridePath, err)
	}
	return Compile(filepath.Base(overridePath), data)
}

// PluginSchema loads the plugin config schema
func PluginSchema(overridePath string) (*Validator, error) {
	return Load(PluginSchemaName, overridePath)
}

// ManifestSchema loads the manifest schema
func ManifestSchema(overridePath string) (*Validator, error) {
	return Load(ManifestSchemaName, overridePath)
}

// Name returns the schema's identifier
func (v *Validator) Name() string {
	return v.name
}

// Validate parses data and returns all violations. Malformed JSON is returned
// as an INVALID_INPUT error rather than a violation.
func (v *Validator) Validate(data []byte) ([]Violation, error) {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, domain.NewAppErrorWithCause(domain.ErrInvalidInput, "invalid JSON", err, nil)
	}
	return v.ValidateValue(inst), nil
}

// ValidateValue validates an already decoded instance. The instance must use
// the representation produced by jsonschema.UnmarshalJSON.
func (v *Validator) ValidateValue(inst any) []Violation {
	err := v.schema.Validate(inst)
	if err == nil {
		return nil
	}

	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return []Violation{{Path: "/", Message: err.Error()}}
	}

	var out []Violation
	seen := make(map[Violation]struct{})
	collect(verr, &out, seen)
	return out
}

// collect walks the error tree and keeps the leaves, which carry the specific
// keyword failures
func collect(e *jsonschema.ValidationError, out *[]Violation, seen map[Violation]struct{}) {
	if len(e.Causes) > 0 {
		for _, c := range e.Causes {
			collect(c, out, seen)
		}
		return
	}

	v := Violation{
		Path:    "/" + strings.Join(e.InstanceLocation, "/"),
		Message: e.ErrorKind.LocalizedString(printer),
	}
	if _, dup := seen[v]; dup {
		return
	}
	seen[v] = struct{}{}
	*out = append(*out, v)
}
