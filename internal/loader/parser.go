package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/csp2hub/plugin-repository/internal/domain"
)

// ParsedFile is a decoded config together with its raw bytes, which schema
// validation needs in undecoded form
type ParsedFile struct {
	Config domain.PluginConfig
	Raw    []byte
}

// Parser decodes plugin config files
type Parser struct{}

// NewParser creates a new Parser instance
func NewParser() *Parser {
	return &Parser{}
}

// ParseFile reads and decodes a single config file
func (p *Parser) ParseFile(path string) (*ParsedFile, *domain.LoadError) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.LoadError{
			FilePath: path,
			Error:    fmt.Sprintf("failed to read file: %v", err),
		}
	}

	cfg, loadErr := p.ParseContent(data, path)
	if loadErr != nil {
		return nil, loadErr
	}

	return &ParsedFile{Config: *cfg, Raw: data}, nil
}

// ParseContent decodes config bytes; path is used for error reporting and
// to derive the config's base name
func (p *Parser) ParseContent(data []byte, path string) (*domain.PluginConfig, *domain.LoadError) {
	var cfg domain.PluginConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &domain.LoadError{
			FilePath: path,
			Error:    fmt.Sprintf("invalid JSON: %v", err),
			Line:     extractJSONErrorLine(data, err),
		}
	}

	cfg.Source = domain.ConfigSource{
		FilePath: path,
		BaseName: BaseName(path),
	}

	return &cfg, nil
}

// extractJSONErrorLine maps a syntax error offset to a 1-based line number
func extractJSONErrorLine(data []byte, err error) int {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return lineAt(data, syntaxErr.Offset)
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return lineAt(data, typeErr.Offset)
	}
	return 0
}

func lineAt(data []byte, offset int64) int {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	return bytes.Count(data[:offset], []byte("\n")) + 1
}
