package manifest

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/csp2hub/plugin-repository/internal/domain"
)

//go:embed categories.yaml
var categoriesYAML []byte

// categoryFile is the on-disk layout of categories.yaml
type categoryFile struct {
	Categories []domain.Category `yaml:"categories"`
}

var defaultCategories = sync.OnceValues(func() ([]domain.Category, error) {
	return ParseCategories(categoriesYAML)
})

// ParseCategories decodes a category list and rejects empty or duplicate ids
func ParseCategories(data []byte) ([]domain.Category, error) {
	var file categoryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse categories: %w", err)
	}

	if len(file.Categories) == 0 {
		return nil, fmt.Errorf("category list is empty")
	}

	seen := make(map[string]struct{}, len(file.Categories))
	for i, c := range file.Categories {
		if c.ID == "" {
			return nil, fmt.Errorf("category at index %d has no id", i)
		}
		if _, dup := seen[c.ID]; dup {
			return nil, fmt.Errorf("duplicate category id %q", c.ID)
		}
		seen[c.ID] = struct{}{}
	}

	return file.Categories, nil
}

// DefaultCategories returns a copy of the built-in category list
func DefaultCategories() ([]domain.Category, error) {
	categories, err := defaultCategories()
	if err != nil {
		return nil, err
	}
	out := make([]domain.Category, len(categories))
	copy(out, categories)
	return out, nil
}

// CategoryIDs returns the ids of the built-in categories in publication order
func CategoryIDs() []string {
	categories, err := defaultCategories()
	if err != nil {
		return nil
	}
	ids := make([]string, len(categories))
	for i, c := range categories {
		ids[i] = c.ID
	}
	return ids
}
