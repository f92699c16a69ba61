package domain

// PluginConfig is the maintainer-authored source of truth for a single plugin,
// stored as plugins/<id>.json
type PluginConfig struct {
	ID              string        `json:"id"`
	Enabled         *bool         `json:"enabled,omitempty"` // Absent means enabled
	Repository      RepositoryRef `json:"repository"`
	Metadata        *Metadata     `json:"metadata,omitempty"`
	Dependencies    []string      `json:"dependencies,omitempty"` // Takes precedence over metadata.dependencies
	Installation    *Installation `json:"installation,omitempty"`
	Verification    *Verification `json:"verification,omitempty"`
	DownloadPattern string        `json:"downloadPattern,omitempty"`
	Source          ConfigSource  `json:"-"`
}

// ConfigSource records which file a config was read from
type ConfigSource struct {
	FilePath string // Absolute or relative path of the config file
	BaseName string // File name without the .json extension
}

// RepositoryRef holds the hosting coordinates of a plugin repository
type RepositoryRef struct {
	Owner  string `json:"owner" validate:"required"`
	Repo   string `json:"repo" validate:"required"`
	Branch string `json:"branch,omitempty"`
}

// Metadata is the optional descriptive block of a plugin config
type Metadata struct {
	Name             string   `json:"name,omitempty"`
	Description      string   `json:"description,omitempty"`
	DescriptionZh    string   `json:"descriptionZh,omitempty"`
	Author           *Author  `json:"author,omitempty"`
	Category         string   `json:"category,omitempty"`
	Tags             []string `json:"tags,omitempty"`
	Framework        string   `json:"framework,omitempty"`
	FrameworkVersion string   `json:"frameworkVersion,omitempty"`
	Dependencies     []string `json:"dependencies,omitempty"` // Legacy location
	Featured         bool     `json:"featured,omitempty"`
	Icon             string   `json:"icon,omitempty"`
	Banner           string   `json:"banner,omitempty"`
	Screenshots      []string `json:"screenshots,omitempty"`
	Discord          string   `json:"discord,omitempty"`
}

// Author identifies who maintains a plugin
type Author struct {
	Name   string `json:"name,omitempty"`
	GitHub string `json:"github,omitempty"`
}

// Installation describes how the downloaded archive is installed on a server
type Installation struct {
	Type       string   `json:"type"`
	TargetPath string   `json:"targetPath"`
	Files      []string `json:"files"`
}

// Verification records how and when a plugin was verified by maintainers
type Verification struct {
	Method     string `json:"method,omitempty"`
	VerifiedAt string `json:"verifiedAt,omitempty"`
}

// VerificationGitHub is the only verification method that marks an entry as verified
const VerificationGitHub = "github-verified"

// IsEnabled reports whether the config takes part in manifest generation
func (c *PluginConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// MetadataOrEmpty returns the metadata block, or an empty one when absent
func (c *PluginConfig) MetadataOrEmpty() Metadata {
	if c.Metadata == nil {
		return Metadata{}
	}
	return *c.Metadata
}

// IsVerified reports whether the config carries the github-verified marker
func (c *PluginConfig) IsVerified() bool {
	return c.Verification != nil && c.Verification.Method == VerificationGitHub
}
