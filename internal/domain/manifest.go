package domain

// ManifestVersion is the schema version written into every generated manifest
const ManifestVersion = "2.0"

// DefaultUpdateInterval is how often (in seconds) clients should re-fetch the manifest
const DefaultUpdateInterval = 3600

// Manifest is the single published catalog document
// @Description Published plugin catalog
type Manifest struct {
	Version        string        `json:"version" example:"2.0"`
	LastUpdated    string        `json:"lastUpdated" example:"2025-01-01T12:00:00Z"`
	UpdateInterval int           `json:"updateInterval" example:"3600"`
	Categories     []Category    `json:"categories"`
	Plugins        []PluginEntry `json:"plugins"`
	Statistics     Statistics    `json:"statistics"`
}

// Category is one entry of the fixed category list
type Category struct {
	ID            string `json:"id" yaml:"id"`
	Name          string `json:"name" yaml:"name"`
	NameZh        string `json:"nameZh" yaml:"nameZh"`
	Description   string `json:"description" yaml:"description"`
	DescriptionZh string `json:"descriptionZh" yaml:"descriptionZh"`
}

// Statistics aggregates counts across all published entries
type Statistics struct {
	TotalPlugins    int `json:"totalPlugins"`
	VerifiedPlugins int `json:"verifiedPlugins"`
	TotalDownloads  int `json:"totalDownloads"`
	ActiveAuthors   int `json:"activeAuthors"`
}

// PluginEntry is the published record for one plugin
// @Description Published plugin record
type PluginEntry struct {
	ID               string        `json:"id" example:"admin-tools"`
	Name             string        `json:"name" example:"Admin Tools"`
	Slug             string        `json:"slug" example:"admin-tools"`
	Author           Author        `json:"author"`
	Description      string        `json:"description"`
	DescriptionZh    string        `json:"descriptionZh"`
	Framework        string        `json:"framework" example:"counterstrikesharp"`
	FrameworkVersion string        `json:"frameworkVersion" example:">=1.0.0"`
	Dependencies     []string      `json:"dependencies"`
	Category         string        `json:"category" example:"admin"`
	Tags             []string      `json:"tags"`
	Version          string        `json:"version" example:"1.2.3"`
	Changelog        string        `json:"changelog"`
	Downloads        Downloads     `json:"downloads"`
	Rating           Rating        `json:"rating"`
	Repository       Repository    `json:"repository"`
	Download         Download      `json:"download"`
	Installation     Installation  `json:"installation"`
	Configuration    Configuration `json:"configuration"`
	Media            Media         `json:"media"`
	Links            Links         `json:"links"`
	Verified         bool          `json:"verified"`
	Featured         bool          `json:"featured"`
	OfficialSupport  bool          `json:"officialSupport"`
	Compatibility    Compatibility `json:"compatibility"`
	Metadata         EntryMetadata `json:"metadata"`
}

// Downloads is a placeholder maintained by an external stats tracker
type Downloads struct {
	Total     int `json:"total"`
	LastMonth int `json:"lastMonth"`
}

// Rating is a placeholder maintained by an external rating system
type Rating struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// Repository is the published form of the repository coordinates
type Repository struct {
	Type   string `json:"type" example:"github"`
	Owner  string `json:"owner"`
	Repo   string `json:"repo"`
	Branch string `json:"branch"`
}

// URL returns the browsable repository address
func (r Repository) URL() string {
	return RepoURL(r.Owner, r.Repo)
}

// Download points at the selected release asset
type Download struct {
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

// Configuration describes plugin configuration requirements
type Configuration struct {
	Required      bool     `json:"required"`
	Files         []string `json:"files"`
	Documentation string   `json:"documentation"`
}

// Media holds optional artwork links
type Media struct {
	Icon        string   `json:"icon,omitempty"`
	Banner      string   `json:"banner,omitempty"`
	Screenshots []string `json:"screenshots"`
}

// Links holds derived and explicit project links
type Links struct {
	Homepage      string `json:"homepage"`
	Documentation string `json:"documentation"`
	Issues        string `json:"issues"`
	Discord       string `json:"discord,omitempty"`
}

// Compatibility lists supported game versions and platforms
type Compatibility struct {
	CS2Version string   `json:"cs2Version"`
	Platforms  []string `json:"platforms"`
}

// EntryMetadata carries bookkeeping timestamps
type EntryMetadata struct {
	AddedAt     string `json:"addedAt"`
	UpdatedAt   string `json:"updatedAt"`
	LastChecked string `json:"lastChecked"`
}

// RepoURL builds the browsable GitHub address for owner/repo
func RepoURL(owner, repo string) string {
	return "https://github.com/" + owner + "/" + repo
}

// FindPlugin returns the entry with the given id
func (m *Manifest) FindPlugin(id string) (*PluginEntry, bool) {
	for i := range m.Plugins {
		if m.Plugins[i].ID == id {
			return &m.Plugins[i], true
		}
	}
	return nil, false
}
