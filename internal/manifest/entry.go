package manifest

import (
	"time"

	"github.com/csp2hub/plugin-repository/internal/domain"
)

// Defaults applied when neither the config nor the repository supplies a value
const (
	DefaultDownloadPattern  = ".zip"
	DefaultFramework        = "counterstrikesharp"
	DefaultFrameworkVersion = ">=1.0.0"
	DefaultCategory         = "utility"
	DefaultBranch           = "main"
	DefaultInstallType      = "extract"
	DefaultTargetPath       = "game/csgo/addons/counterstrikesharp/plugins"
	DefaultCS2Version       = ">=1.0.0"
	RepositoryType          = "github"
)

// DefaultPlatforms are the server platforms every entry is published for
var DefaultPlatforms = []string{"windows", "linux"}

// timestampLayout matches the millisecond UTC form used for lastUpdated and friends
const timestampLayout = "2006-01-02T15:04:05.000Z"

// FormatTimestamp renders t in the manifest's timestamp format
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// BuildEntry merges a plugin config with its latest release and optional repo
// info. Config values win over repository values, which win over defaults.
// It fails with a NOT_FOUND error when no asset name contains the download
// pattern; the caller skips the plugin.
func BuildEntry(cfg domain.PluginConfig, release domain.ReleaseInfo, repo domain.Lookup[domain.RepoInfo], defaultPattern string, now time.Time) (domain.PluginEntry, error) {
	pattern := firstNonEmpty(cfg.DownloadPattern, defaultPattern, DefaultDownloadPattern)

	asset, ok := release.FindAsset(pattern)
	if !ok {
		return domain.PluginEntry{}, domain.NewAppError(domain.ErrNotFound, "no matching asset found", map[string]any{
			"plugin":  cfg.ID,
			"pattern": pattern,
			"assets":  len(release.Assets),
		})
	}

	meta := cfg.MetadataOrEmpty()
	info, hasInfo := repo.Get()
	owner, name := cfg.Repository.Owner, cfg.Repository.Repo
	repoURL := domain.RepoURL(owner, name)

	displayName := firstNonEmpty(meta.Name, cfg.ID)

	description := meta.Description
	if description == "" && hasInfo {
		description = info.Description
	}
	if description == "" {
		description = "Plugin " + displayName
	}

	homepage := repoURL
	if hasInfo && info.Homepage != "" {
		homepage = info.Homepage
	}

	authorName := owner
	if meta.Author != nil && meta.Author.Name != "" {
		authorName = meta.Author.Name
	}

	dependencies := cfg.Dependencies
	if dependencies == nil {
		dependencies = meta.Dependencies
	}

	addedAt := FormatTimestamp(now)
	if cfg.Verification != nil && cfg.Verification.VerifiedAt != "" {
		addedAt = cfg.Verification.VerifiedAt
	}

	var updatedAt string
	if !release.PublishedAt.IsZero() {
		updatedAt = release.PublishedAt.UTC().Format(time.RFC3339)
	}

	return domain.PluginEntry{
		ID:   cfg.ID,
		Name: displayName,
		Slug: cfg.ID,
		Author: domain.Author{
			Name:   authorName,
			GitHub: owner,
		},
		Description:      description,
		DescriptionZh:    meta.DescriptionZh,
		Framework:        firstNonEmpty(meta.Framework, DefaultFramework),
		FrameworkVersion: firstNonEmpty(meta.FrameworkVersion, DefaultFrameworkVersion),
		Dependencies:     cloneStrings(dependencies),
		Category:         firstNonEmpty(meta.Category, DefaultCategory),
		Tags:             cloneStrings(meta.Tags),
		Version:          release.Version,
		Changelog:        release.Changelog,
		Repository: domain.Repository{
			Type:   RepositoryType,
			Owner:  owner,
			Repo:   name,
			Branch: firstNonEmpty(cfg.Repository.Branch, DefaultBranch),
		},
		Download: domain.Download{
			URL:  asset.BrowserDownloadURL,
			Size: asset.Size,
		},
		Installation: buildInstallation(cfg.Installation),
		Configuration: domain.Configuration{
			Required:      false,
			Files:         []string{},
			Documentation: repoURL + "#readme",
		},
		Media: domain.Media{
			Icon:        meta.Icon,
			Banner:      meta.Banner,
			Screenshots: cloneStrings(meta.Screenshots),
		},
		Links: domain.Links{
			Homepage:      homepage,
			Documentation: repoURL + "/wiki",
			Issues:        repoURL + "/issues",
			Discord:       meta.Discord,
		},
		Verified: cfg.IsVerified(),
		Featured: meta.Featured,
		Compatibility: domain.Compatibility{
			CS2Version: DefaultCS2Version,
			Platforms:  cloneStrings(DefaultPlatforms),
		},
		Metadata: domain.EntryMetadata{
			AddedAt:     addedAt,
			UpdatedAt:   updatedAt,
			LastChecked: FormatTimestamp(now),
		},
	}, nil
}

func buildInstallation(inst *domain.Installation) domain.Installation {
	if inst == nil {
		return domain.Installation{
			Type:       DefaultInstallType,
			TargetPath: DefaultTargetPath,
			Files:      []string{"*"},
		}
	}
	out := *inst
	out.Files = cloneStrings(inst.Files)
	return out
}

// cloneStrings copies s so entries never alias config slices, and turns nil
// into an empty slice so it serializes as []
func cloneStrings(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
