package manifest

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/csp2hub/plugin-repository/internal/domain"
)

// ComputeStatistics aggregates counts over the published entries
func ComputeStatistics(plugins []domain.PluginEntry) domain.Statistics {
	stats := domain.Statistics{TotalPlugins: len(plugins)}
	authors := make(map[string]struct{})

	for _, p := range plugins {
		if p.Verified {
			stats.VerifiedPlugins++
		}
		stats.TotalDownloads += p.Downloads.Total
		authors[p.Author.GitHub] = struct{}{}
	}

	stats.ActiveAuthors = len(authors)
	return stats
}

// SortPlugins orders entries featured first, then by name using English
// collation. The sort is stable so equal names keep their load order.
func SortPlugins(plugins []domain.PluginEntry) {
	// Collators are not safe for concurrent use
	c := collate.New(language.English)

	sort.SliceStable(plugins, func(i, j int) bool {
		a, b := plugins[i], plugins[j]
		if a.Featured != b.Featured {
			return a.Featured
		}
		return c.CompareString(a.Name, b.Name) < 0
	})
}
