package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Compare compares two version strings semantically.
// Returns -1 if v1 < v2, 0 if v1 == v2, 1 if v1 > v2.
func Compare(v1, v2 string) (int, error) {
	version1, err := semver.NewVersion(strings.TrimPrefix(v1, "v"))
	if err != nil {
		return 0, fmt.Errorf("invalid version %s: %w", v1, err)
	}

	version2, err := semver.NewVersion(strings.TrimPrefix(v2, "v"))
	if err != nil {
		return 0, fmt.Errorf("invalid version %s: %w", v2, err)
	}

	return version1.Compare(version2), nil
}

// IsDowngrade reports whether next is older than previous. Unparseable input
// is never treated as a downgrade.
func IsDowngrade(previous, next string) bool {
	cmp, err := Compare(previous, next)
	return err == nil && cmp > 0
}

// ValidConstraint checks if a framework requirement such as ">=1.0.0" parses
// as a semantic version constraint
func ValidConstraint(constraint string) bool {
	_, err := semver.NewConstraint(constraint)
	return err == nil
}

