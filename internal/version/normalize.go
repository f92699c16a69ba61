// Package version turns arbitrary release tags into canonical MAJOR.MINOR.PATCH
// strings and provides semantic-version comparisons for published entries.
package version

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

// Fallback is returned when no pattern matches. It cannot be told apart from a
// genuine 0.0.1 release by value alone; check Result.Confidence instead.
const Fallback = "0.0.1"

// Confidence describes which rule produced a normalized version
type Confidence string

const (
	// Exact means the tag already started with MAJOR.MINOR.PATCH
	Exact Confidence = "exact"
	// Extracted means a MAJOR.MINOR.PATCH substring was found elsewhere in the tag
	Extracted Confidence = "extracted"
	// BuildNumber means a build-<n> marker was mapped to 0.0.<n>
	BuildNumber Confidence = "build-number"
	// BareNumber means the first digit run was mapped to 0.0.<n>
	BareNumber Confidence = "bare-number"
	// Guessed means nothing matched and Fallback was used
	Guessed Confidence = "fallback"
)

var (
	leadingSemVer = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)`)
	anySemVer     = regexp.MustCompile(`(\d+)\.(\d+)\.(\d+)`)
	buildNumber   = regexp.MustCompile(`(?i)build[_-]?(\d+)`)
	digitRun      = regexp.MustCompile(`(\d+)`)
)

// Result is a normalized version together with how it was obtained
type Result struct {
	Version    string
	Confidence Confidence
}

// Parsed reports whether the version came from the tag rather than the fallback
func (r Result) Parsed() bool {
	return r.Confidence != Guessed
}

// Normalize converts a raw release tag into a three-component version.
// Rules are tried in order and the first match wins.
func Normalize(tag string) Result {
	v := strings.TrimPrefix(tag, "v")

	if m := leadingSemVer.FindStringSubmatch(v); m != nil {
		return Result{Version: join(m[1], m[2], m[3]), Confidence: Exact}
	}

	log.Warn().Str("tag", tag).Msg("Non-semver version detected, attempting to normalize")

	if m := anySemVer.FindStringSubmatch(v); m != nil {
		return Result{Version: join(m[1], m[2], m[3]), Confidence: Extracted}
	}

	if m := buildNumber.FindStringSubmatch(v); m != nil {
		normalized := join("0", "0", m[1])
		log.Info().Str("tag", tag).Str("version", normalized).Msg("Normalized build number")
		return Result{Version: normalized, Confidence: BuildNumber}
	}

	if m := digitRun.FindStringSubmatch(v); m != nil {
		normalized := join("0", "0", m[1])
		log.Info().Str("tag", tag).Str("version", normalized).Msg("Normalized bare number")
		return Result{Version: normalized, Confidence: BareNumber}
	}

	log.Warn().Str("tag", tag).Str("version", Fallback).Msg("Unable to parse version, using fallback")
	return Result{Version: Fallback, Confidence: Guessed}
}

// NormalizeTag is Normalize without the confidence flag
func NormalizeTag(tag string) string {
	return Normalize(tag).Version
}

func join(major, minor, patch string) string {
	return fmt.Sprintf("%s.%s.%s", major, minor, patch)
}
