package gateways

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/Masterminds/semver/v3"

	"github.com/zoomio/formulary/internal/domain/entities"
	"github.com/zoomio/formulary/internal/domain/interfaces"
	"github.com/zoomio/formulary/internal/domain/interfaces/gateways"
)

// LatestVersion asks ResolveVersion to consult the formula's version source
const LatestVersion = "latest"

// ErrNoVersionSource is returned when "latest" is requested for a formula without a version source
var ErrNoVersionSource = errors.New("version.source not specified")

// VersionFetcher resolves the release version a formula should be rendered with
type VersionFetcher struct {
	github gateways.GitHubGateway
	logger interfaces.Logger
}

// NewVersionFetcher creates a new version fetcher
func NewVersionFetcher(github gateways.GitHubGateway, logger interfaces.Logger) *VersionFetcher {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &VersionFetcher{github: github, logger: logger}
}

// ResolveVersion returns requested unless it is empty or "latest", in which
// case the version is looked up from the formula's version.source
func (vf *VersionFetcher) ResolveVersion(ctx context.Context, def *entities.Formula, requested string) (string, error) {
	if requested != "" && requested != LatestVersion {
		return requested, nil
	}

	source := def.Version.Source
	if source == "" {
		return "", fmt.Errorf("%s: %w", def.Name, ErrNoVersionSource)
	}

	var rawVersion string
	var err error

	switch {
	case strings.HasPrefix(source, "github-release:"):
		rawVersion, err = vf.fetchGitHubRelease(ctx, strings.TrimPrefix(source, "github-release:"), def.Version.ExcludePatterns)
	case strings.HasPrefix(source, "github-tag:"):
		rawVersion, err = vf.fetchGitHubTag(ctx, strings.TrimPrefix(source, "github-tag:"), def.Version.ExcludePatterns)
	case strings.HasPrefix(source, "static:"):
		rawVersion = strings.TrimPrefix(source, "static:")
	default:
		return "", fmt.Errorf("unsupported version.source format: %s", source)
	}
	if err != nil {
		return "", err
	}

	// Transform version using sed-like pattern if specified
	if def.Version.Cleanup != "" {
		rawVersion, err = vf.transformVersion(rawVersion, def.Version.Cleanup)
		if err != nil {
			return "", fmt.Errorf("version transformation failed: %w", err)
		}
	}

	version := strings.TrimSpace(rawVersion)
	if version == "" {
		return "", fmt.Errorf("version.source %s resolved to an empty version", source)
	}

	vf.logger.Debug("Resolved version",
		interfaces.F("formula", def.Name),
		interfaces.F("source", source),
		interfaces.F("version", version),
	)

	return version, nil
}

func splitRepo(repo string) (string, string, error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("invalid repository %q, want owner/repo", repo)
	}
	return owner, name, nil
}

// fetchGitHubRelease fetches the latest release from GitHub
func (vf *VersionFetcher) fetchGitHubRelease(ctx context.Context, repo, filterRegex string) (string, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return "", err
	}

	release, err := vf.github.GetLatestRelease(ctx, owner, name)
	if err != nil {
		return "", fmt.Errorf("GitHub API request failed: %w", err)
	}

	if release.Draft {
		return "", fmt.Errorf("latest release is a draft")
	}
	if filterRegex != "" && vf.shouldFilterVersion(release.TagName, filterRegex) {
		return "", fmt.Errorf("version %s filtered out by regex: %s", release.TagName, filterRegex)
	}

	return release.TagName, nil
}

// fetchGitHubTag picks the highest stable semver tag, falling back to the
// most recent tag when none of them parse
func (vf *VersionFetcher) fetchGitHubTag(ctx context.Context, repo, filterRegex string) (string, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return "", err
	}

	tags, err := vf.github.ListTags(ctx, owner, name)
	if err != nil {
		return "", fmt.Errorf("GitHub API request failed: %w", err)
	}
	if len(tags) == 0 {
		return "", fmt.Errorf("no tags found")
	}

	candidates := make([]string, 0, len(tags))
	for _, tag := range tags {
		if filterRegex != "" && vf.shouldFilterVersion(tag.Name, filterRegex) {
			continue
		}
		candidates = append(candidates, tag.Name)
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("all tags filtered out by regex: %s", filterRegex)
	}

	if best := highestStable(candidates); best != "" {
		return best, nil
	}

	// Return the first (most recent) tag
	return candidates[0], nil
}

// highestStable returns the tag with the greatest non-prerelease semantic version
func highestStable(tags []string) string {
	var best *semver.Version
	bestTag := ""

	for _, tag := range tags {
		v, err := semver.NewVersion(tag)
		if err != nil || v.Prerelease() != "" {
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best = v
			bestTag = tag
		}
	}

	return bestTag
}

// isSedExpression reports whether pattern is s followed by a non-alphanumeric separator
func isSedExpression(pattern string) bool {
	if len(pattern) < 2 || pattern[0] != 's' {
		return false
	}
	sep := rune(pattern[1])
	return sep > ' ' && sep < unicode.MaxASCII && sep != '\\' &&
		!unicode.IsLetter(sep) && !unicode.IsDigit(sep)
}

// transformVersion applies sed-like transformations or simple string replacements
func (vf *VersionFetcher) transformVersion(input, sedPattern string) (string, error) {
	if !isSedExpression(sedPattern) {
		// Simple "find:replace" syntax (e.g., "v:" to remove "v", "_:." to replace "_" with ".")
		find, replace, ok := strings.Cut(sedPattern, ":")
		if !ok {
			return "", fmt.Errorf("unsupported cleanup (use s/regex/repl/ or find:replace): %s", sedPattern)
		}
		return strings.ReplaceAll(input, find, replace), nil
	}

	// Sed with different separators: s/.../ or s|...| or s;...;
	if len(sedPattern) < 4 {
		return "", fmt.Errorf("invalid sed pattern format: %s", sedPattern)
	}

	separator := rune(sedPattern[1])

	parts := splitBySeparator(sedPattern[2:], separator)
	if len(parts) < 2 {
		return "", fmt.Errorf("invalid sed pattern format: %s", sedPattern)
	}

	pattern := parts[0]
	replacement := parts[1]
	globalReplace := len(parts) > 2 && strings.Contains(parts[2], "g")

	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", fmt.Errorf("invalid regex in sed pattern: %w", err)
	}

	if globalReplace {
		return re.ReplaceAllString(input, replacement), nil
	}

	// Replace only first match
	loc := re.FindStringIndex(input)
	if loc == nil {
		return input, nil
	}
	return input[:loc[0]] + re.ReplaceAllString(input[loc[0]:loc[1]], replacement) + input[loc[1]:], nil
}

// splitBySeparator splits a string by a separator character
func splitBySeparator(s string, sep rune) []string {
	var parts []string
	var current strings.Builder
	escaped := false

	for _, ch := range s {
		if escaped {
			// Preserve backslash for regex patterns
			current.WriteRune('\\')
			current.WriteRune(ch)
			escaped = false
			continue
		}

		if ch == '\\' {
			escaped = true
			continue
		}

		if ch == sep {
			parts = append(parts, current.String())
			current.Reset()
			continue
		}

		current.WriteRune(ch)
	}

	parts = append(parts, current.String())
	return parts
}

// shouldFilterVersion checks if version should be filtered out
func (vf *VersionFetcher) shouldFilterVersion(version, filterPattern string) bool {
	re, err := regexp.Compile(filterPattern)
	if err != nil {
		return false // Don't filter if regex is invalid
	}

	return re.MatchString(version)
}
