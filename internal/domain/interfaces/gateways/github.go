// Package gateways defines interfaces for external service adapters.
package gateways

import (
	"context"
)

// GitHubRelease represents a GitHub release
type GitHubRelease struct {
	ID          int64
	TagName     string
	Name        string
	Draft       bool
	Prerelease  bool
	PublishedAt string
	HTMLURL     string
	TarballURL  string
}

// GitHubTag represents a git tag as returned by the GitHub API
type GitHubTag struct {
	Name       string
	TarballURL string
}

// GitHubGateway defines read-only operations against the GitHub API
type GitHubGateway interface {
	// GetLatestRelease retrieves the latest published release
	GetLatestRelease(ctx context.Context, owner, repo string) (*GitHubRelease, error)

	// ListTags lists repository tags across every page, most recent first
	ListTags(ctx context.Context, owner, repo string) ([]*GitHubTag, error)
}
