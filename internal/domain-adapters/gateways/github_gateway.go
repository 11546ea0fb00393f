package gateways

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/zoomio/formulary/internal/domain/interfaces"
	"github.com/zoomio/formulary/internal/domain/interfaces/gateways"
)

// DefaultGitHubAPIURL is the public GitHub REST endpoint
const DefaultGitHubAPIURL = "https://api.github.com"

const (
	tagsPerPage = 100
	maxTagPages = 20
)

// ErrNotFound is returned when the requested release or repository does not exist
var ErrNotFound = errors.New("not found")

// GitHubConfig holds configuration for the GitHub gateway
type GitHubConfig struct {
	BaseURL       string
	Token         string
	Timeout       time.Duration
	RetryAttempts uint
	RetryDelay    time.Duration
	HTTPClient    *http.Client
	Logger        interfaces.Logger
}

// HTTPGitHubGateway implements GitHubGateway using standard HTTP client
type HTTPGitHubGateway struct {
	client    *http.Client
	baseURL   string
	token     string
	userAgent string
	attempts  uint
	delay     time.Duration
	logger    interfaces.Logger
}

// NewHTTPGitHubGateway creates a new GitHub gateway with HTTP client
func NewHTTPGitHubGateway(cfg GitHubConfig) *HTTPGitHubGateway {
	g := &HTTPGitHubGateway{
		client:    cfg.HTTPClient,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		token:     cfg.Token,
		userAgent: userAgent,
		attempts:  cfg.RetryAttempts,
		delay:     cfg.RetryDelay,
		logger:    cfg.Logger,
	}

	if g.client == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		g.client = &http.Client{Timeout: timeout}
	}
	if g.baseURL == "" {
		g.baseURL = DefaultGitHubAPIURL
	}
	if g.attempts == 0 {
		g.attempts = maxRetries + 1
	}
	if g.delay == 0 {
		g.delay = initialBackoff
	}
	if g.logger == nil {
		g.logger = &interfaces.NoOpLogger{}
	}

	return g
}

// rateLimitRemaining reads X-RateLimit-Remaining; ok is false when the header is absent or malformed
func rateLimitRemaining(resp *http.Response) (remaining int, ok bool) {
	header := resp.Header.Get("X-RateLimit-Remaining")
	if header == "" {
		return 0, false
	}
	remaining, err := strconv.Atoi(header)
	if err != nil {
		return 0, false
	}
	return remaining, true
}

// rateLimitReset formats X-RateLimit-Reset as RFC3339, or returns "" if absent
func rateLimitReset(resp *http.Response) string {
	resetUnix, err := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64)
	if err != nil {
		return ""
	}
	return time.Unix(resetUnix, 0).UTC().Format(time.RFC3339)
}

// checkRateLimit fails fast when GitHub rejected the request with an exhausted
// quota. A successful response that spent the last unit is still returned;
// it only logs a warning.
func (g *HTTPGitHubGateway) checkRateLimit(resp *http.Response) error {
	remaining, ok := rateLimitRemaining(resp)
	if !ok {
		return nil
	}

	rejected := resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests
	if remaining == 0 && rejected {
		if reset := rateLimitReset(resp); reset != "" {
			return fmt.Errorf("GitHub API rate limit exceeded (0 remaining), resets at %s", reset)
		}
		return errors.New("GitHub API rate limit exceeded (0 remaining)")
	}

	if remaining <= 10 {
		g.logger.Warn("GitHub API rate limit low",
			interfaces.F("remaining", remaining),
			interfaces.F("reset", rateLimitReset(resp)),
		)
	}

	return nil
}

// nextPageURL extracts the rel="next" target of a Link header
func nextPageURL(link string) string {
	for _, part := range strings.Split(link, ",") {
		segments := strings.Split(part, ";")
		if len(segments) < 2 {
			continue
		}
		target := strings.TrimSpace(segments[0])
		if !strings.HasPrefix(target, "<") || !strings.HasSuffix(target, ">") {
			continue
		}
		for _, param := range segments[1:] {
			if strings.TrimSpace(param) == `rel="next"` {
				return strings.TrimSuffix(strings.TrimPrefix(target, "<"), ">")
			}
		}
	}
	return ""
}

// getJSON issues a GET against endpoint and decodes a 200 response into out.
// It returns the next page URL advertised by the Link header, if any.
func (g *HTTPGitHubGateway) getJSON(ctx context.Context, endpoint string, out interface{}) (string, error) {
	var next string

	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("failed to create request: %w", err))
			}

			if g.token != "" {
				req.Header.Set("Authorization", "Bearer "+g.token)
			}
			req.Header.Set("Accept", "application/vnd.github+json")
			req.Header.Set("User-Agent", g.userAgent)

			resp, err := g.client.Do(req)
			if err != nil {
				if ctx.Err() != nil {
					return retry.Unrecoverable(err)
				}
				return err
			}
			//nolint:errcheck // Defer close on HTTP response body
			defer resp.Body.Close()

			if err := g.checkRateLimit(resp); err != nil {
				return retry.Unrecoverable(err)
			}

			switch {
			case resp.StatusCode == http.StatusOK:
			case resp.StatusCode == http.StatusNotFound:
				return retry.Unrecoverable(fmt.Errorf("%s: %w", strings.TrimPrefix(endpoint, g.baseURL), ErrNotFound))
			case isRetryableError(resp.StatusCode):
				return fmt.Errorf("HTTP %d", resp.StatusCode)
			default:
				bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
				if err != nil {
					return retry.Unrecoverable(fmt.Errorf("HTTP %d: failed to read error response", resp.StatusCode))
				}
				return retry.Unrecoverable(fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(bodyBytes)))
			}

			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return retry.Unrecoverable(fmt.Errorf("failed to decode response: %w", err))
			}
			next = nextPageURL(resp.Header.Get("Link"))
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(g.attempts),
		retry.Delay(g.delay),
		retry.MaxDelay(maxBackoff),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			g.logger.Debug("Retrying GitHub API request",
				interfaces.F("url", endpoint),
				interfaces.F("attempt", n+1),
				interfaces.F("error", err),
			)
		}),
	)

	return next, err
}

// githubRelease represents the GitHub API release format
type githubRelease struct {
	ID          int64  `json:"id,omitempty"`
	TagName     string `json:"tag_name"`
	Name        string `json:"name"`
	Draft       bool   `json:"draft"`
	Prerelease  bool   `json:"prerelease"`
	PublishedAt string `json:"published_at,omitempty"`
	HTMLURL     string `json:"html_url,omitempty"`
	TarballURL  string `json:"tarball_url,omitempty"`
}

func (r githubRelease) toGateway() *gateways.GitHubRelease {
	return &gateways.GitHubRelease{
		ID:          r.ID,
		TagName:     r.TagName,
		Name:        r.Name,
		Draft:       r.Draft,
		Prerelease:  r.Prerelease,
		PublishedAt: r.PublishedAt,
		HTMLURL:     r.HTMLURL,
		TarballURL:  r.TarballURL,
	}
}

// githubTag represents the GitHub API tag format
type githubTag struct {
	Name       string `json:"name"`
	TarballURL string `json:"tarball_url"`
}

// GetLatestRelease retrieves the latest published, non-draft, non-prerelease release
func (g *HTTPGitHubGateway) GetLatestRelease(ctx context.Context, owner, repo string) (*gateways.GitHubRelease, error) {
	var result githubRelease
	endpoint := fmt.Sprintf("%s/repos/%s/%s/releases/latest", g.baseURL, owner, repo)
	if _, err := g.getJSON(ctx, endpoint, &result); err != nil {
		return nil, fmt.Errorf("failed to get latest release of %s/%s: %w", owner, repo, err)
	}
	return result.toGateway(), nil
}

// ListTags lists repository tags as returned by the API (most recent first),
// following Link pagination for up to maxTagPages pages
func (g *HTTPGitHubGateway) ListTags(ctx context.Context, owner, repo string) ([]*gateways.GitHubTag, error) {
	var tags []*gateways.GitHubTag

	endpoint := fmt.Sprintf("%s/repos/%s/%s/tags?per_page=%d", g.baseURL, owner, repo, tagsPerPage)
	for page := 1; endpoint != ""; page++ {
		if page > maxTagPages {
			g.logger.Warn("Tag listing truncated",
				interfaces.F("repo", owner+"/"+repo),
				interfaces.F("tags", len(tags)),
			)
			break
		}

		var results []githubTag
		next, err := g.getJSON(ctx, endpoint, &results)
		if err != nil {
			return nil, fmt.Errorf("failed to list tags of %s/%s: %w", owner, repo, err)
		}
		for _, t := range results {
			tags = append(tags, &gateways.GitHubTag{Name: t.Name, TarballURL: t.TarballURL})
		}
		endpoint = next
	}

	return tags, nil
}
