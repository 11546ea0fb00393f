package gateways

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"time"

	"github.com/adrg/xdg"
	"github.com/avast/retry-go/v4"

	"github.com/zoomio/formulary/internal/domain/entities"
	"github.com/zoomio/formulary/internal/domain/interfaces"
)

const (
	// Max retries for transient errors
	maxRetries = 3
	// Initial backoff duration
	initialBackoff = 1 * time.Second
	// Max backoff duration
	maxBackoff = 32 * time.Second

	userAgent = "formulary/1.0"
)

var invalidFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// DefaultCacheDir is where source archives are kept unless configured otherwise
func DefaultCacheDir() string {
	return filepath.Join(xdg.CacheHome, "formulary", "archives")
}

// DownloaderConfig holds configuration for the downloader
type DownloaderConfig struct {
	CacheDir      string
	Timeout       time.Duration
	RetryAttempts uint
	RetryDelay    time.Duration
	HTTPClient    *http.Client
	Logger        interfaces.Logger
}

// Downloader fetches source archives and hashes them on the way to disk
type Downloader struct {
	httpClient *http.Client
	cacheDir   string
	attempts   uint
	delay      time.Duration
	logger     interfaces.Logger
}

// NewDownloader creates a new downloader
func NewDownloader(cfg DownloaderConfig) *Downloader {
	d := &Downloader{
		httpClient: cfg.HTTPClient,
		cacheDir:   cfg.CacheDir,
		attempts:   cfg.RetryAttempts,
		delay:      cfg.RetryDelay,
		logger:     cfg.Logger,
	}

	if d.httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 5 * time.Minute // Long timeout for large downloads
		}
		d.httpClient = &http.Client{Timeout: timeout}
	}
	if d.cacheDir == "" {
		d.cacheDir = DefaultCacheDir()
	}
	if d.attempts == 0 {
		d.attempts = maxRetries + 1
	}
	if d.delay == 0 {
		d.delay = initialBackoff
	}
	if d.logger == nil {
		d.logger = &interfaces.NoOpLogger{}
	}

	return d
}

// FetchArchive downloads the archive at url into the cache directory and returns its digest
func (d *Downloader) FetchArchive(ctx context.Context, archiveURL string) (*entities.Archive, error) {
	if err := os.MkdirAll(d.cacheDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	dest := filepath.Join(d.cacheDir, cacheKey(archiveURL)+"-"+sanitizeFilename(archiveURL))

	var archive *entities.Archive
	err := retry.Do(
		func() error {
			var err error
			archive, err = d.downloadFile(ctx, archiveURL, dest)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(d.attempts),
		retry.Delay(d.delay),
		retry.MaxDelay(maxBackoff),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			d.logger.Warn("Retrying archive download",
				interfaces.F("url", archiveURL),
				interfaces.F("attempt", n+1),
				interfaces.F("error", err),
			)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}

	d.logger.Info("Downloaded archive",
		interfaces.F("url", archiveURL),
		interfaces.F("bytes", archive.Size),
		interfaces.F("sha256", archive.SHA256),
	)

	return archive, nil
}

// downloadFile downloads url to dest via a temp file, hashing while writing
func (d *Downloader) downloadFile(ctx context.Context, archiveURL, dest string) (*entities.Archive, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, archiveURL, nil)
	if err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, retry.Unrecoverable(err)
		}
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		statusErr := fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
		if isRetryableError(resp.StatusCode) {
			return nil, statusErr
		}
		return nil, retry.Unrecoverable(statusErr)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("failed to create file: %w", err))
	}
	tmpPath := tmp.Name()
	defer func() {
		// No-op once the rename succeeded
		_ = os.Remove(tmpPath)
	}()

	h := sha256.New()
	written, err := io.Copy(io.MultiWriter(tmp, h), resp.Body)
	if err != nil {
		_ = tmp.Close()
		return nil, fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("failed to move download into place: %w", err))
	}

	return &entities.Archive{
		URL:    archiveURL,
		Path:   dest,
		Size:   written,
		SHA256: hex.EncodeToString(h.Sum(nil)),
	}, nil
}

// isRetryableError checks if an HTTP status code is retryable: 429 and any 5xx
func isRetryableError(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || statusCode >= http.StatusInternalServerError
}

func cacheKey(archiveURL string) string {
	sum := sha256.Sum256([]byte(archiveURL))
	return hex.EncodeToString(sum[:6])
}

// sanitizeFilename derives a safe local filename from a URL
func sanitizeFilename(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Path == "" {
		return "download"
	}

	base := path.Base(u.Path)
	if base == "/" || base == "." || base == "" {
		return "download"
	}

	return invalidFilenameChars.ReplaceAllString(base, "_")
}
