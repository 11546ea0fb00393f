package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/zoomio/formulary/internal/domain/entities"
	"github.com/zoomio/formulary/internal/domain/interfaces"
	"github.com/zoomio/formulary/internal/domain/interfaces/gateways"
)

// ErrDigestMismatch is returned when the declared sha256 does not match the archive
var ErrDigestMismatch = errors.New("sha256 does not match the source archive")

// VerifyResult holds what was checked for a rendered formula
type VerifyResult struct {
	Formula *entities.RenderedFormula
	Archive *entities.Archive // nil when verified offline
}

// Verifier performs the checks a package manager would do at install time:
// the formula must parse and its archive must hash to the declared digest
type Verifier struct {
	inspector *Inspector
	fetcher   gateways.ArchiveFetcher
	logger    interfaces.Logger
}

// NewVerifier creates a new verifier. A nil fetcher restricts it to offline checks.
func NewVerifier(fetcher gateways.ArchiveFetcher, logger interfaces.Logger) *Verifier {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &Verifier{
		inspector: NewInspector(),
		fetcher:   fetcher,
		logger:    logger,
	}
}

// Verify inspects text and, unless offline, downloads the declared url and
// compares its digest with the declared sha256
func (v *Verifier) Verify(ctx context.Context, text string, offline bool) (*VerifyResult, error) {
	rendered, err := v.inspector.Inspect(text)
	if err != nil {
		return nil, err
	}

	result := &VerifyResult{Formula: rendered}
	if offline || v.fetcher == nil {
		v.logger.Debug("Skipping archive download", interfaces.F("url", rendered.URL))
		return result, nil
	}

	archive, err := v.fetcher.FetchArchive(ctx, rendered.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", rendered.URL, err)
	}
	result.Archive = archive

	if archive.SHA256 != rendered.SHA256 {
		return nil, fmt.Errorf("%w: declared %s, archive %s", ErrDigestMismatch, rendered.SHA256, archive.SHA256)
	}

	v.logger.Info("Formula verified",
		interfaces.F("class", rendered.ClassName),
		interfaces.F("url", rendered.URL),
	)

	return result, nil
}
