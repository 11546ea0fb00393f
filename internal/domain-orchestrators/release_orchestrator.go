// Package orchestrators coordinates complex workflows across multiple domain services.
package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zoomio/formulary/internal/domain/entities"
	"github.com/zoomio/formulary/internal/domain/interfaces"
	"github.com/zoomio/formulary/internal/domain/interfaces/gateways"
	"github.com/zoomio/formulary/internal/domain/interfaces/repositories"
	"github.com/zoomio/formulary/internal/domain/services"
)

// ErrSignerNotConfigured is returned when signing is requested without a signing key
var ErrSignerNotConfigured = errors.New("signing requested but no signing key configured")

// VersionResolver interface for resolving the version to release
type VersionResolver interface {
	ResolveVersion(ctx context.Context, def *entities.Formula, requested string) (string, error)
}

// Publisher interface for writing a rendered formula to its destination
type Publisher interface {
	Publish(ctx context.Context, name string, content []byte) (*entities.Publication, error)
}

// Signer interface for producing a detached signature next to a published file
type Signer interface {
	SignFile(path string) (string, error)
}

// ReleaseOrchestrator coordinates the formula release workflow
type ReleaseOrchestrator struct {
	repo      repositories.FormulaRepository
	versions  VersionResolver
	fetcher   gateways.ArchiveFetcher
	renderer  *services.RenderService
	publisher Publisher
	signer    Signer
	logger    interfaces.Logger
}

// ReleaseOrchestratorConfig holds the optional collaborators of the orchestrator
type ReleaseOrchestratorConfig struct {
	Publisher Publisher // nil restricts releases to dry runs
	Signer    Signer
	Logger    interfaces.Logger
}

// NewReleaseOrchestrator creates a new release orchestrator
func NewReleaseOrchestrator(
	repo repositories.FormulaRepository,
	versions VersionResolver,
	fetcher gateways.ArchiveFetcher,
	renderer *services.RenderService,
	config ReleaseOrchestratorConfig,
) *ReleaseOrchestrator {
	logger := config.Logger
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}

	return &ReleaseOrchestrator{
		repo:      repo,
		versions:  versions,
		fetcher:   fetcher,
		renderer:  renderer,
		publisher: config.Publisher,
		signer:    config.Signer,
		logger:    logger,
	}
}

// ReleaseRequest selects what to release
type ReleaseRequest struct {
	Name    string
	Version string // empty or "latest" resolves from the formula's version source
	DryRun  bool
	Sign    bool
}

// ReleaseResult contains the result of a release operation
type ReleaseResult struct {
	Formula       *entities.Formula
	Version       string
	Archive       *entities.Archive
	Rendered      *entities.RenderedFormula
	Publication   *entities.Publication // nil on dry runs
	SignaturePath string
	Duration      time.Duration
}

// Release renders the named formula for a version and publishes it
func (o *ReleaseOrchestrator) Release(ctx context.Context, req ReleaseRequest) (*ReleaseResult, error) {
	startTime := time.Now()
	result := &ReleaseResult{}

	if !req.DryRun && o.publisher == nil {
		return nil, errors.New("no tap directory configured, use --dry-run or set tap_dir")
	}
	if req.Sign && !req.DryRun && o.signer == nil {
		return nil, ErrSignerNotConfigured
	}

	// Step 1: Load definition and template
	def, err := o.repo.GetFormula(ctx, req.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to load formula: %w", err)
	}
	result.Formula = def

	tmpl, err := o.repo.GetTemplate(ctx, req.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to load template: %w", err)
	}

	// Step 2: Resolve version
	version, err := o.versions.ResolveVersion(ctx, def, req.Version)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve version: %w", err)
	}
	if err := o.renderer.ValidateVersion(version); err != nil {
		return nil, fmt.Errorf("failed to resolve version: %w", err)
	}
	result.Version = version
	o.logger.Info("Releasing formula", interfaces.F("formula", def.Name), interfaces.F("version", version))

	// Step 3: Fetch archive and compute digest
	archive, err := o.fetcher.FetchArchive(ctx, def.SourceURL(version))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch archive: %w", err)
	}
	result.Archive = archive

	// Step 4: Render
	rendered, err := o.renderer.Render(tmpl, version, archive.SHA256)
	if err != nil {
		return nil, fmt.Errorf("failed to render formula: %w", err)
	}
	result.Rendered = rendered

	// Step 5: Cross-check what a package manager would download
	if rendered.URL != archive.URL {
		return nil, fmt.Errorf("failed to verify formula: url %s does not match fetched archive %s", rendered.URL, archive.URL)
	}
	if rendered.SHA256 != archive.SHA256 {
		return nil, fmt.Errorf("failed to verify formula: %w", services.ErrDigestMismatch)
	}

	if req.DryRun {
		result.Duration = time.Since(startTime)
		o.logger.Info("Dry run, not publishing", interfaces.F("formula", def.Name))
		return result, nil
	}

	// Step 6: Publish
	pub, err := o.publisher.Publish(ctx, def.Name, []byte(rendered.Text))
	if err != nil {
		return nil, fmt.Errorf("failed to publish formula: %w", err)
	}
	result.Publication = pub

	// Step 7: Sign
	if req.Sign {
		sigPath, err := o.signer.SignFile(pub.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to sign formula: %w", err)
		}
		result.SignaturePath = sigPath
	}

	result.Duration = time.Since(startTime)
	return result, nil
}

// GetReleaseSummary returns a human-readable summary of the release
func (r *ReleaseResult) GetReleaseSummary() string {
	summary := fmt.Sprintf(`Formula: %s
Version: %s
URL: %s
SHA256: %s`,
		r.Formula.Name,
		r.Version,
		r.Rendered.URL,
		r.Rendered.SHA256,
	)

	switch {
	case r.Publication == nil:
		summary += "\nPublished: no (dry run)"
	case r.Publication.Changed:
		summary += fmt.Sprintf("\nPublished: %s", r.Publication.Path)
	default:
		summary += fmt.Sprintf("\nPublished: %s (unchanged)", r.Publication.Path)
	}

	if r.SignaturePath != "" {
		summary += fmt.Sprintf("\nSignature: %s", r.SignaturePath)
	}

	return summary + fmt.Sprintf("\nTotal: %v", r.Duration.Round(time.Millisecond))
}
