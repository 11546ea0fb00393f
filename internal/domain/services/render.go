package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zoomio/formulary/internal/domain/entities"
	"github.com/zoomio/formulary/internal/domain/interfaces"
)

// Render errors
var (
	ErrEmptyVersion        = errors.New("version must not be empty")
	ErrInvalidVersion      = errors.New("invalid version")
	ErrInvalidDigest       = errors.New("invalid sha256 digest")
	ErrResidualPlaceholder = errors.New("unsubstituted placeholder in rendered formula")
)

// renderInput holds the two substitution values
type renderInput struct {
	Version string `name:"version" validate:"required,release_version"`
	SHA     string `name:"sha256" validate:"required,sha256_hex"`
}

// RenderService renders formula templates with a version and a digest
type RenderService struct {
	validator *Validator
	inspector *Inspector
	logger    interfaces.Logger
}

// NewRenderService creates a new render service
func NewRenderService(validator *Validator, logger interfaces.Logger) *RenderService {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &RenderService{
		validator: validator,
		inspector: NewInspector(),
		logger:    logger,
	}
}

// Render validates the version and digest, substitutes them into the
// template and inspects the result. The template itself is never modified.
func (s *RenderService) Render(tmpl *entities.Template, version, sha string) (*entities.RenderedFormula, error) {
	if err := s.ValidateInputs(version, sha); err != nil {
		return nil, err
	}

	text := tmpl.Render(version, sha)
	if residual := ResidualPlaceholders(text); len(residual) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrResidualPlaceholder, strings.Join(residual, ", "))
	}

	rendered, err := s.inspector.Inspect(text)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Rendered formula",
		interfaces.F("formula", tmpl.Name),
		interfaces.F("version", version),
		interfaces.F("url", rendered.URL),
	)

	return rendered, nil
}

// ValidateInputs checks the version and digest before any substitution happens
func (s *RenderService) ValidateInputs(version, sha string) error {
	err := s.validator.Struct(renderInput{Version: version, SHA: sha})
	if err == nil {
		return nil
	}

	var verr *ValidationError
	if !errors.As(err, &verr) {
		return err
	}

	switch verr.Tags["version"] {
	case "required":
		return ErrEmptyVersion
	case "":
	default:
		return fmt.Errorf("%w %q: %s", ErrInvalidVersion, version, verr.Error())
	}

	return fmt.Errorf("%w %q: %s", ErrInvalidDigest, sha, verr.Error())
}

// ValidateVersion checks a version on its own, before the digest is known
func (s *RenderService) ValidateVersion(version string) error {
	if version == "" {
		return ErrEmptyVersion
	}
	if !validVersion(version) {
		return fmt.Errorf("%w %q", ErrInvalidVersion, version)
	}
	return nil
}
