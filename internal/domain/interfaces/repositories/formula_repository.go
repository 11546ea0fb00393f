// Package repositories defines interfaces for data access layers.
package repositories

import (
	"context"

	"github.com/zoomio/formulary/internal/domain/entities"
)

// FormulaRepository defines the interface for accessing formula definitions and templates
type FormulaRepository interface {
	// GetFormula retrieves a formula definition by name
	GetFormula(ctx context.Context, name string) (*entities.Formula, error)

	// ListFormulas returns all available formula definitions
	ListFormulas(ctx context.Context) ([]*entities.Formula, error)

	// GetTemplate returns the unrendered template for a formula
	GetTemplate(ctx context.Context, name string) (*entities.Template, error)
}
