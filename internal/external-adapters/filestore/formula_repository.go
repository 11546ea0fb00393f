// Package filestore implements the formula repository on top of a definitions directory.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zoomio/formulary/internal/domain/entities"
	"github.com/zoomio/formulary/internal/domain/interfaces"
	"github.com/zoomio/formulary/internal/external-adapters/toml"
	"github.com/zoomio/formulary/internal/external-adapters/yaml"
)

// TemplateSuffix marks a raw, hand-written formula template
const TemplateSuffix = ".template.rb"

// ErrFormulaNotFound is returned when no definition or template exists for a name
var ErrFormulaNotFound = errors.New("formula not found")

// TemplateWriter lays a definition out as a template
type TemplateWriter interface {
	Write(formula *entities.Formula) (*entities.Template, error)
}

type parser interface {
	ParseFile(filePath string) (*entities.Formula, error)
}

// FormulaRepository implements repositories.FormulaRepository using definition files.
// Definitions are <name>.yml, <name>.yaml or <name>.toml; <name>.template.rb
// overrides the generated template.
type FormulaRepository struct {
	dir     string
	parsers map[string]parser
	writer  TemplateWriter
	logger  interfaces.Logger
}

// NewFormulaRepository creates a new file-backed formula repository
func NewFormulaRepository(dir string, writer TemplateWriter, logger interfaces.Logger) *FormulaRepository {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	yp := yaml.NewFormulaParser()
	return &FormulaRepository{
		dir: dir,
		parsers: map[string]parser{
			".yml":  yp,
			".yaml": yp,
			".toml": toml.NewFormulaParser(),
		},
		writer: writer,
		logger: logger,
	}
}

// GetFormula retrieves a formula definition by name
func (r *FormulaRepository) GetFormula(_ context.Context, name string) (*entities.Formula, error) {
	for _, ext := range []string{".yml", ".yaml", ".toml"} {
		filePath := filepath.Join(r.dir, name+ext)
		if _, err := os.Stat(filePath); err != nil {
			continue
		}
		return r.parsers[ext].ParseFile(filePath)
	}

	return nil, fmt.Errorf("%w: %s", ErrFormulaNotFound, name)
}

// ListFormulas returns all available formula definitions sorted by name
func (r *FormulaRepository) ListFormulas(_ context.Context) ([]*entities.Formula, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read definitions directory: %w", err)
	}

	formulas := make([]*entities.Formula, 0)
	for _, entry := range entries {
		if entry.IsDir() || strings.HasSuffix(entry.Name(), TemplateSuffix) {
			continue
		}

		p, ok := r.parsers[filepath.Ext(entry.Name())]
		if !ok {
			continue
		}

		def, err := p.ParseFile(filepath.Join(r.dir, entry.Name()))
		if err != nil {
			// Keep going so one broken definition does not hide the others
			r.logger.Warn("Skipping unparsable definition",
				interfaces.F("file", entry.Name()),
				interfaces.F("error", err),
			)
			continue
		}

		formulas = append(formulas, def)
	}

	sort.Slice(formulas, func(i, j int) bool { return formulas[i].Name < formulas[j].Name })
	return formulas, nil
}

// GetTemplate returns the raw template file when present, otherwise the
// template written from the definition
func (r *FormulaRepository) GetTemplate(ctx context.Context, name string) (*entities.Template, error) {
	rawPath := filepath.Join(r.dir, name+TemplateSuffix)
	//nolint:gosec // G304: rawPath is built from the definitions directory
	data, err := os.ReadFile(rawPath)
	if err == nil {
		r.logger.Debug("Using raw template", interfaces.F("path", rawPath))
		return &entities.Template{Name: name, Text: string(data)}, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read template %s: %w", rawPath, err)
	}

	def, err := r.GetFormula(ctx, name)
	if err != nil {
		return nil, err
	}

	return r.writer.Write(def)
}
