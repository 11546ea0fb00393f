// Package tap writes rendered formulae into a Homebrew tap checkout.
package tap

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/zoomio/formulary/internal/domain/entities"
	"github.com/zoomio/formulary/internal/domain/interfaces"
)

// FormulaDir is the directory inside a tap that holds formula files
const FormulaDir = "Formula"

var formulaFileName = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// Writer publishes formula files into a tap directory
type Writer struct {
	root   string
	logger interfaces.Logger
}

// NewWriter creates a new tap writer rooted at the tap checkout
func NewWriter(root string, logger interfaces.Logger) *Writer {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &Writer{root: root, logger: logger}
}

// FormulaPath returns where the named formula lives in the tap
func (w *Writer) FormulaPath(name string) string {
	return filepath.Join(w.root, FormulaDir, name+".rb")
}

// Publish writes content to Formula/<name>.rb via a temp file and rename.
// Nothing is written when the existing file already has the same content.
func (w *Writer) Publish(ctx context.Context, name string, content []byte) (*entities.Publication, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if w.root == "" {
		return nil, errors.New("tap directory not configured")
	}
	if !formulaFileName.MatchString(name) {
		return nil, fmt.Errorf("invalid formula name %q", name)
	}

	dest := w.FormulaPath(name)

	//nolint:gosec // G304: dest is built from the configured tap and a validated name
	existing, err := os.ReadFile(dest)
	switch {
	case err == nil && bytes.Equal(existing, content):
		w.logger.Info("Formula unchanged", interfaces.F("path", dest))
		return &entities.Publication{Path: dest, Changed: false}, nil
	case err != nil && !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read %s: %w", dest, err)
	}

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+name+"-*.rb")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return nil, fmt.Errorf("failed to write formula: %w", err)
	}
	if err := tmp.Chmod(0644); err != nil {
		_ = tmp.Close()
		return nil, fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to close formula: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return nil, fmt.Errorf("failed to move formula into place: %w", err)
	}

	w.logger.Info("Published formula", interfaces.F("path", dest))
	return &entities.Publication{Path: dest, Changed: true}, nil
}
