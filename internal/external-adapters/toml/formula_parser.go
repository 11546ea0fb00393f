// Package toml provides TOML-based formula definition parsing.
package toml

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/zoomio/formulary/internal/domain/entities"
)

type tomlFormula struct {
	Name         string           `toml:"name"`
	Description  string           `toml:"description"`
	Homepage     string           `toml:"homepage"`
	Source       tomlSource       `toml:"source"`
	Version      tomlVersion      `toml:"version"`
	Dependencies []tomlDependency `toml:"dependencies"`
	Install      tomlInstall      `toml:"install"`
	Test         tomlTest         `toml:"test"`
}

type tomlSource struct {
	URL string `toml:"url"`
}

type tomlVersion struct {
	Source          string `toml:"source"`
	ExcludePatterns string `toml:"exclude_patterns"`
	Cleanup         string `toml:"cleanup"`
}

type tomlDependency struct {
	Name string `toml:"name"`
	Kind string `toml:"kind"`
}

type tomlInstall struct {
	GOOS       string   `toml:"goos"`
	GOARCH     string   `toml:"goarch"`
	Entrypoint string   `toml:"entrypoint"`
	Command    []string `toml:"command"`
}

type tomlTest struct {
	Command []string `toml:"command"`
}

// FormulaParser parses TOML formula definitions
type FormulaParser struct{}

// NewFormulaParser creates a new TOML parser
func NewFormulaParser() *FormulaParser {
	return &FormulaParser{}
}

// ParseFile parses a TOML definition file into a Formula entity
func (p *FormulaParser) ParseFile(filePath string) (*entities.Formula, error) {
	//nolint:gosec // G304: filePath is a definition path from the repository
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}

	return p.Parse(data)
}

// Parse parses TOML bytes into a Formula entity
func (p *FormulaParser) Parse(data []byte) (*entities.Formula, error) {
	var tf tomlFormula
	if err := toml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	if tf.Name == "" {
		return nil, fmt.Errorf("formula must have a name")
	}

	var deps []entities.Dependency
	for _, d := range tf.Dependencies {
		deps = append(deps, entities.Dependency{Name: d.Name, Kind: d.Kind})
	}

	return &entities.Formula{
		Name:        tf.Name,
		Description: tf.Description,
		Homepage:    tf.Homepage,
		Source:      entities.SourceConfig{URL: tf.Source.URL},
		Version: entities.VersionConfig{
			Source:          tf.Version.Source,
			ExcludePatterns: tf.Version.ExcludePatterns,
			Cleanup:         tf.Version.Cleanup,
		},
		Dependencies: deps,
		Install: entities.InstallStep{
			GOOS:       tf.Install.GOOS,
			GOARCH:     tf.Install.GOARCH,
			Entrypoint: tf.Install.Entrypoint,
			Command:    tf.Install.Command,
		},
		Test: entities.TestStep{Command: tf.Test.Command},
	}, nil
}
