// Package yaml provides YAML-based formula definition parsing.
package yaml

import (
	"fmt"
	"os"

	"github.com/zoomio/formulary/internal/domain/entities"
	"gopkg.in/yaml.v3"
)

// yamlFormula represents the raw YAML structure
type yamlFormula struct {
	Name         string           `yaml:"name"`
	Description  string           `yaml:"description"`
	Homepage     string           `yaml:"homepage"`
	Source       yamlSource       `yaml:"source"`
	Version      yamlVersion      `yaml:"version"`
	Dependencies []yamlDependency `yaml:"dependencies"`
	Install      yamlInstall      `yaml:"install"`
	Test         yamlTest         `yaml:"test"`
}

type yamlSource struct {
	URL string `yaml:"url"`
}

type yamlVersion struct {
	Source          string `yaml:"source"`
	ExcludePatterns string `yaml:"exclude_patterns"`
	Cleanup         string `yaml:"cleanup"`
}

type yamlDependency struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`
}

type yamlInstall struct {
	GOOS       string   `yaml:"goos"`
	GOARCH     string   `yaml:"goarch"`
	Entrypoint string   `yaml:"entrypoint"`
	Command    []string `yaml:"command"`
}

type yamlTest struct {
	Command []string `yaml:"command"`
}

// FormulaParser parses YAML formula definitions
type FormulaParser struct{}

// NewFormulaParser creates a new YAML parser
func NewFormulaParser() *FormulaParser {
	return &FormulaParser{}
}

// ParseFile parses a YAML definition file into a Formula entity
func (p *FormulaParser) ParseFile(filePath string) (*entities.Formula, error) {
	//nolint:gosec // G304: filePath is a definition path from the repository
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}

	return p.Parse(data)
}

// Parse parses YAML bytes into a Formula entity
func (p *FormulaParser) Parse(data []byte) (*entities.Formula, error) {
	var yf yamlFormula
	if err := yaml.Unmarshal(data, &yf); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if yf.Name == "" {
		return nil, fmt.Errorf("formula must have a name")
	}

	return &entities.Formula{
		Name:        yf.Name,
		Description: yf.Description,
		Homepage:    yf.Homepage,
		Source:      entities.SourceConfig{URL: yf.Source.URL},
		Version: entities.VersionConfig{
			Source:          yf.Version.Source,
			ExcludePatterns: yf.Version.ExcludePatterns,
			Cleanup:         yf.Version.Cleanup,
		},
		Dependencies: convertDependencies(yf.Dependencies),
		Install: entities.InstallStep{
			GOOS:       yf.Install.GOOS,
			GOARCH:     yf.Install.GOARCH,
			Entrypoint: yf.Install.Entrypoint,
			Command:    yf.Install.Command,
		},
		Test: entities.TestStep{Command: yf.Test.Command},
	}, nil
}

func convertDependencies(yd []yamlDependency) []entities.Dependency {
	if len(yd) == 0 {
		return nil
	}
	deps := make([]entities.Dependency, len(yd))
	for i, d := range yd {
		deps[i] = entities.Dependency{Name: d.Name, Kind: d.Kind}
	}
	return deps
}
