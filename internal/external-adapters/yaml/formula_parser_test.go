package yaml

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFormulaParser_Parse_Valid(t *testing.T) {
	parser := NewFormulaParser()
	yamlData := []byte(`name: tagify
description: Produces a set of tags from given source.
homepage: https://www.zoomio.org/tagify
source:
  url: https://github.com/zoomio/tagify/archive/${VERSION}.tar.gz
version:
  source: github-release:zoomio/tagify
  exclude_patterns: '(alpha|beta|rc)'
dependencies:
  - name: go
    kind: build
install:
  goos: darwin
  goarch: amd64
  entrypoint: cmd/cli/cli.go
test:
  command: [go, test, ./...]
`)

	formula, err := parser.Parse(yamlData)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if formula.Name != "tagify" {
		t.Errorf("Name = %v, want tagify", formula.Name)
	}
	if formula.Source.URL != "https://github.com/zoomio/tagify/archive/${VERSION}.tar.gz" {
		t.Errorf("Source.URL = %v", formula.Source.URL)
	}
	if formula.Version.Source != "github-release:zoomio/tagify" {
		t.Errorf("Version.Source = %v, want github-release:zoomio/tagify", formula.Version.Source)
	}
	if len(formula.Dependencies) != 1 || formula.Dependencies[0].Name != "go" || formula.Dependencies[0].Kind != "build" {
		t.Errorf("Dependencies = %+v, want [{go build}]", formula.Dependencies)
	}
	if formula.Install.GOOS != "darwin" || formula.Install.GOARCH != "amd64" {
		t.Errorf("Install = %+v", formula.Install)
	}
	if got := formula.Test.Args(); len(got) != 3 || got[2] != "./..." {
		t.Errorf("Test.Args() = %v", got)
	}
}

func TestFormulaParser_Parse_MissingName(t *testing.T) {
	parser := NewFormulaParser()

	_, err := parser.Parse([]byte("description: Test formula\n"))
	if err == nil {
		t.Fatal("Parse() should return error for missing name")
	}
	if err.Error() != "formula must have a name" {
		t.Errorf("Parse() error = %v, want 'formula must have a name'", err)
	}
}

func TestFormulaParser_Parse_InvalidYAML(t *testing.T) {
	parser := NewFormulaParser()

	_, err := parser.Parse([]byte("name: test\n  invalid: [broken yaml\n"))
	if err == nil {
		t.Error("Parse() should return error for invalid YAML")
	}
}

func TestFormulaParser_ParseFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "tagify.yml")
	if err := os.WriteFile(path, []byte("name: tagify\n"), 0600); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	formula, err := NewFormulaParser().ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if formula.Dependencies != nil {
		t.Errorf("Dependencies = %v, want nil", formula.Dependencies)
	}

	if _, err := NewFormulaParser().ParseFile(filepath.Join(tmpDir, "missing.yml")); err == nil {
		t.Error("ParseFile() should fail for a missing file")
	}
}
