package toml

import (
	"testing"
)

func TestFormulaParser_Parse_Valid(t *testing.T) {
	data := []byte(`name = "tagify"
description = "Produces a set of tags from given source."
homepage = "https://www.zoomio.org/tagify"

[source]
url = "https://github.com/zoomio/tagify/archive/${VERSION}.tar.gz"

[version]
source = "github-tag:zoomio/tagify"

[[dependencies]]
name = "go"
kind = "build"

[install]
goos = "darwin"
goarch = "amd64"
entrypoint = "cmd/cli/cli.go"
`)

	formula, err := NewFormulaParser().Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if formula.Name != "tagify" {
		t.Errorf("Name = %v, want tagify", formula.Name)
	}
	if formula.Version.Source != "github-tag:zoomio/tagify" {
		t.Errorf("Version.Source = %v", formula.Version.Source)
	}
	if len(formula.Dependencies) != 1 || formula.Dependencies[0].Kind != "build" {
		t.Errorf("Dependencies = %+v", formula.Dependencies)
	}
	if formula.Install.Entrypoint != "cmd/cli/cli.go" {
		t.Errorf("Install.Entrypoint = %v", formula.Install.Entrypoint)
	}
}

func TestFormulaParser_Parse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"missing name", `description = "x"`},
		{"invalid toml", `name = "tagify`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewFormulaParser().Parse([]byte(tt.data)); err == nil {
				t.Error("Parse() should return error")
			}
		})
	}
}
