package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zoomio/formulary/internal/domain/entities"
)

func TestTemplateWriter_Write_Tagify(t *testing.T) {
	w := NewTemplateWriter(newTestValidator(t))

	tmpl, err := w.Write(tagifyFormula())
	require.NoError(t, err)

	assert.Equal(t, "tagify", tmpl.Name)
	assert.Equal(t, tagifyCanonic, tmpl.Text)
}

func TestTemplateWriter_Write_Variants(t *testing.T) {
	w := NewTemplateWriter(newTestValidator(t))

	f := tagifyFormula()
	f.Name = "go-task"
	f.Description = `Runs "tasks" #{fast}`
	f.Dependencies = nil
	f.Install = entities.InstallStep{Command: []string{"make", "install", "PREFIX=#{prefix}"}}
	f.Test = entities.TestStep{Command: []string{"bin/task", "--version"}}

	tmpl, err := w.Write(f)
	require.NoError(t, err)

	want := `class GoTask < Formula
  desc "Runs \"tasks\" \#{fast}"
  homepage "https://www.zoomio.org/tagify"
  url "https://github.com/zoomio/tagify/archive/${VERSION}.tar.gz"
  sha256 "${SHA}"
  ` + `
  def install
    system "make", "install", "PREFIX=\#{prefix}"
  end
  ` + `
  test do
    system "bin/task", "--version"
  end
end
`
	assert.Equal(t, want, tmpl.Text)
}

func TestTemplateWriter_Write_Invalid(t *testing.T) {
	w := NewTemplateWriter(newTestValidator(t))

	tests := []struct {
		name   string
		mutate func(f *entities.Formula)
		field  string
	}{
		{"missing name", func(f *entities.Formula) { f.Name = "" }, "Name"},
		{"uppercase name", func(f *entities.Formula) { f.Name = "Tagify" }, "Name"},
		{"missing description", func(f *entities.Formula) { f.Description = "" }, "Description"},
		{"bad homepage", func(f *entities.Formula) { f.Homepage = "zoomio.org" }, "Homepage"},
		{"url without version", func(f *entities.Formula) { f.Source.URL = "https://example.com/tagify.tar.gz" }, "URL"},
		{"unknown dependency kind", func(f *entities.Formula) { f.Dependencies[0].Kind = "runtime" }, "Kind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := tagifyFormula()
			tt.mutate(f)

			_, err := w.Write(f)
			require.Error(t, err)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Tags, tt.field)
		})
	}
}

func TestEntities_InstallArgs(t *testing.T) {
	assert.Equal(t,
		[]string{"env", "GOOS=darwin", "GOARCH=amd64", "go", "build", "*std_go_args", "cmd/cli/cli.go"},
		tagifyFormula().Install.Args())
	assert.Equal(t, []string{"go", "build", "*std_go_args"}, entities.InstallStep{}.Args())
	assert.Equal(t, []string{"go", "test", "./..."}, entities.TestStep{}.Args())
}
