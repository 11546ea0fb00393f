package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zoomio/formulary/internal/domain/entities"
)

const (
	emptyDigest   = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	tagifyDesc    = "Produces a set of tags from given source. Source can be either an HTML page, Markdown document or a plain text. Support English and Russian words."
	tagifyCanonic = `class Tagify < Formula
  desc "Produces a set of tags from given source. Source can be either an HTML page, Markdown document or a plain text. Support English and Russian words."
  homepage "https://www.zoomio.org/tagify"
  url "https://github.com/zoomio/tagify/archive/${VERSION}.tar.gz"
  sha256 "${SHA}"
  ` + `
  depends_on "go" => :build
  ` + `
  def install
    system "env", "GOOS=darwin", "GOARCH=amd64", "go", "build", *std_go_args, "cmd/cli/cli.go"
  end
  ` + `
  test do
    system "go", "test", "./..."
  end
end
`
)

func tagifyFormula() *entities.Formula {
	return &entities.Formula{
		Name:        "tagify",
		Description: tagifyDesc,
		Homepage:    "https://www.zoomio.org/tagify",
		Source: entities.SourceConfig{
			URL: "https://github.com/zoomio/tagify/archive/${VERSION}.tar.gz",
		},
		Version: entities.VersionConfig{Source: "github-release:zoomio/tagify"},
		Dependencies: []entities.Dependency{
			{Name: "go", Kind: "build"},
		},
		Install: entities.InstallStep{
			GOOS:       "darwin",
			GOARCH:     "amd64",
			Entrypoint: "cmd/cli/cli.go",
		},
	}
}

func tagifyTemplate() *entities.Template {
	return &entities.Template{Name: "tagify", Text: tagifyCanonic}
}

func newTestValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := NewValidator()
	require.NoError(t, err)
	return v
}
