package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	archiveBody   = "Hello, World!"
	archiveDigest = "dffd6021bb2bd5b0af676290809ec3a53191dd81c7f70a4b28688a362182986f"
	emptyDigest   = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
)

const definition = `name: tagify
description: "Produces a set of tags from given source. Source can be either an HTML page, Markdown document or a plain text. Support English and Russian words."
homepage: https://www.zoomio.org/tagify
source:
  url: SOURCE_BASE/zoomio/tagify/archive/${VERSION}.tar.gz
version:
  source: static:1.2.3
dependencies:
  - name: go
    kind: build
install:
  goos: darwin
  goarch: amd64
  entrypoint: cmd/cli/cli.go
`

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

// setup writes a tagify definition whose archive is served by a local server
func setup(t *testing.T) (defsDir string, server *httptest.Server) {
	t.Helper()
	t.Setenv("FORMULARY_CACHE_DIR", t.TempDir())
	t.Setenv("FORMULARY_TAP_DIR", "")

	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/zoomio/tagify/archive/1.2.3.tar.gz" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(archiveBody))
	}))
	t.Cleanup(server.Close)

	defsDir = t.TempDir()
	content := strings.Replace(definition, "SOURCE_BASE", server.URL, 1)
	require.NoError(t, os.WriteFile(filepath.Join(defsDir, "tagify.yml"), []byte(content), 0600))

	return defsDir, server
}

func TestTemplateCmd_MatchesCommittedTemplate(t *testing.T) {
	t.Setenv("FORMULARY_CACHE_DIR", t.TempDir())

	canonical, err := os.ReadFile(filepath.Join("..", "..", "formulas", "tagify.template.rb"))
	require.NoError(t, err)

	// Only the yml definition: the template is generated
	defsDir := t.TempDir()
	yml, err := os.ReadFile(filepath.Join("..", "..", "formulas", "tagify.yml"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(defsDir, "tagify.yml"), yml, 0600))

	out, _, err := execute(t, "template", "tagify", "--definitions-dir", defsDir)
	require.NoError(t, err)
	assert.Equal(t, string(canonical), out)

	// The committed definitions directory serves the raw template
	out, _, err = execute(t, "template", "tagify", "--definitions-dir", filepath.Join("..", "..", "formulas"))
	require.NoError(t, err)
	assert.Equal(t, string(canonical), out)
}

func TestRenderCmd(t *testing.T) {
	defsDir, _ := setup(t)

	out, _, err := execute(t, "render", "tagify", "--definitions-dir", defsDir, "--version", "1.2.3", "--sha", emptyDigest)
	require.NoError(t, err)
	assert.Contains(t, out, `/zoomio/tagify/archive/1.2.3.tar.gz"`)
	assert.Contains(t, out, `sha256 "`+emptyDigest+`"`)
	assert.NotContains(t, out, "${")

	output := filepath.Join(t.TempDir(), "tagify.rb")
	_, _, err = execute(t, "render", "tagify", "--definitions-dir", defsDir, "--version", "1.2.3", "--sha", emptyDigest, "-o", output)
	require.NoError(t, err)
	written, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, out, string(written))
}

func TestRenderCmd_Errors(t *testing.T) {
	defsDir, _ := setup(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing sha flag", []string{"--version", "1.2.3"}, "required flag"},
		{"empty version", []string{"--version", "", "--sha", emptyDigest}, "version must not be empty"},
		{"short digest", []string{"--version", "1.2.3", "--sha", "abc"}, "invalid sha256 digest"},
		{"uppercase digest", []string{"--version", "1.2.3", "--sha", strings.ToUpper(emptyDigest)}, "invalid sha256 digest"},
		{"unknown formula", []string{"--version", "1.2.3", "--sha", emptyDigest, "--definitions-dir", t.TempDir()}, "not found"},
		{"interpolating version", []string{"--version", "1.0#{`id`}", "--sha", emptyDigest}, "invalid version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"render", "tagify", "--definitions-dir", defsDir}, tt.args...)
			_, _, err := execute(t, args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestChecksumCmd(t *testing.T) {
	defsDir, server := setup(t)

	out, _, err := execute(t, "checksum", "tagify", "--definitions-dir", defsDir)
	require.NoError(t, err)
	assert.Equal(t, archiveDigest+"  "+server.URL+"/zoomio/tagify/archive/1.2.3.tar.gz\n", out)

	file := filepath.Join(t.TempDir(), "empty.tar.gz")
	require.NoError(t, os.WriteFile(file, nil, 0600))
	out, _, err = execute(t, "checksum", "--file", file)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, emptyDigest), out)

	_, _, err = execute(t, "checksum")
	assert.Error(t, err)

	// The version is validated before anything is downloaded
	_, _, err = execute(t, "checksum", "tagify", "--definitions-dir", defsDir, "--version", "1.0?x=1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid version")
}

func TestReleaseAndVerify(t *testing.T) {
	defsDir, server := setup(t)
	tapDir := t.TempDir()

	out, _, err := execute(t, "release", "tagify", "--definitions-dir", defsDir, "--tap", tapDir, "--version", "latest")
	require.NoError(t, err)
	assert.Contains(t, out, "Version: 1.2.3")
	assert.Contains(t, out, "SHA256: "+archiveDigest)

	published := filepath.Join(tapDir, "Formula", "tagify.rb")
	content, err := os.ReadFile(published)
	require.NoError(t, err)
	assert.Contains(t, string(content), `url "`+server.URL+`/zoomio/tagify/archive/1.2.3.tar.gz"`)
	assert.Contains(t, string(content), `sha256 "`+archiveDigest+`"`)

	out, _, err = execute(t, "release", "tagify", "--definitions-dir", defsDir, "--tap", tapDir, "--version", "1.2.3")
	require.NoError(t, err)
	assert.Contains(t, out, "(unchanged)")

	out, _, err = execute(t, "verify", published)
	require.NoError(t, err)
	assert.Contains(t, out, "OK Tagify")
	assert.Contains(t, out, "archive matched (13 bytes)")
}

func TestReleaseCmd_DryRunWritesNothing(t *testing.T) {
	defsDir, _ := setup(t)
	tapDir := t.TempDir()

	out, _, err := execute(t, "release", "tagify", "--definitions-dir", defsDir, "--tap", tapDir, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "dry run")

	_, err = os.Stat(filepath.Join(tapDir, "Formula", "tagify.rb"))
	assert.True(t, os.IsNotExist(err))
}

func TestReleaseCmd_MissingArchive(t *testing.T) {
	defsDir, _ := setup(t)

	_, _, err := execute(t, "release", "tagify", "--definitions-dir", defsDir, "--tap", t.TempDir(), "--version", "9.9.9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
}

func TestVerifyCmd_CatchesBadRender(t *testing.T) {
	defsDir, _ := setup(t)

	tmpl, _, err := execute(t, "template", "tagify", "--definitions-dir", defsDir)
	require.NoError(t, err)

	tests := []struct {
		name    string
		text    string
		wantErr string
	}{
		{
			name:    "empty version",
			text:    strings.NewReplacer("${VERSION}", "", "${SHA}", emptyDigest).Replace(tmpl),
			wantErr: "empty version segment",
		},
		{
			name:    "unrendered template",
			text:    tmpl,
			wantErr: "unsubstituted placeholders",
		},
		{
			name:    "digest mismatch",
			text:    strings.NewReplacer("${VERSION}", "1.2.3", "${SHA}", emptyDigest).Replace(tmpl),
			wantErr: "does not match",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "tagify.rb")
			require.NoError(t, os.WriteFile(path, []byte(tt.text), 0600))

			_, _, err := execute(t, "verify", path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestVerifyCmd_Offline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tagify.rb")
	text := `class Tagify < Formula
  url "https://unreachable.invalid/zoomio/tagify/archive/1.2.3.tar.gz"
  sha256 "` + emptyDigest + `"
end
`
	require.NoError(t, os.WriteFile(path, []byte(text), 0600))

	out, _, err := execute(t, "verify", path, "--offline")
	require.NoError(t, err)
	assert.Contains(t, out, "OK Tagify")
	assert.NotContains(t, out, "archive matched")
}

func TestListCmd(t *testing.T) {
	defsDir, _ := setup(t)

	out, _, err := execute(t, "list", "--definitions-dir", defsDir)
	require.NoError(t, err)
	assert.Contains(t, out, "tagify")
	assert.Contains(t, out, "static:1.2.3")
	assert.Contains(t, out, "go (build)")

	out, _, err = execute(t, "list", "--definitions-dir", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No formulas found")
}

func TestVersionCmd(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "formulary version dev")
}
