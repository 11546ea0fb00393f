// Package entities defines core domain models and data structures.
package entities

import "strings"

// Substitution points understood by every formula template
const (
	VersionPlaceholder = "${VERSION}"
	SHAPlaceholder     = "${SHA}"
)

// Formula represents a package-manager formula definition
type Formula struct {
	Name         string       `validate:"required,formula_name"`
	Description  string       `validate:"required"`
	Homepage     string       `validate:"required,http_url"`
	Source       SourceConfig
	Version      VersionConfig
	Dependencies []Dependency `validate:"dive"`
	Install      InstallStep
	Test         TestStep
}

// SourceConfig describes where the release archive lives
type SourceConfig struct {
	URL string `validate:"required,contains=${VERSION}"` // e.g. https://github.com/zoomio/tagify/archive/${VERSION}.tar.gz
}

// VersionConfig represents how the "latest" version is resolved
type VersionConfig struct {
	Source          string // e.g., "github-release:owner/repo", "github-tag:owner/repo", "static:1.2.3"
	ExcludePatterns string // Regex patterns to exclude (alpha, beta, rc, etc.)
	Cleanup         string // "find:replace" or a sed expression applied to the resolved tag
}

// Dependency represents a depends_on declaration
type Dependency struct {
	Name string `validate:"required"`
	Kind string `validate:"omitempty,oneof=build test recommended optional"`
}

// InstallStep describes the install procedure.
// Command, when set, is used verbatim; otherwise a cross-compiling
// go build invocation is derived from GOOS, GOARCH and Entrypoint.
type InstallStep struct {
	GOOS       string
	GOARCH     string
	Entrypoint string
	Command    []string
}

// Args returns the argument list passed to the install system call
func (s InstallStep) Args() []string {
	if len(s.Command) > 0 {
		return s.Command
	}

	var args []string
	if s.GOOS != "" || s.GOARCH != "" {
		args = append(args, "env")
		if s.GOOS != "" {
			args = append(args, "GOOS="+s.GOOS)
		}
		if s.GOARCH != "" {
			args = append(args, "GOARCH="+s.GOARCH)
		}
	}
	args = append(args, "go", "build", StdGoArgs)
	if s.Entrypoint != "" {
		args = append(args, s.Entrypoint)
	}
	return args
}

// StdGoArgs is the splat of Homebrew's standard go build arguments
const StdGoArgs = "*std_go_args"

// TestStep describes the formula's test block
type TestStep struct {
	Command []string
}

// Args returns the test command, defaulting to the module's full test suite
func (s TestStep) Args() []string {
	if len(s.Command) > 0 {
		return s.Command
	}
	return []string{"go", "test", "./..."}
}

// ClassName converts a formula name to its Ruby class name (tagify -> Tagify, go-task -> GoTask)
func (f *Formula) ClassName() string {
	var b strings.Builder
	for _, part := range strings.FieldsFunc(f.Name, func(r rune) bool { return r == '-' || r == '_' || r == '.' }) {
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}

// SourceURL resolves the source archive URL for a version
func (f *Formula) SourceURL(version string) string {
	return strings.ReplaceAll(f.Source.URL, VersionPlaceholder, version)
}
