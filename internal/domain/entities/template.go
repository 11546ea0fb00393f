package entities

import "strings"

// Template is an unrendered formula: Ruby source holding the
// ${VERSION} and ${SHA} substitution points
type Template struct {
	Name string
	Text string
}

// Render substitutes both placeholders with literal values.
// It performs no validation and never alters any other byte.
func (t Template) Render(version, sha string) string {
	return strings.NewReplacer(
		VersionPlaceholder, version,
		SHAPlaceholder, sha,
	).Replace(t.Text)
}

// RenderedFormula holds the fields read back from a rendered formula
type RenderedFormula struct {
	ClassName    string
	Description  string
	Homepage     string
	URL          string
	SHA256       string
	Dependencies []Dependency
	Text         string
}
