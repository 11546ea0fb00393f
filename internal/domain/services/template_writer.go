package services

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/zoomio/formulary/internal/domain/entities"
)

// formulaTemplate lays out a Homebrew formula. Blank lines inside the
// class body keep the two-space indent Homebrew's own templates use.
const formulaTemplate = `class {{ .ClassName }} < Formula
  desc {{ quote .Description }}
  homepage {{ quote .Homepage }}
  url {{ quote .Source.URL }}
  sha256 {{ quote .SHA }}
{{ blank }}
{{ range .Dependencies }}  depends_on {{ quote .Name }}{{ if .Kind }} => :{{ .Kind }}{{ end }}
{{ end }}{{ if .Dependencies }}{{ blank }}
{{ end }}  def install
    system {{ args .Install.Args }}
  end
{{ blank }}
  test do
    system {{ args .Test.Args }}
  end
end
`

var rubyEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, `#{`, `\#{`)

var templateFuncs = template.FuncMap{
	"quote": rubyQuote,
	"args":  rubyArgs,
	"blank": func() string { return "  " },
}

// TemplateWriter produces unrendered formula templates from definitions
type TemplateWriter struct {
	tmpl      *template.Template
	validator *Validator
}

// NewTemplateWriter creates a new template writer
func NewTemplateWriter(validator *Validator) *TemplateWriter {
	return &TemplateWriter{
		tmpl:      template.Must(template.New("formula").Funcs(templateFuncs).Parse(formulaTemplate)),
		validator: validator,
	}
}

// Write validates the definition and lays it out as a template
// carrying the ${VERSION} and ${SHA} placeholders
func (w *TemplateWriter) Write(formula *entities.Formula) (*entities.Template, error) {
	if err := w.validator.Struct(formula); err != nil {
		return nil, fmt.Errorf("invalid formula %q: %w", formula.Name, err)
	}

	data := struct {
		*entities.Formula
		SHA string
	}{
		Formula: formula,
		SHA:     entities.SHAPlaceholder,
	}

	var buf bytes.Buffer
	if err := w.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to write template for %s: %w", formula.Name, err)
	}

	return &entities.Template{Name: formula.Name, Text: buf.String()}, nil
}

func rubyQuote(s string) string {
	return `"` + rubyEscaper.Replace(s) + `"`
}

// rubyArgs renders a system() argument list; splats and symbols stay bare
func rubyArgs(args []string) string {
	out := make([]string, len(args))
	for i, a := range args {
		if strings.HasPrefix(a, "*") || strings.HasPrefix(a, ":") {
			out[i] = a
			continue
		}
		out[i] = rubyQuote(a)
	}
	return strings.Join(out, ", ")
}
