package services

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/zoomio/formulary/internal/domain/entities"
)

// FindingKind classifies a problem found in a rendered formula
type FindingKind string

// Inspection findings
const (
	FindingResidualPlaceholder FindingKind = "residual_placeholder"
	FindingMissingClass        FindingKind = "missing_class"
	FindingMissingURL          FindingKind = "missing_url"
	FindingInvalidURL          FindingKind = "invalid_url"
	FindingEmptyVersion        FindingKind = "empty_version"
	FindingMissingDigest       FindingKind = "missing_sha256"
	FindingInvalidDigest       FindingKind = "invalid_sha256"
)

// Finding is a single problem found in a rendered formula
type Finding struct {
	Kind   FindingKind
	Detail string
}

// InspectionError lists every finding that makes a rendered formula unusable
type InspectionError struct {
	Findings []Finding
}

func (e *InspectionError) Error() string {
	msgs := make([]string, len(e.Findings))
	for i, f := range e.Findings {
		msgs[i] = f.Detail
	}
	return "formula is not installable: " + strings.Join(msgs, "; ")
}

// Has returns true if a finding of the given kind was reported
func (e *InspectionError) Has(kind FindingKind) bool {
	for _, f := range e.Findings {
		if f.Kind == kind {
			return true
		}
	}
	return false
}

var (
	classLine    = regexp.MustCompile(`^class\s+([A-Z]\w*)\s*<\s*Formula\b`)
	descLine     = regexp.MustCompile(`^\s*desc\s+"(.*)"\s*$`)
	homepageLine = regexp.MustCompile(`^\s*homepage\s+"(.*)"\s*$`)
	urlLine      = regexp.MustCompile(`^\s*url\s+"(.*)"\s*$`)
	shaLine      = regexp.MustCompile(`^\s*sha256\s+"(.*)"\s*$`)
	dependsLine  = regexp.MustCompile(`^\s*depends_on\s+"([^"]+)"(?:\s*=>\s*:(\w+))?`)
)

// Inspector reads a rendered formula back and checks that a package
// manager could install from it
type Inspector struct{}

// NewInspector creates a new inspector
func NewInspector() *Inspector {
	return &Inspector{}
}

// Inspect parses the declared fields of a rendered formula. The returned
// formula is populated even when an *InspectionError is returned.
func (i *Inspector) Inspect(text string) (*entities.RenderedFormula, error) {
	rendered := &entities.RenderedFormula{Text: text}
	urlSeen, shaSeen := false, false

	for _, line := range strings.Split(text, "\n") {
		if m := classLine.FindStringSubmatch(line); m != nil && rendered.ClassName == "" {
			rendered.ClassName = m[1]
			continue
		}
		if m := descLine.FindStringSubmatch(line); m != nil {
			rendered.Description = m[1]
			continue
		}
		if m := homepageLine.FindStringSubmatch(line); m != nil {
			rendered.Homepage = m[1]
			continue
		}
		if m := urlLine.FindStringSubmatch(line); m != nil && !urlSeen {
			rendered.URL = m[1]
			urlSeen = true
			continue
		}
		if m := shaLine.FindStringSubmatch(line); m != nil && !shaSeen {
			rendered.SHA256 = m[1]
			shaSeen = true
			continue
		}
		if m := dependsLine.FindStringSubmatch(line); m != nil {
			rendered.Dependencies = append(rendered.Dependencies, entities.Dependency{Name: m[1], Kind: m[2]})
		}
	}

	var findings []Finding
	if residual := ResidualPlaceholders(text); len(residual) > 0 {
		findings = append(findings, Finding{
			Kind:   FindingResidualPlaceholder,
			Detail: fmt.Sprintf("unsubstituted placeholders: %s", strings.Join(residual, ", ")),
		})
	}
	if rendered.ClassName == "" {
		findings = append(findings, Finding{Kind: FindingMissingClass, Detail: "no Formula class declaration"})
	}

	switch {
	case !urlSeen || rendered.URL == "":
		findings = append(findings, Finding{Kind: FindingMissingURL, Detail: "no url declared"})
	default:
		findings = append(findings, i.checkURL(rendered.URL)...)
	}

	switch {
	case !shaSeen || rendered.SHA256 == "":
		findings = append(findings, Finding{Kind: FindingMissingDigest, Detail: "no sha256 declared"})
	case ResidualPlaceholders(rendered.SHA256) != nil:
		// already reported as a residual placeholder
	case !IsDigest(rendered.SHA256):
		findings = append(findings, Finding{
			Kind:   FindingInvalidDigest,
			Detail: fmt.Sprintf("sha256 %q is not 64 lowercase hex characters", rendered.SHA256),
		})
	}

	if len(findings) > 0 {
		return rendered, &InspectionError{Findings: findings}
	}
	return rendered, nil
}

func (i *Inspector) checkURL(raw string) []Finding {
	if ResidualPlaceholders(raw) != nil {
		return nil
	}

	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return []Finding{{Kind: FindingInvalidURL, Detail: fmt.Sprintf("url %q is not absolute", raw)}}
	}

	// archive/.tar.gz, archive//x.tar.gz and a trailing slash all mean an empty version segment
	base := path.Base(u.Path)
	if strings.Contains(u.Path, "//") || strings.HasSuffix(u.Path, "/") || strings.HasPrefix(base, ".") {
		return []Finding{{Kind: FindingEmptyVersion, Detail: fmt.Sprintf("url %q has an empty version segment", raw)}}
	}

	return nil
}
