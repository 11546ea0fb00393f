package services

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	digestPattern      = regexp.MustCompile(`^[0-9a-f]{64}$`)
	formulaNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)
	placeholderPattern = regexp.MustCompile(`\$\{[A-Za-z_][A-Za-z0-9_]*\}`)
	// versionPattern keeps a version a single literal URL path segment that
	// Ruby never interpolates
	versionPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._+-]*$`)
)

var customValidators = map[string]validator.Func{
	"formula_name":    isFormulaName,
	"release_version": isReleaseVersion,
	"sha256_hex":      isSHA256Hex,
}

var customTranslations = map[string]string{
	"contains":        "{0} must contain {1}",
	"formula_name":    "{0} must be lowercase letters, digits and dashes: {1}",
	"http_url":        "{0} must be a valid HTTP URL: {1}",
	"oneof":           "{0} must be one of build, test, recommended, optional: {1}",
	"release_version": "{0} must start with a letter or digit and contain only letters, digits, '.', '_', '+' and '-': {1}",
	"sha256_hex":      "{0} must be 64 lowercase hex characters: {1}",
}

// ValidationError carries the translated per-field failures
type ValidationError struct {
	Details []string
	Tags    map[string]string // field name -> first failing tag
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Details, "; ")
}

// Validator wraps a validator instance and an English translator
type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

// NewValidator creates a new Validator with the formula-specific rules registered
func NewValidator() (*Validator, error) {
	validate := validator.New()

	// Use the "name" tag to override the field name if present.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("name"); name != "" {
			return name
		}
		return fld.Name
	})

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, found := uni.GetTranslator("en")
	if !found {
		return nil, errors.New("translator not found")
	}

	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, fmt.Errorf("failed to register translations: %w", err)
	}

	for name, fn := range customValidators {
		if err := validate.RegisterValidation(name, fn); err != nil {
			return nil, fmt.Errorf("failed to register validator %s: %w", name, err)
		}
	}

	v := &Validator{validate: validate, trans: trans}
	for tag, msg := range customTranslations {
		if err := v.registerTranslation(tag, msg); err != nil {
			return nil, fmt.Errorf("failed to register translation %s: %w", tag, err)
		}
	}

	return v, nil
}

func (v *Validator) registerTranslation(tag, msg string) error {
	return v.validate.RegisterTranslation(tag, v.trans,
		func(ut ut.Translator) error {
			return ut.Add(tag, msg, true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T(tag, fe.Field(), fmt.Sprintf("%q", fe.Value()))
			return t
		},
	)
}

// Struct validates a struct and returns a *ValidationError on failure
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{Tags: make(map[string]string)}
	for _, fe := range verrs {
		out.Details = append(out.Details, fe.Translate(v.trans))
		if _, seen := out.Tags[fe.Field()]; !seen {
			out.Tags[fe.Field()] = fe.Tag()
		}
	}
	return out
}

func isFormulaName(fl validator.FieldLevel) bool {
	return formulaNamePattern.MatchString(fl.Field().String())
}

func isSHA256Hex(fl validator.FieldLevel) bool {
	return IsDigest(fl.Field().String())
}

func isReleaseVersion(fl validator.FieldLevel) bool {
	return validVersion(fl.Field().String())
}

// IsDigest reports whether s is a lowercase hex-encoded SHA-256 digest
func IsDigest(s string) bool {
	return digestPattern.MatchString(s)
}

func validVersion(s string) bool {
	return versionPattern.MatchString(s)
}

// ResidualPlaceholders returns every ${NAME} token left in text
func ResidualPlaceholders(text string) []string {
	return placeholderPattern.FindAllString(text, -1)
}
