// Package validation holds the client-side checks run before any request
// reaches the config server.
package validation

import (
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	apperrors "github.com/bravo68web/confdash/pkg/errors"
)

var namespacePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Validator checks namespace names, commit messages, file names and YAML bodies
type Validator struct {
	v      *validator.Validate
	minLen int
	maxLen int
}

// New creates a Validator enforcing namespace lengths in [minLen, maxLen]
func New(minLen, maxLen int) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("nsname", func(fl validator.FieldLevel) bool {
		return namespacePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("filename", func(fl validator.FieldLevel) bool {
		name := fl.Field().String()
		return name != "." && name != ".." && !strings.ContainsAny(name, "/\\")
	})
	return &Validator{v: v, minLen: minLen, maxLen: maxLen}
}

// Engine exposes the underlying validator so DTO binding can share the custom tags
func (val *Validator) Engine() *validator.Validate {
	return val.v
}

// Namespace validates a namespace name
func (val *Validator) Namespace(name string) error {
	if name == "" {
		return apperrors.ValidationError("namespace", "Namespace name is required")
	}
	tag := fmt.Sprintf("min=%d,max=%d,nsname", val.minLen, val.maxLen)
	if err := val.v.Var(name, tag); err != nil {
		return val.namespaceError(err)
	}
	return nil
}

func (val *Validator) namespaceError(err error) error {
	var fe validator.ValidationErrors
	if !errors.As(err, &fe) || len(fe) == 0 {
		return apperrors.ValidationError("namespace", "Invalid namespace name")
	}
	switch fe[0].Tag() {
	case "min":
		return apperrors.ValidationError("namespace",
			fmt.Sprintf("Namespace name must be at least %d characters", val.minLen))
	case "max":
		return apperrors.ValidationError("namespace",
			fmt.Sprintf("Namespace name must be at most %d characters", val.maxLen))
	default:
		return apperrors.ValidationError("namespace",
			"Namespace name may only contain letters, numbers, hyphens and underscores")
	}
}

// CommitMessage requires a non-blank message
func (val *Validator) CommitMessage(msg string) error {
	if strings.TrimSpace(msg) == "" {
		return apperrors.ValidationError("message", "Commit message is required")
	}
	return nil
}

// FileName validates a single path segment used as a file name
func (val *Validator) FileName(name string) error {
	if err := val.v.Var(name, "required,max=255,filename"); err != nil {
		return apperrors.ValidationError("name", "File name must be a single, non-empty path segment")
	}
	return nil
}

// SecretKey validates a vault key
func (val *Validator) SecretKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return apperrors.ValidationError("key", "Secret key is required")
	}
	if strings.ContainsAny(key, " \t\n=") {
		return apperrors.ValidationError("key", "Secret key may not contain whitespace or '='")
	}
	return nil
}

// Struct validates a struct using its validate tags
func (val *Validator) Struct(s any) error {
	if err := val.v.Struct(s); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok && len(ve) > 0 {
			f := ve[0]
			return apperrors.ValidationError(f.Field(),
				fmt.Sprintf("%s failed the %q check", f.Field(), f.Tag()))
		}
		return apperrors.BadRequest("", err)
	}
	return nil
}

// IsYAML reports whether name has a YAML extension
func IsYAML(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// YAML checks that content parses as one or more YAML documents
func YAML(content string) error {
	dec := yaml.NewDecoder(strings.NewReader(content))
	for {
		var node yaml.Node
		err := dec.Decode(&node)
		if err == nil {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperrors.ValidationError("content", "Invalid YAML: "+strings.TrimPrefix(err.Error(), "yaml: "))
	}
}
