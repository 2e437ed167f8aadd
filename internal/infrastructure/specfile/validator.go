package specfile

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	sderrors "github.com/alexisbeaulieu97/specdriver/pkg/errors"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	versionPattern    = regexp.MustCompile(`^\d+\.\d+(?:\.\d+)?$`)
	stepIDPattern     = regexp.MustCompile(`^[a-z0-9][a-z0-9_./\[\]-]*$`)
	grammarKeyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation("docversion", func(fl validator.FieldLevel) bool {
			return versionPattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("stepid", func(fl validator.FieldLevel) bool {
			return stepIDPattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("grammarkey", func(fl validator.FieldLevel) bool {
			return grammarKeyPattern.MatchString(fl.Field().String())
		})

		validateInst = v
	})

	return validateInst
}

// ValidateDocument performs schema and cross-field validation on a parsed
// specification document.
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return sderrors.NewValidationError("document", "specification document is nil", nil)
	}

	v := validatorInstance()
	if err := v.Struct(doc); err != nil {
		return convertValidationError(err)
	}

	seen := map[string]int{}
	return validateSteps(doc.Steps, "steps", seen)
}

func validateSteps(steps []StepDef, prefix string, seen map[string]int) error {
	for i, step := range steps {
		field := fmt.Sprintf("%s[%d]", prefix, i)

		if step.ID != "" {
			if _, exists := seen[step.ID]; exists {
				return sderrors.NewValidationError(field+".id", fmt.Sprintf("duplicate step id %q", step.ID), nil)
			}
			seen[step.ID] = i
		}

		if len(step.Rows) > 0 && len(step.Steps) > 0 {
			return sderrors.NewValidationError(field, "a step cannot carry both rows and nested steps", nil)
		}

		if err := validateSteps(step.Steps, field+".steps", seen); err != nil {
			return err
		}
	}
	return nil
}

func convertValidationError(err error) error {
	if err == nil {
		return nil
	}

	if ves, ok := err.(validator.ValidationErrors); ok {
		ve := ves[0]
		field := yamlishFieldName(ve)
		msg := fmt.Sprintf("%s failed validation for tag '%s'", field, ve.Tag())
		return sderrors.NewValidationError(field, msg, err)
	}

	return sderrors.NewValidationError("document", err.Error(), err)
}

func yamlishFieldName(fe validator.FieldError) string {
	ns := fe.StructNamespace()
	parts := strings.Split(ns, ".")
	lowered := make([]string, 0, len(parts))
	for _, part := range parts {
		lowered = append(lowered, strings.ToLower(part))
	}
	return strings.Join(lowered, ".")
}
