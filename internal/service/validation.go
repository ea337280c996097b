package service

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validator checks commands before a service acts on them.
type Validator interface {
	Validate(v interface{}) error
}

// StructValidator validates commands using their `validate` struct tags.
type StructValidator struct {
	validate *validator.Validate
}

// NewValidator creates a StructValidator.
func NewValidator() *StructValidator {
	return &StructValidator{validate: validator.New()}
}

// Validate returns a *ValidationFailedError listing every broken rule, or nil.
func (v *StructValidator) Validate(cmd interface{}) error {
	err := v.validate.Struct(cmd)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &ValidationFailedError{Violations: []string{err.Error()}}
	}

	violations := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		violations = append(violations, describeFieldError(fe))
	}
	return &ValidationFailedError{Violations: violations}
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "gte", "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "lte", "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "dive", "unique":
		return fmt.Sprintf("%s contains invalid or repeated entries", fe.Field())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
