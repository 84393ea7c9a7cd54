package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// ErrInvalid wraps every struct tag failure
	ErrInvalid = errors.New("invalid configuration")
)

func init() {
	validate = validator.New()
	// Report fields by the key used in config files
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
}

// Struct checks the validate tags of v and its nested structs
func Struct(v any) error {
	if v == nil {
		return errors.New("config cannot be nil")
	}
	if err := validate.Struct(v); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// fieldPath drops the root type name from a validator namespace
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	// Return the first validation error in a user-friendly format
	for _, e := range validationErrs {
		field := fieldPath(e)
		param := e.Param()

		switch e.Tag() {
		case "required":
			return fmt.Errorf("%w: %s: field is required", ErrInvalid, field)
		case "gt":
			return fmt.Errorf("%w: %s: must be greater than %s, got %v", ErrInvalid, field, param, e.Value())
		case "gte", "min":
			return fmt.Errorf("%w: %s: must be at least %s, got %v", ErrInvalid, field, param, e.Value())
		case "lt":
			return fmt.Errorf("%w: %s: must be less than %s, got %v", ErrInvalid, field, param, e.Value())
		case "lte", "max":
			return fmt.Errorf("%w: %s: must not exceed %s, got %v", ErrInvalid, field, param, e.Value())
		case "oneof":
			return fmt.Errorf("%w: %s: %q must be one of [%s]", ErrInvalid, field, e.Value(), param)
		default:
			return fmt.Errorf("%w: %s: validation failed (%s)", ErrInvalid, field, e.Tag())
		}
	}

	return err
}
