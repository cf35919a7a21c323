package portal

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateResponse checks decoded portal payloads against their validate tags.
func validateResponse(entity string, v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("validating %s response: %w", entity, err)
	}

	result := &ValidationError{Entity: entity}
	for _, e := range validationErrors {
		result.Fields = append(result.Fields, FieldError{
			Field:   e.Namespace(),
			Message: formatErrorMessage(e),
		})
	}
	return result
}

func formatErrorMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "gte":
		return fmt.Sprintf("must be at least %s", e.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", e.Param())
	default:
		return fmt.Sprintf("failed %q validation", e.Tag())
	}
}
