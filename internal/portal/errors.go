package portal

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotConfigured is returned before any request is made when the base URL or token is missing.
var ErrNotConfigured = errors.New("portal is not configured")

// StatusError is a non-2xx answer from the portal.
type StatusError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%d on %s", e.StatusCode, e.Operation)
	}
	return fmt.Sprintf("%d on %s: %s", e.StatusCode, e.Operation, e.Body)
}

// FieldError names one field of a portal response that failed validation.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError is a portal response that decoded but lacks required fields.
type ValidationError struct {
	Entity string
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return fmt.Sprintf("invalid %s response: %s", e.Entity, strings.Join(parts, "; "))
}
