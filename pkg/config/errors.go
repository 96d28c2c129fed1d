package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error with a helpful
// suggestion.
type ValidationError struct {
	Field      string `json:"field"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation error in field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error with suggestion
func NewValidationError(field, message, suggestion string) ValidationError {
	return ValidationError{
		Field:      field,
		Message:    message,
		Suggestion: suggestion,
	}
}

// ValidationErrors represents multiple validation errors
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// Add appends a validation error.
func (e *ValidationErrors) Add(err ValidationError) {
	e.Errors = append(e.Errors, err)
}

// HasErrors reports whether any validation error was collected.
func (e ValidationErrors) HasErrors() bool {
	return len(e.Errors) > 0
}

func (e ValidationErrors) Error() string {
	if len(e.Errors) == 0 {
		return "no validation errors"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d config validation error(s):", len(e.Errors))
	for _, err := range e.Errors {
		fmt.Fprintf(&b, "\n  - %s: %s", err.Field, err.Message)
		if err.Suggestion != "" {
			fmt.Fprintf(&b, " (%s)", err.Suggestion)
		}
	}
	return b.String()
}
