package services

import (
	"errors"
	"fmt"
)

// Sentinel errors translated to HTTP statuses by the handlers.
var (
	// ErrNotFound covers both genuinely missing records and records outside
	// the acting principal's visibility scope. The two cases are deliberately
	// indistinguishable so that a response never confirms existence.
	ErrNotFound = errors.New("not found")

	// ErrInvalidCredentials is returned for bad login or refresh attempts
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrDuplicate is returned when a uniqueness constraint is violated
	ErrDuplicate = errors.New("already exists")

	// ErrForbidden is returned when the principal is authenticated but not
	// allowed to perform the operation (key rotation by a non-owner)
	ErrForbidden = errors.New("forbidden")
)

// ValidationError represents a field-level validation failure
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidationError checks if an error is a ValidationError
func IsValidationError(err error) (*ValidationError, bool) {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr, true
	}
	return nil, false
}
