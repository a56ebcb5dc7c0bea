package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a path segment, connector or record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnsupportedOperation indicates the addressed node does not offer the
	// requested operation (descending into a scalar, querying an action, ...).
	ErrUnsupportedOperation = errors.New("unsupported operation")

	// ErrValidation indicates invocation arguments do not satisfy the action schema.
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized indicates a notify token mismatch or a backend auth failure.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrBackendUnavailable indicates a network, timeout or upstream server failure.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown connector kind.
	ErrUnsupportedType = errors.New("unsupported type")

	// Connector Errors.

	// ErrConnectorConfig indicates a connector's settings failed validation.
	ErrConnectorConfig = errors.New("invalid connector configuration")

	// ErrInvalidCursor indicates a stored event cursor could not be decoded.
	ErrInvalidCursor = errors.New("invalid cursor")
)

// ValidationError describes the first argument that failed schema validation.
type ValidationError struct {
	// Field is the dotted location of the offending argument.
	// Empty when the arguments object itself is wrong.
	Field string

	// Reason is a human-readable description of the failure.
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrValidation, e.Field, e.Reason)
}

// Unwrap allows errors.Is(err, ErrValidation).
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
