package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrUnsupportedOperation", ErrUnsupportedOperation},
		{"ErrValidation", ErrValidation},
		{"ErrUnauthorized", ErrUnauthorized},
		{"ErrBackendUnavailable", ErrBackendUnavailable},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrUnsupportedType", ErrUnsupportedType},
		{"ErrConnectorConfig", ErrConnectorConfig},
		{"ErrInvalidCursor", ErrInvalidCursor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

// TestErrors_Distinct tests that sentinel errors do not match each other
func TestErrors_Distinct(t *testing.T) {
	assert.False(t, errors.Is(ErrNotFound, ErrUnsupportedOperation))
	assert.False(t, errors.Is(ErrValidation, ErrInvalidInput))
	assert.False(t, errors.Is(ErrUnauthorized, ErrBackendUnavailable))
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Field: "number", Reason: "missing property"}

	assert.Equal(t, "validation failed: number: missing property", err.Error())
	assert.True(t, errors.Is(err, ErrValidation))

	wrapped := fmt.Errorf("invoke call: %w", err)
	var target *ValidationError
	assert.True(t, errors.As(wrapped, &target))
	assert.Equal(t, "number", target.Field)
}

func TestValidationError_NoField(t *testing.T) {
	err := &ValidationError{Reason: "got string, want object"}
	assert.Equal(t, "validation failed: got string, want object", err.Error())
}
