package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCustomErrorUnwrap(t *testing.T) {
	err := fmt.Errorf("loading event: %w", NewResourceNotFoundError("event 42 not found"))

	require.True(t, errors.Is(err, ErrResourceNotFound))
	require.Contains(t, err.Error(), "event 42 not found")

	ce, ok := AsCustom(err)
	require.True(t, ok)
	require.Equal(t, "event 42 not found", ce.Message)
}

func TestValidationErrorDetails(t *testing.T) {
	err := NewValidationError("registration data invalid", map[string]interface{}{"Email": "must be a valid email address"})

	require.True(t, Is(err, ErrBadRequest, ErrValidationFailed))
	ce, ok := AsCustom(err)
	require.True(t, ok)
	require.Equal(t, "must be a valid email address", ce.Details["Email"])
}

func TestCustomErrorFallbackMessage(t *testing.T) {
	require.Equal(t, "permission denied", NewCustomError(ErrPermissionDenied, "").Error())
	require.Equal(t, "unknown error", (&CustomError{}).Error())
}
