package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorMessage(t *testing.T) {
	err := New(ErrCodeValidation, "Ungültige Eingabe.")
	assert.Equal(t, "VALIDATION_ERROR: Ungültige Eingabe.", err.Error())
}

func TestAppErrorWithCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Database(cause)

	assert.Contains(t, err.Error(), "connection refused")
	assert.ErrorIs(t, err, cause)
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(ErrCodeInternal, "kaputt", cause)
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestAsAppError(t *testing.T) {
	appErr, ok := AsAppError(NotFound("Verein nicht gefunden."))
	require.True(t, ok)
	assert.Equal(t, ErrCodeNotFound, appErr.Code)

	wrapped := fmt.Errorf("handler: %w", Conflict("bereits vergeben"))
	appErr, ok = AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrCodeConflict, appErr.Code)

	_, ok = AsAppError(errors.New("plain"))
	assert.False(t, ok)
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, ErrCodeForbidden, GetCode(Forbidden("nein")))
	assert.Equal(t, ErrCodeInternal, GetCode(errors.New("plain")))
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		err  *AppError
		code ErrorCode
	}{
		{Unauthorized(), ErrCodeUnauthorized},
		{CSRFInvalid(), ErrCodeCSRFInvalid},
		{NoPendingRegistration(), ErrCodeNoPending},
		{CodeExpired(), ErrCodeCodeExpired},
		{RateLimitExceeded(), ErrCodeRateLimitExceeded},
		{Internal(), ErrCodeInternal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, tt.err.Code)
		assert.NotEmpty(t, tt.err.Message)
	}
}
