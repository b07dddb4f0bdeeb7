package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

const (
	// Authentication & Authorization
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeCSRFInvalid  ErrorCode = "CSRF_INVALID"

	// Validation
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"

	// Registration
	ErrCodeNoPending   ErrorCode = "NO_PENDING"
	ErrCodeCodeExpired ErrorCode = "CODE_EXPIRED"

	// Resource
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	ErrCodeConflict ErrorCode = "CONFLICT"

	// Rate Limiting
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"

	// External
	ErrCodeEmailDelivery ErrorCode = "EMAIL_DELIVERY_FAILED"

	// Internal
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	ErrCodeDatabase ErrorCode = "DATABASE_ERROR"
)

// AppError is a structured error that can be returned to clients.
// Message is the user-facing (German) text; cause stays server-side.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details any       `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.cause
}

// WithCause adds a cause to the error
func (e *AppError) WithCause(err error) *AppError {
	e.cause = err
	return e
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError
func Wrap(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Common error constructors

func Unauthorized() *AppError {
	return New(ErrCodeUnauthorized, "Nicht angemeldet.")
}

func Forbidden(message string) *AppError {
	return New(ErrCodeForbidden, message)
}

func CSRFInvalid() *AppError {
	return New(ErrCodeCSRFInvalid, "CSRF-Token ungültig.")
}

func ValidationError(message string) *AppError {
	return New(ErrCodeValidation, message)
}

func NoPendingRegistration() *AppError {
	return New(ErrCodeNoPending, "Keine ausstehende Registrierung gefunden. Bitte erneut registrieren.")
}

func CodeExpired() *AppError {
	return New(ErrCodeCodeExpired, "Der Verifizierungscode ist abgelaufen. Bitte erneut registrieren.")
}

func NotFound(message string) *AppError {
	return New(ErrCodeNotFound, message)
}

func Conflict(message string) *AppError {
	return New(ErrCodeConflict, message)
}

func RateLimitExceeded() *AppError {
	return New(ErrCodeRateLimitExceeded, "Zu viele Versuche. Bitte später erneut versuchen.")
}

func EmailDelivery(cause error) *AppError {
	return Wrap(ErrCodeEmailDelivery,
		"Verifizierungs-E-Mail konnte nicht gesendet werden. Bitte überprüfen Sie Ihre E-Mail-Adresse oder versuchen Sie es später erneut.",
		cause)
}

func Internal() *AppError {
	return New(ErrCodeInternal, "Interner Serverfehler.")
}

func Database(cause error) *AppError {
	return Wrap(ErrCodeDatabase, "Datenbankfehler. Bitte versuchen Sie es später erneut.", cause)
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetCode returns the error code if the error is an AppError, otherwise returns ErrCodeInternal
func GetCode(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ErrCodeInternal
}
