// Package errors defines the structured error taxonomy shared by the
// backends and the sync controller. Nothing in this taxonomy is fatal to
// the process: every category degrades to a visible notice and an
// unchanged in-memory state.
package errors

import (
	"errors"
)

// NewConfigurationError reports a misconfigured or unreachable backend.
// Callers fall back to the local backend rather than failing.
func NewConfigurationError(message string, cause error) *AppError {
	return &AppError{Type: ErrorTypeConfiguration, Message: message, Cause: cause}
}

// NewAuthError reports a failed credential check. The session stays
// signed out.
func NewAuthError(message string, cause error) *AppError {
	return &AppError{Type: ErrorTypeAuth, Message: message, Cause: cause}
}

// NewValidationError reports input rejected before any backend call.
func NewValidationError(message string) *AppError {
	return &AppError{Type: ErrorTypeValidation, Message: message}
}

// NewBackendError reports a provider or network failure on a CRUD
// operation.
func NewBackendError(operation string, cause error) *AppError {
	return &AppError{Type: ErrorTypeBackend, Message: operation + " failed", Cause: cause}
}

// NewSubscriptionError reports a realtime channel failure. The
// subscription is not retried automatically.
func NewSubscriptionError(message string, cause error) *AppError {
	return &AppError{Type: ErrorTypeSubscription, Message: message, Cause: cause}
}

// NewNotFoundError reports a missing record.
func NewNotFoundError(resource string, id string) *AppError {
	return &AppError{Type: ErrorTypeNotFound, Message: resource + " not found: " + id}
}

// IsAppError checks if the error is an AppError
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

// IsErrorType checks if the error is of the specified type
func IsErrorType(err error, errorType ErrorType) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.IsType(errorType)
	}
	return false
}

// GetUserMessage returns a user-friendly message suitable for a notice.
func GetUserMessage(err error) string {
	if appErr, ok := AsAppError(err); ok {
		switch appErr.Type {
		case ErrorTypeValidation, ErrorTypeAuth, ErrorTypeNotFound:
			return appErr.Message
		case ErrorTypeConfiguration:
			return "backend not configured: " + appErr.Message
		case ErrorTypeSubscription:
			return "realtime updates unavailable: " + appErr.Message
		default:
			return "operation failed: " + appErr.Message
		}
	}
	return err.Error()
}
