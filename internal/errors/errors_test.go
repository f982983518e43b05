package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_ErrorString(t *testing.T) {
	err := NewAuthError("invalid credentials", nil)
	assert.Equal(t, "auth: invalid credentials", err.Error())

	wrapped := NewBackendError("create task", stderrors.New("boom"))
	assert.Equal(t, "backend: create task failed: boom", wrapped.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := NewBackendError("load tasks", cause)

	assert.True(t, stderrors.Is(err, cause))
}

func TestIsErrorType(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewValidationError("title required"))

	assert.True(t, IsErrorType(err, ErrorTypeValidation))
	assert.False(t, IsErrorType(err, ErrorTypeAuth))
	assert.False(t, IsErrorType(stderrors.New("plain"), ErrorTypeValidation))
}

func TestGetUserMessage(t *testing.T) {
	assert.Equal(t, "title required", GetUserMessage(NewValidationError("title required")))
	assert.Equal(t, "task not found: t9", GetUserMessage(NewNotFoundError("task", "t9")))
	assert.Equal(t, "operation failed: delete task failed",
		GetUserMessage(NewBackendError("delete task", stderrors.New("500"))))
	assert.Equal(t, "plain", GetUserMessage(stderrors.New("plain")))
}
