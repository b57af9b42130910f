package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	t.Parallel()

	err := NewError(ErrOrchestration, "scheduler failed")
	assert.Equal(t, "[ORCHESTRATION] scheduler failed", err.Error())

	cause := errors.New("connection reset")
	err = err.WithCause(cause)
	assert.Equal(t, "[ORCHESTRATION] scheduler failed: connection reset", err.Error())
}

func TestError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("root cause")
	err := NewValidationError("bad definition").WithCause(cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestError_Builders(t *testing.T) {
	t.Parallel()

	err := NewNotFoundError("workflow not found").
		WithHTTPStatus(404).
		WithRetryable(false)

	assert.Equal(t, ErrNotFound, err.Code)
	assert.Equal(t, 404, err.HTTPStatus)
	assert.False(t, err.Retryable)
}

func TestNewValidationError_Formatting(t *testing.T) {
	t.Parallel()

	err := NewValidationError("agent %s not found or not accessible", "a-1")
	assert.Equal(t, "agent a-1 not found or not accessible", err.Message)
}

func TestGetErrorCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ErrValidation, GetErrorCode(NewValidationError("x")))
	assert.Equal(t, ErrorCode(""), GetErrorCode(errors.New("plain")))
	assert.Equal(t, ErrorCode(""), GetErrorCode(nil))
}

func TestIsValidation_IsNotFound(t *testing.T) {
	t.Parallel()

	assert.True(t, IsValidation(NewValidationError("x")))
	assert.False(t, IsValidation(NewNotFoundError("x")))
	assert.True(t, IsNotFound(NewNotFoundError("x")))
	assert.False(t, IsNotFound(fmt.Errorf("wrapped: %w", errors.New("x"))))
}

func TestStatus_Terminal(t *testing.T) {
	t.Parallel()

	assert.False(t, WorkflowRunning.Terminal())
	assert.True(t, WorkflowCompleted.Terminal())
	assert.True(t, WorkflowFailed.Terminal())
	assert.True(t, WorkflowPartialSuccess.Terminal())

	assert.False(t, StepPending.Terminal())
	assert.False(t, StepRunning.Terminal())
	assert.True(t, StepSuccess.Terminal())
	assert.True(t, StepError.Terminal())
	assert.True(t, StepSkipped.Terminal())
}
