package types

import "fmt"

// ErrorCode represents a unified error code across the service.
type ErrorCode string

const (
	// ErrValidation marks a malformed or inconsistent workflow definition.
	// Raised before any side effect; no workflow record exists.
	ErrValidation ErrorCode = "VALIDATION"
	// ErrNotFound marks a workflow or agent that does not resolve for the
	// given owner.
	ErrNotFound ErrorCode = "NOT_FOUND"
	// ErrAgentInvocation marks a failed call to the agent invocation
	// service. Absorbed into the step's error status, never escapes the
	// step executor.
	ErrAgentInvocation ErrorCode = "AGENT_INVOCATION"
	// ErrOrchestration marks an unexpected failure inside a scheduler,
	// such as a persistence failure mid-run or an internal invariant
	// violation. Fatal to the run.
	ErrOrchestration ErrorCode = "ORCHESTRATION"

	ErrInvalidRequest ErrorCode = "INVALID_REQUEST"
	ErrUnauthorized   ErrorCode = "UNAUTHORIZED"
	ErrInternalError  ErrorCode = "INTERNAL_ERROR"
)

// Error represents a structured error with code, message, and metadata.
type Error struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"http_status,omitempty"`
	Retryable  bool      `json:"retryable"`
	Cause      error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NewValidationError creates a VALIDATION error.
func NewValidationError(format string, args ...any) *Error {
	return &Error{Code: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

// NewNotFoundError creates a NOT_FOUND error.
func NewNotFoundError(message string) *Error {
	return &Error{Code: ErrNotFound, Message: message}
}

// NewOrchestrationError creates an ORCHESTRATION error.
func NewOrchestrationError(message string) *Error {
	return &Error{Code: ErrOrchestration, Message: message}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithHTTPStatus sets the HTTP status code.
func (e *Error) WithHTTPStatus(status int) *Error {
	e.HTTPStatus = status
	return e
}

// WithRetryable marks the error as retryable.
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) ErrorCode {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return ""
}

// IsValidation reports whether err is a VALIDATION error.
func IsValidation(err error) bool { return GetErrorCode(err) == ErrValidation }

// IsNotFound reports whether err is a NOT_FOUND error.
func IsNotFound(err error) bool { return GetErrorCode(err) == ErrNotFound }
