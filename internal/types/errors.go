package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a namespaced error code for Meridian errors.
type ErrorCode string

// Configuration error codes
const (
	CONFIG_LOAD_FAILED       ErrorCode = "CONFIG_LOAD_FAILED"
	CONFIG_PARSE_FAILED      ErrorCode = "CONFIG_PARSE_FAILED"
	CONFIG_VALIDATION_FAILED ErrorCode = "CONFIG_VALIDATION_FAILED"
	CONFIG_NOT_FOUND         ErrorCode = "CONFIG_NOT_FOUND"
)

// Graph engine error codes
const (
	GRAPH_BUILD_FAILED    ErrorCode = "GRAPH_BUILD_FAILED"
	GRAPH_STAGE_NOT_FOUND ErrorCode = "GRAPH_STAGE_NOT_FOUND"
	GRAPH_NO_ROUTE        ErrorCode = "GRAPH_NO_ROUTE"
	GRAPH_MAX_STEPS       ErrorCode = "GRAPH_MAX_STEPS"
	GRAPH_STAGE_PANIC     ErrorCode = "GRAPH_STAGE_PANIC"
	GRAPH_NOT_SUSPENDED   ErrorCode = "GRAPH_NOT_SUSPENDED"
	GRAPH_THREAD_EXISTS   ErrorCode = "GRAPH_THREAD_EXISTS"
)

// Checkpoint error codes
const (
	CHECKPOINT_NOT_FOUND     ErrorCode = "CHECKPOINT_NOT_FOUND"
	CHECKPOINT_CORRUPTED     ErrorCode = "CHECKPOINT_CORRUPTED"
	CHECKPOINT_STORE_FAILED  ErrorCode = "CHECKPOINT_STORE_FAILED"
	CHECKPOINT_ENCODE_FAILED ErrorCode = "CHECKPOINT_ENCODE_FAILED"
)

// Text-generation error codes
const (
	LLM_REQUEST_FAILED     ErrorCode = "LLM_REQUEST_FAILED"
	LLM_RESPONSE_MALFORMED ErrorCode = "LLM_RESPONSE_MALFORMED"
	LLM_AUTH_FAILED        ErrorCode = "LLM_AUTH_FAILED"
	LLM_RATE_LIMITED       ErrorCode = "LLM_RATE_LIMITED"
)

// Collaborator (market data, web search) error codes
const (
	PROVIDER_LOOKUP_FAILED ErrorCode = "PROVIDER_LOOKUP_FAILED"
	PROVIDER_UNAVAILABLE   ErrorCode = "PROVIDER_UNAVAILABLE"
	MARKET_LOOKUP_FAILED   ErrorCode = "MARKET_LOOKUP_FAILED"
	SEARCH_REQUEST_FAILED  ErrorCode = "SEARCH_REQUEST_FAILED"
)

// MeridianError represents a structured error with error code, message, and optional cause.
// It supports error wrapping and retryability hints for error handling logic.
type MeridianError struct {
	Code      ErrorCode
	Message   string
	Retryable bool
	Cause     error
}

// Error implements the error interface, returning a formatted error message.
// Format: "[CODE] message" or "[CODE] message: cause" if cause exists.
func (e *MeridianError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error for error unwrapping chains.
// This enables using errors.Is() and errors.As() with wrapped errors.
func (e *MeridianError) Unwrap() error {
	return e.Cause
}

// Is checks if the target error matches this error by error code.
// Returns true if target is a MeridianError with the same Code.
func (e *MeridianError) Is(target error) bool {
	var merr *MeridianError
	if errors.As(target, &merr) {
		return e.Code == merr.Code
	}
	return false
}

// NewError creates a new non-retryable MeridianError with the given code and message.
func NewError(code ErrorCode, message string) *MeridianError {
	return &MeridianError{
		Code:      code,
		Message:   message,
		Retryable: false,
		Cause:     nil,
	}
}

// NewRetryableError creates a new retryable MeridianError with the given code and message.
// Use this for transient errors that may succeed on retry (e.g., network timeouts).
func NewRetryableError(code ErrorCode, message string) *MeridianError {
	return &MeridianError{
		Code:      code,
		Message:   message,
		Retryable: true,
		Cause:     nil,
	}
}

// WrapError creates a new non-retryable MeridianError that wraps an existing error.
// The wrapped error is accessible via Unwrap() for error chain inspection.
func WrapError(code ErrorCode, message string, cause error) *MeridianError {
	return &MeridianError{
		Code:      code,
		Message:   message,
		Retryable: false,
		Cause:     cause,
	}
}

// IsRetryable reports whether err (or any error in its chain) is a retryable
// MeridianError. Non-MeridianError values are never retryable.
func IsRetryable(err error) bool {
	var merr *MeridianError
	if errors.As(err, &merr) {
		return merr.Retryable
	}
	return false
}

// CodeOf extracts the ErrorCode from err's chain, or returns the empty code
// when err is not a MeridianError.
func CodeOf(err error) ErrorCode {
	var merr *MeridianError
	if errors.As(err, &merr) {
		return merr.Code
	}
	return ""
}
