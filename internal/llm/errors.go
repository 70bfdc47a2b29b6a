package llm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/meridian-ai/meridian/internal/types"
)

// LLM error codes beyond the core set in the types package.
const (
	ErrNetworkFailed   types.ErrorCode = "LLM_NETWORK_FAILED"
	ErrTimeoutExceeded types.ErrorCode = "LLM_TIMEOUT_EXCEEDED"
)

// NewAuthError creates an authentication error for a provider.
// Auth failures are not retryable.
func NewAuthError(provider string, cause error) *types.MeridianError {
	return &types.MeridianError{
		Code:    types.LLM_AUTH_FAILED,
		Message: fmt.Sprintf("provider %q authentication failed", provider),
		Cause:   cause,
	}
}

// NewRateLimitError creates a retryable error for rate limiting.
func NewRateLimitError(provider string) *types.MeridianError {
	return &types.MeridianError{
		Code:      types.LLM_RATE_LIMITED,
		Message:   "rate limit exceeded for provider: " + provider,
		Retryable: true,
	}
}

// NewTimeoutError creates a retryable error for timeout failures.
func NewTimeoutError(message string) *types.MeridianError {
	return &types.MeridianError{
		Code:      ErrTimeoutExceeded,
		Message:   message,
		Retryable: true,
	}
}

// NewNetworkError creates a retryable error for network failures.
func NewNetworkError(message string, cause error) *types.MeridianError {
	return &types.MeridianError{
		Code:      ErrNetworkFailed,
		Message:   message,
		Retryable: true,
		Cause:     cause,
	}
}

// NewMalformedResponseError creates an error for responses that could not be
// parsed into the expected structure.
func NewMalformedResponseError(provider string, cause error) *types.MeridianError {
	return &types.MeridianError{
		Code:    types.LLM_RESPONSE_MALFORMED,
		Message: fmt.Sprintf("provider %q returned a malformed response", provider),
		Cause:   cause,
	}
}

// NewProviderUnavailableError creates a retryable error for a provider that
// is temporarily unreachable.
func NewProviderUnavailableError(provider string, cause error) *types.MeridianError {
	return &types.MeridianError{
		Code:      types.PROVIDER_UNAVAILABLE,
		Message:   "provider temporarily unavailable: " + provider,
		Retryable: true,
		Cause:     cause,
	}
}

// NewUnknownProviderError creates an error for an unrecognized provider name.
func NewUnknownProviderError(name string) *types.MeridianError {
	return types.NewError(types.PROVIDER_LOOKUP_FAILED, "unknown provider: "+name)
}

// TranslateError translates raw client errors into Meridian errors based on
// the error message content. Errors that already carry a Meridian code pass
// through unchanged.
func TranslateError(provider string, err error) error {
	if err == nil {
		return nil
	}

	var merr *types.MeridianError
	if errors.As(err, &merr) {
		return err
	}

	lowerMsg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(lowerMsg, "unauthorized") ||
		strings.Contains(lowerMsg, "authentication") ||
		strings.Contains(lowerMsg, "api key"):
		return NewAuthError(provider, err)
	case strings.Contains(lowerMsg, "rate limit") || strings.Contains(lowerMsg, "too many requests"):
		return NewRateLimitError(provider)
	case strings.Contains(lowerMsg, "timeout") || strings.Contains(lowerMsg, "deadline"):
		return NewTimeoutError(err.Error())
	case strings.Contains(lowerMsg, "network") || strings.Contains(lowerMsg, "connection"):
		return NewNetworkError(err.Error(), err)
	default:
		return types.WrapError(types.LLM_REQUEST_FAILED,
			fmt.Sprintf("completion request to %q failed", provider), err)
	}
}
