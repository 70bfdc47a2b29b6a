package types

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorCode_Constants(t *testing.T) {
	tests := []struct {
		name     string
		code     ErrorCode
		expected string
	}{
		// Configuration errors
		{"CONFIG_LOAD_FAILED", CONFIG_LOAD_FAILED, "CONFIG_LOAD_FAILED"},
		{"CONFIG_PARSE_FAILED", CONFIG_PARSE_FAILED, "CONFIG_PARSE_FAILED"},
		{"CONFIG_VALIDATION_FAILED", CONFIG_VALIDATION_FAILED, "CONFIG_VALIDATION_FAILED"},
		{"CONFIG_NOT_FOUND", CONFIG_NOT_FOUND, "CONFIG_NOT_FOUND"},

		// Graph engine errors
		{"GRAPH_BUILD_FAILED", GRAPH_BUILD_FAILED, "GRAPH_BUILD_FAILED"},
		{"GRAPH_STAGE_NOT_FOUND", GRAPH_STAGE_NOT_FOUND, "GRAPH_STAGE_NOT_FOUND"},
		{"GRAPH_NO_ROUTE", GRAPH_NO_ROUTE, "GRAPH_NO_ROUTE"},
		{"GRAPH_MAX_STEPS", GRAPH_MAX_STEPS, "GRAPH_MAX_STEPS"},
		{"GRAPH_STAGE_PANIC", GRAPH_STAGE_PANIC, "GRAPH_STAGE_PANIC"},
		{"GRAPH_NOT_SUSPENDED", GRAPH_NOT_SUSPENDED, "GRAPH_NOT_SUSPENDED"},

		// Checkpoint errors
		{"CHECKPOINT_NOT_FOUND", CHECKPOINT_NOT_FOUND, "CHECKPOINT_NOT_FOUND"},
		{"CHECKPOINT_CORRUPTED", CHECKPOINT_CORRUPTED, "CHECKPOINT_CORRUPTED"},
		{"CHECKPOINT_STORE_FAILED", CHECKPOINT_STORE_FAILED, "CHECKPOINT_STORE_FAILED"},
		{"CHECKPOINT_ENCODE_FAILED", CHECKPOINT_ENCODE_FAILED, "CHECKPOINT_ENCODE_FAILED"},

		// Text-generation errors
		{"LLM_REQUEST_FAILED", LLM_REQUEST_FAILED, "LLM_REQUEST_FAILED"},
		{"LLM_RESPONSE_MALFORMED", LLM_RESPONSE_MALFORMED, "LLM_RESPONSE_MALFORMED"},
		{"LLM_AUTH_FAILED", LLM_AUTH_FAILED, "LLM_AUTH_FAILED"},
		{"LLM_RATE_LIMITED", LLM_RATE_LIMITED, "LLM_RATE_LIMITED"},

		// Collaborator errors
		{"PROVIDER_LOOKUP_FAILED", PROVIDER_LOOKUP_FAILED, "PROVIDER_LOOKUP_FAILED"},
		{"PROVIDER_UNAVAILABLE", PROVIDER_UNAVAILABLE, "PROVIDER_UNAVAILABLE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if string(tt.code) != tt.expected {
				t.Errorf("ErrorCode = %v, want %v", tt.code, tt.expected)
			}
		})
	}
}

func TestMeridianError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *MeridianError
		contains []string
	}{
		{
			name: "simple error without cause",
			err:  NewError(CONFIG_LOAD_FAILED, "failed to load configuration"),
			contains: []string{
				"[CONFIG_LOAD_FAILED]",
				"failed to load configuration",
			},
		},
		{
			name: "error with cause",
			err:  WrapError(CHECKPOINT_STORE_FAILED, "checkpoint write failed", errors.New("disk full")),
			contains: []string{
				"[CHECKPOINT_STORE_FAILED]",
				"checkpoint write failed",
				"disk full",
			},
		},
		{
			name: "retryable error",
			err:  NewRetryableError(LLM_RATE_LIMITED, "rate limit exceeded"),
			contains: []string{
				"[LLM_RATE_LIMITED]",
				"rate limit exceeded",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errMsg := tt.err.Error()
			for _, substring := range tt.contains {
				if !strings.Contains(errMsg, substring) {
					t.Errorf("Error() = %v, want to contain %v", errMsg, substring)
				}
			}
		})
	}
}

func TestMeridianError_Unwrap(t *testing.T) {
	tests := []struct {
		name      string
		err       *MeridianError
		wantCause bool
	}{
		{
			name:      "error without cause",
			err:       NewError(CONFIG_PARSE_FAILED, "parse error"),
			wantCause: false,
		},
		{
			name:      "error with cause",
			err:       WrapError(CHECKPOINT_CORRUPTED, "checksum mismatch", errors.New("bad payload")),
			wantCause: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cause := tt.err.Unwrap()
			if tt.wantCause && cause == nil {
				t.Error("Unwrap() = nil, want non-nil cause")
			}
			if !tt.wantCause && cause != nil {
				t.Errorf("Unwrap() = %v, want nil", cause)
			}
		})
	}
}

func TestMeridianError_Is(t *testing.T) {
	baseErr := NewError(GRAPH_NO_ROUTE, "no route")
	sameCodeErr := NewError(GRAPH_NO_ROUTE, "different message")
	differentCodeErr := NewError(GRAPH_MAX_STEPS, "step limit")
	standardErr := errors.New("standard error")

	tests := []struct {
		name   string
		err    *MeridianError
		target error
		want   bool
	}{
		{
			name:   "same error code matches",
			err:    baseErr,
			target: sameCodeErr,
			want:   true,
		},
		{
			name:   "different error code does not match",
			err:    baseErr,
			target: differentCodeErr,
			want:   false,
		},
		{
			name:   "standard error does not match",
			err:    baseErr,
			target: standardErr,
			want:   false,
		},
		{
			name:   "wrapped error with same code matches",
			err:    WrapError(GRAPH_NO_ROUTE, "wrapped", standardErr),
			target: baseErr,
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Is(tt.target); got != tt.want {
				t.Errorf("Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewError(t *testing.T) {
	err := NewError(GRAPH_BUILD_FAILED, "graph validation failed")

	if err.Code != GRAPH_BUILD_FAILED {
		t.Errorf("Code = %v, want %v", err.Code, GRAPH_BUILD_FAILED)
	}
	if err.Message != "graph validation failed" {
		t.Errorf("Message = %v, want %v", err.Message, "graph validation failed")
	}
	if err.Retryable {
		t.Error("Retryable = true, want false")
	}
	if err.Cause != nil {
		t.Errorf("Cause = %v, want nil", err.Cause)
	}
}

func TestNewRetryableError(t *testing.T) {
	err := NewRetryableError(PROVIDER_UNAVAILABLE, "network timeout")

	if err.Code != PROVIDER_UNAVAILABLE {
		t.Errorf("Code = %v, want %v", err.Code, PROVIDER_UNAVAILABLE)
	}
	if err.Message != "network timeout" {
		t.Errorf("Message = %v, want %v", err.Message, "network timeout")
	}
	if !err.Retryable {
		t.Error("Retryable = false, want true")
	}
	if err.Cause != nil {
		t.Errorf("Cause = %v, want nil", err.Cause)
	}
}

func TestWrapError(t *testing.T) {
	cause := fmt.Errorf("underlying error")
	err := WrapError(CHECKPOINT_NOT_FOUND, "thread lookup failed", cause)

	if err.Code != CHECKPOINT_NOT_FOUND {
		t.Errorf("Code = %v, want %v", err.Code, CHECKPOINT_NOT_FOUND)
	}
	if err.Message != "thread lookup failed" {
		t.Errorf("Message = %v, want %v", err.Message, "thread lookup failed")
	}
	if err.Retryable {
		t.Error("Retryable = true, want false")
	}
	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
}

func TestMeridianError_ErrorsIsCompatibility(t *testing.T) {
	// Test that MeridianError works correctly with errors.Is()
	originalErr := errors.New("original error")
	wrappedErr := WrapError(CHECKPOINT_STORE_FAILED, "checkpoint save failed", originalErr)

	// Should be able to unwrap to original error
	if !errors.Is(wrappedErr, originalErr) {
		t.Error("errors.Is() should find wrapped original error")
	}

	// Should match by error code
	sameCodeErr := NewError(CHECKPOINT_STORE_FAILED, "different message")
	if !errors.Is(wrappedErr, sameCodeErr) {
		t.Error("errors.Is() should match by error code")
	}

	// Should not match different code
	differentCodeErr := NewError(CHECKPOINT_NOT_FOUND, "not found")
	if errors.Is(wrappedErr, differentCodeErr) {
		t.Error("errors.Is() should not match different error code")
	}
}

func TestMeridianError_ErrorsAsCompatibility(t *testing.T) {
	// Test that MeridianError works correctly with errors.As()
	err := WrapError(LLM_AUTH_FAILED, "token rejected", errors.New("401"))

	var merr *MeridianError
	if !errors.As(err, &merr) {
		t.Fatal("errors.As() should extract MeridianError")
	}

	if merr.Code != LLM_AUTH_FAILED {
		t.Errorf("extracted Code = %v, want %v", merr.Code, LLM_AUTH_FAILED)
	}
	if merr.Message != "token rejected" {
		t.Errorf("extracted Message = %v, want %v", merr.Message, "token rejected")
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(NewRetryableError(PROVIDER_UNAVAILABLE, "timeout")) {
		t.Error("IsRetryable() = false for retryable error, want true")
	}
	if IsRetryable(NewError(CONFIG_NOT_FOUND, "missing")) {
		t.Error("IsRetryable() = true for non-retryable error, want false")
	}
	if IsRetryable(errors.New("plain")) {
		t.Error("IsRetryable() = true for plain error, want false")
	}
	wrapped := fmt.Errorf("outer: %w", NewRetryableError(LLM_RATE_LIMITED, "slow down"))
	if !IsRetryable(wrapped) {
		t.Error("IsRetryable() should see through fmt.Errorf wrapping")
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(NewError(GRAPH_STAGE_PANIC, "boom")); got != GRAPH_STAGE_PANIC {
		t.Errorf("CodeOf() = %v, want %v", got, GRAPH_STAGE_PANIC)
	}
	if got := CodeOf(errors.New("plain")); got != "" {
		t.Errorf("CodeOf() = %v for plain error, want empty", got)
	}
}

// Benchmark error creation
func BenchmarkNewError(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = NewError(CONFIG_LOAD_FAILED, "configuration load failed")
	}
}

func BenchmarkWrapError(b *testing.B) {
	cause := errors.New("underlying error")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = WrapError(CHECKPOINT_STORE_FAILED, "checkpoint save failed", cause)
	}
}
