package llm

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-ai/meridian/internal/types"
)

func TestTranslateError_Nil(t *testing.T) {
	assert.NoError(t, TranslateError("openai", nil))
}

func TestTranslateError_PassesThroughMeridianErrors(t *testing.T) {
	original := NewRateLimitError("openai")

	translated := TranslateError("openai", original)

	var merr *types.MeridianError
	require.ErrorAs(t, translated, &merr)
	assert.Equal(t, types.LLM_RATE_LIMITED, merr.Code)
	assert.Same(t, original, merr)
}

func TestTranslateError_Classification(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantCode  types.ErrorCode
		retryable bool
	}{
		{
			name:     "auth from api key",
			err:      errors.New("invalid api key provided"),
			wantCode: types.LLM_AUTH_FAILED,
		},
		{
			name:     "auth from unauthorized",
			err:      errors.New("401 Unauthorized"),
			wantCode: types.LLM_AUTH_FAILED,
		},
		{
			name:      "rate limit",
			err:       errors.New("429 Too Many Requests"),
			wantCode:  types.LLM_RATE_LIMITED,
			retryable: true,
		},
		{
			name:      "timeout",
			err:       errors.New("context deadline exceeded"),
			wantCode:  ErrTimeoutExceeded,
			retryable: true,
		},
		{
			name:      "network",
			err:       errors.New("connection refused"),
			wantCode:  ErrNetworkFailed,
			retryable: true,
		},
		{
			name:     "generic request failure",
			err:      errors.New("400 bad request: unknown model"),
			wantCode: types.LLM_REQUEST_FAILED,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			translated := TranslateError("openai", tt.err)

			var merr *types.MeridianError
			require.ErrorAs(t, translated, &merr)
			assert.Equal(t, tt.wantCode, merr.Code)
			assert.Equal(t, tt.retryable, merr.Retryable)
		})
	}
}

func TestTranslateError_PreservesCause(t *testing.T) {
	cause := errors.New("connection reset by peer")

	translated := TranslateError("ollama", cause)

	assert.ErrorIs(t, translated, cause)
}

func TestErrorConstructors(t *testing.T) {
	auth := NewAuthError("anthropic", nil)
	assert.Equal(t, types.LLM_AUTH_FAILED, auth.Code)
	assert.False(t, auth.Retryable)

	malformed := NewMalformedResponseError("openai", fmt.Errorf("unexpected end of input"))
	assert.Equal(t, types.LLM_RESPONSE_MALFORMED, malformed.Code)
	assert.False(t, malformed.Retryable)

	unavailable := NewProviderUnavailableError("ollama", errors.New("dial tcp"))
	assert.Equal(t, types.PROVIDER_UNAVAILABLE, unavailable.Code)
	assert.True(t, unavailable.Retryable)

	unknown := NewUnknownProviderError("watsonx")
	assert.Equal(t, types.PROVIDER_LOOKUP_FAILED, unknown.Code)
	assert.Contains(t, unknown.Message, "watsonx")
}
