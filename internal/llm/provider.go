package llm

import (
	"context"
	"fmt"
)

// Provider defines the interface that all LLM providers must implement.
// It provides a unified abstraction over hosted services (OpenAI, Anthropic)
// and local models (Ollama).
type Provider interface {
	// Name returns the provider name (e.g., "openai", "anthropic", "ollama")
	Name() string

	// Complete sends a completion request and returns the full response.
	// This is a blocking call that waits for the entire response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// ProviderConfig holds the settings needed to construct a provider.
type ProviderConfig struct {
	// Provider selects the backend: "openai", "anthropic", or "ollama".
	Provider string `json:"provider" yaml:"provider" mapstructure:"provider"`

	// Model is the default model identifier for completion requests.
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey authenticates with hosted providers. Falls back to the
	// provider's conventional environment variable when empty.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// BaseURL overrides the provider endpoint. For Ollama this is the
	// server URL, defaulting to http://localhost:11434.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// Temperature applies to requests that do not set their own.
	Temperature float64 `json:"temperature,omitempty" yaml:"temperature,omitempty" mapstructure:"temperature"`

	// MaxTokens applies to requests that do not set their own.
	MaxTokens int `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty" mapstructure:"max_tokens"`
}

// Validate checks that the config can construct a working provider.
func (c ProviderConfig) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("provider is required")
	}
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.Temperature < 0 || c.Temperature > 1 {
		return fmt.Errorf("temperature must be between 0 and 1, got %f", c.Temperature)
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("max_tokens must be non-negative, got %d", c.MaxTokens)
	}
	return nil
}
