package providers

import (
	"github.com/meridian-ai/meridian/internal/llm"
)

// New constructs a provider from its config. The provider name selects the
// backend; unknown names fail with a lookup error.
func New(cfg llm.ProviderConfig) (llm.Provider, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIProvider(cfg)
	case "anthropic":
		return NewAnthropicProvider(cfg)
	case "ollama":
		return NewOllamaProvider(cfg)
	default:
		return nil, llm.NewUnknownProviderError(cfg.Provider)
	}
}
