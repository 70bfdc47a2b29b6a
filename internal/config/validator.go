package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/meridian-ai/meridian/internal/types"
)

// knownLLMProviders are the backends the provider factory can build.
var knownLLMProviders = map[string]bool{
	"openai":    true,
	"anthropic": true,
	"ollama":    true,
}

// Validate checks the configuration for structural problems: enum
// fields outside their accepted values, numeric fields out of range,
// and cross-field requirements such as an sqlite backend without a
// path. All problems are reported together.
func Validate(cfg *Config) error {
	if cfg == nil {
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "configuration is nil")
	}

	var problems []string

	if err := validator.New().Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return types.WrapError(types.CONFIG_VALIDATION_FAILED, "configuration validation failed", err)
		}
		for _, fe := range fieldErrs {
			problems = append(problems, formatFieldError(fe))
		}
	}

	if err := cfg.LLM.Validate(); err != nil {
		problems = append(problems, fmt.Sprintf("llm: %v", err))
	}
	if cfg.LLM.Provider != "" && !knownLLMProviders[cfg.LLM.Provider] {
		problems = append(problems, fmt.Sprintf("llm.provider must be one of [openai anthropic ollama] (got: %q)", cfg.LLM.Provider))
	}

	if cfg.Checkpoint.Backend == "sqlite" && cfg.Checkpoint.Path == "" {
		problems = append(problems, "checkpoint.path is required when checkpoint.backend is sqlite")
	}
	if cfg.Market.Provider == "http" && cfg.Market.BaseURL == "" {
		problems = append(problems, "market.base_url is required when market.provider is http")
	}
	if cfg.Search.Provider == "http" && cfg.Search.APIKey == "" {
		problems = append(problems, "search.api_key is required when search.provider is http")
	}

	if len(problems) > 0 {
		return types.NewError(types.CONFIG_VALIDATION_FAILED,
			"configuration validation failed:\n  - "+strings.Join(problems, "\n  - "))
	}
	return nil
}

// formatFieldError renders one struct-tag violation with a yaml-style
// field path.
func formatFieldError(fe validator.FieldError) string {
	path := fieldPath(fe.Namespace())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", path)
	case "min":
		return fmt.Sprintf("%s must be at least %s (got: %v)", path, fe.Param(), fe.Value())
	case "max":
		return fmt.Sprintf("%s must be at most %s (got: %v)", path, fe.Param(), fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s] (got: %v)", path, fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed validation %q (got: %v)", path, fe.Tag(), fe.Value())
	}
}

// fieldPath converts a validator namespace like "Config.Search.MaxResults"
// into "search.max_results".
func fieldPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) <= 1 {
		return strings.ToLower(namespace)
	}

	out := make([]string, 0, len(parts)-1)
	for _, part := range parts[1:] {
		out = append(out, camelToSnake(part))
	}
	return strings.Join(out, ".")
}

func camelToSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			prev := rune(s[i-1])
			if prev < 'A' || prev > 'Z' {
				b.WriteRune('_')
			}
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}
