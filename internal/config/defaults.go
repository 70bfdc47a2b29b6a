package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/meridian-ai/meridian/internal/llm"
)

// DefaultConfig returns the zero-config setup: static collaborators, an
// in-memory checkpoint store, and an OpenAI-backed model whose key is
// resolved from the environment at wiring time.
func DefaultConfig() *Config {
	return &Config{
		LLM: llmDefaults(),
		Market: MarketConfig{
			Provider:  "static",
			RateLimit: 5,
		},
		Search: SearchConfig{
			Provider:   "static",
			MaxResults: 5,
			RateLimit:  2,
		},
		Checkpoint: CheckpointConfig{
			Backend: "memory",
		},
		Engine: EngineConfig{
			MaxSteps:        25,
			RequireApproval: false,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func llmDefaults() llm.ProviderConfig {
	return llm.ProviderConfig{
		Provider:    "openai",
		Model:       "gpt-4o-mini",
		Temperature: 0.2,
		MaxTokens:   2048,
	}
}

// setDefaults registers the same defaults on a viper instance so that
// file and environment values merge over them.
func setDefaults(v *viper.Viper) {
	lc := llmDefaults()
	v.SetDefault("llm.provider", lc.Provider)
	v.SetDefault("llm.model", lc.Model)
	v.SetDefault("llm.temperature", lc.Temperature)
	v.SetDefault("llm.max_tokens", lc.MaxTokens)

	v.SetDefault("market.provider", "static")
	v.SetDefault("market.rate_limit", 5)

	v.SetDefault("search.provider", "static")
	v.SetDefault("search.max_results", 5)
	v.SetDefault("search.rate_limit", 2)

	v.SetDefault("checkpoint.backend", "memory")
	v.SetDefault("checkpoint.max_entries", 0)
	v.SetDefault("checkpoint.ttl", 0)

	v.SetDefault("engine.max_steps", 25)
	v.SetDefault("engine.require_approval", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// DefaultHomeDir returns ~/.meridian, falling back to the temp
// directory when the user home cannot be determined.
func DefaultHomeDir() string {
	userHome, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".meridian")
	}
	return filepath.Join(userHome, ".meridian")
}

// DefaultConfigPath returns the config file path under a home directory.
func DefaultConfigPath(homeDir string) string {
	return filepath.Join(homeDir, "config.yaml")
}
