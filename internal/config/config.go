// Package config loads Meridian's configuration: YAML file, MERIDIAN_*
// environment overrides, and ${VAR} interpolation inside string values,
// validated before use.
package config

import (
	"time"

	"github.com/meridian-ai/meridian/internal/llm"
)

// Config is the root configuration for Meridian.
type Config struct {
	LLM        llm.ProviderConfig `mapstructure:"llm" yaml:"llm"`
	Market     MarketConfig       `mapstructure:"market" yaml:"market"`
	Search     SearchConfig       `mapstructure:"search" yaml:"search"`
	Checkpoint CheckpointConfig   `mapstructure:"checkpoint" yaml:"checkpoint"`
	Engine     EngineConfig       `mapstructure:"engine" yaml:"engine"`
	Log        LogConfig          `mapstructure:"log" yaml:"log"`
}

// MarketConfig selects and configures the market data provider.
type MarketConfig struct {
	// Provider selects the backend: "static" (built-in fixtures) or
	// "http".
	Provider string `mapstructure:"provider" yaml:"provider" validate:"oneof=static http"`

	// BaseURL is the market data API endpoint, required for "http".
	BaseURL string `mapstructure:"base_url" yaml:"base_url,omitempty"`

	// APIKey authenticates with the market data API.
	APIKey string `mapstructure:"api_key" yaml:"api_key,omitempty"`

	// RateLimit caps requests per second against the API.
	RateLimit float64 `mapstructure:"rate_limit" yaml:"rate_limit,omitempty" validate:"min=0"`
}

// SearchConfig selects and configures the web search client.
type SearchConfig struct {
	// Provider selects the backend: "static" (canned results) or "http".
	Provider string `mapstructure:"provider" yaml:"provider" validate:"oneof=static http"`

	// APIKey authenticates with the search API, required for "http".
	APIKey string `mapstructure:"api_key" yaml:"api_key,omitempty"`

	// BaseURL overrides the search API endpoint.
	BaseURL string `mapstructure:"base_url" yaml:"base_url,omitempty"`

	// MaxResults caps results per search.
	MaxResults int `mapstructure:"max_results" yaml:"max_results" validate:"min=1,max=20"`

	// RateLimit caps requests per second against the API.
	RateLimit float64 `mapstructure:"rate_limit" yaml:"rate_limit,omitempty" validate:"min=0"`
}

// CheckpointConfig selects and configures the checkpoint store.
type CheckpointConfig struct {
	// Backend selects the store: "memory" or "sqlite".
	Backend string `mapstructure:"backend" yaml:"backend" validate:"oneof=memory sqlite"`

	// Path is the database file, required for "sqlite".
	Path string `mapstructure:"path" yaml:"path,omitempty"`

	// MaxEntries bounds the memory store; zero means unbounded.
	MaxEntries int `mapstructure:"max_entries" yaml:"max_entries,omitempty" validate:"min=0"`

	// TTL expires idle memory-store entries; zero means no expiry.
	TTL time.Duration `mapstructure:"ttl" yaml:"ttl,omitempty" validate:"min=0"`
}

// EngineConfig tunes the workflow engine.
type EngineConfig struct {
	// MaxSteps bounds a single execution.
	MaxSteps int `mapstructure:"max_steps" yaml:"max_steps" validate:"min=1,max=1000"`

	// RequireApproval pauses runs before the human-approval stage.
	RequireApproval bool `mapstructure:"require_approval" yaml:"require_approval"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=text json"`
}
