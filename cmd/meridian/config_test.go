package main

import (
	"path/filepath"
	"testing"

	"github.com/meridian-ai/meridian/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestRedactSecrets(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LLM.APIKey = "sk-secret"
	cfg.Search.APIKey = "tvly-secret"

	redacted := redactSecrets(*cfg)

	assert.Equal(t, "[redacted]", redacted.LLM.APIKey)
	assert.Equal(t, "[redacted]", redacted.Search.APIKey)
	assert.Empty(t, redacted.Market.APIKey, "unset keys stay empty rather than redacted")

	// The original is untouched.
	assert.Equal(t, "sk-secret", cfg.LLM.APIKey)
}

func TestResolveConfigPath_FlagWins(t *testing.T) {
	setFlags(t, GlobalFlags{Output: "text", ConfigFile: "/tmp/meridian.yaml"})

	assert.Equal(t, "/tmp/meridian.yaml", resolveConfigPath())
}

func TestResolveConfigPath_HomeFlag(t *testing.T) {
	setFlags(t, GlobalFlags{Output: "text", HomeDir: "/srv/meridian"})

	assert.Equal(t, filepath.Join("/srv/meridian", "config.yaml"), resolveConfigPath())
}

func TestResolveConfigPath_HomeEnv(t *testing.T) {
	setFlags(t, GlobalFlags{Output: "text"})
	t.Setenv("MERIDIAN_HOME", "/data/meridian")

	assert.Equal(t, filepath.Join("/data/meridian", "config.yaml"), resolveConfigPath())
}
