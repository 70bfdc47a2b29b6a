package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"

	"github.com/meridian-ai/meridian/internal/types"
)

// Load reads configuration from the given YAML file, layering
// MERIDIAN_* environment variables over it (MERIDIAN_LLM_MODEL
// overrides llm.model) and interpolating ${VAR} references inside
// string values. The result is validated before it is returned.
func Load(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, types.WrapError(types.CONFIG_NOT_FOUND,
				fmt.Sprintf("config file %q not found", path), err)
		}
		return nil, types.WrapError(types.CONFIG_LOAD_FAILED,
			fmt.Sprintf("failed to read config file %q", path), err)
	}

	return finish(v)
}

// LoadOrDefault behaves like Load, but a missing file yields the
// default configuration, still subject to environment overrides.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return finish(newViper())
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return finish(newViper())
	}
	return Load(path)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	v.SetEnvPrefix("MERIDIAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, types.WrapError(types.CONFIG_PARSE_FAILED,
			"failed to unmarshal config", err)
	}

	interpolate(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envPattern matches ${VAR} and ${VAR:-default}.
var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-[^}]*)?\}`)

// interpolate expands environment references in the string fields that
// commonly carry secrets or machine-specific paths.
func interpolate(cfg *Config) {
	cfg.LLM.APIKey = expandEnv(cfg.LLM.APIKey)
	cfg.LLM.BaseURL = expandEnv(cfg.LLM.BaseURL)
	cfg.LLM.Model = expandEnv(cfg.LLM.Model)
	cfg.Market.BaseURL = expandEnv(cfg.Market.BaseURL)
	cfg.Market.APIKey = expandEnv(cfg.Market.APIKey)
	cfg.Search.BaseURL = expandEnv(cfg.Search.BaseURL)
	cfg.Search.APIKey = expandEnv(cfg.Search.APIKey)
	cfg.Checkpoint.Path = expandEnv(cfg.Checkpoint.Path)
}

// expandEnv replaces ${VAR} with the variable's value and
// ${VAR:-default} with the default when the variable is unset or
// empty. Unresolved ${VAR} references are left as written.
func expandEnv(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(match string) string {
		groups := envPattern.FindStringSubmatch(match)
		if value := os.Getenv(groups[1]); value != "" {
			return value
		}
		if fallback, ok := strings.CutPrefix(groups[2], ":-"); ok {
			return fallback
		}
		return match
	})
}
