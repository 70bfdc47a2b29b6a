package main

import (
	"fmt"
	"os"

	"github.com/meridian-ai/meridian/cmd/meridian/internal"
	"github.com/meridian-ai/meridian/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect Meridian configuration",
	Long: `The config command provides subcommands for viewing and validating
Meridian configuration.

Configuration is stored in YAML format at ~/.meridian/config.yaml by
default, with MERIDIAN_* environment variables layered on top.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the effective configuration",
	Long: `Display the configuration the pipeline would run with: file values,
environment overrides and defaults merged. API keys are redacted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		formatter := internal.NewFormatter(globalFlags.OutputFormat(), cmd.OutOrStdout())

		redacted := redactSecrets(*appConfig)
		if globalFlags.OutputFormat() == internal.FormatJSON {
			return formatter.PrintJSON(redacted)
		}

		out, err := yaml.Marshal(redacted)
		if err != nil {
			return internal.WrapError(internal.ExitError, "failed to render configuration", err)
		}
		cmd.Print(string(out))
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the resolved config file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.Println(resolveConfigPath())
		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Validate the Meridian configuration file for correctness.

This checks:
  - YAML syntax is valid
  - Provider and backend selectors name known implementations
  - Values are within acceptable ranges`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configFile := resolveConfigPath()

		if _, err := os.Stat(configFile); os.IsNotExist(err) {
			return internal.NewCLIError(internal.ExitConfigError,
				fmt.Sprintf("config file does not exist: %s", configFile))
		}

		if _, err := config.Load(configFile); err != nil {
			return err
		}

		cmd.Println("Configuration is valid")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configValidateCmd)
}

// resolveConfigPath mirrors the lookup setupApp performs: flag, then
// MERIDIAN_HOME, then the default home directory.
func resolveConfigPath() string {
	if globalFlags.ConfigFile != "" {
		return globalFlags.ConfigFile
	}
	homeDir := globalFlags.HomeDir
	if homeDir == "" {
		homeDir = os.Getenv("MERIDIAN_HOME")
	}
	if homeDir == "" {
		homeDir = config.DefaultHomeDir()
	}
	return config.DefaultConfigPath(homeDir)
}

// redactSecrets blanks API keys on a copy of the configuration.
func redactSecrets(cfg config.Config) config.Config {
	if cfg.LLM.APIKey != "" {
		cfg.LLM.APIKey = "[redacted]"
	}
	if cfg.Market.APIKey != "" {
		cfg.Market.APIKey = "[redacted]"
	}
	if cfg.Search.APIKey != "" {
		cfg.Search.APIKey = "[redacted]"
	}
	return cfg
}
