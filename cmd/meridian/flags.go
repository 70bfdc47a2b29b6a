package main

import (
	"fmt"

	"github.com/meridian-ai/meridian/cmd/meridian/internal"
	"github.com/spf13/cobra"
)

// GlobalFlags holds global flags available to all commands
type GlobalFlags struct {
	Verbose    bool
	Quiet      bool
	Output     string
	ConfigFile string
	HomeDir    string
	LogFormat  string
}

var globalFlags = &GlobalFlags{}

// RegisterGlobalFlags registers persistent flags on the root command
func RegisterGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "Enable verbose output")
	cmd.PersistentFlags().BoolVarP(&globalFlags.Quiet, "quiet", "q", false, "Suppress non-essential output")
	cmd.PersistentFlags().StringVarP(&globalFlags.Output, "output", "o", "text", "Output format (text|json)")
	cmd.PersistentFlags().StringVar(&globalFlags.ConfigFile, "config", "", "Path to config file (default: $MERIDIAN_HOME/config.yaml)")
	cmd.PersistentFlags().StringVar(&globalFlags.HomeDir, "home", "", "Meridian home directory (default: ~/.meridian)")
	cmd.PersistentFlags().StringVar(&globalFlags.LogFormat, "log-format", "", "Log format override (text|json)")
}

// ParseGlobalFlags parses and validates global flags from the command
func ParseGlobalFlags(cmd *cobra.Command) (*GlobalFlags, error) {
	if globalFlags.Output != string(internal.FormatText) && globalFlags.Output != string(internal.FormatJSON) {
		return nil, internal.NewCLIError(internal.ExitError,
			fmt.Sprintf("invalid output format %q (expected text or json)", globalFlags.Output))
	}

	if globalFlags.LogFormat != "" && globalFlags.LogFormat != "text" && globalFlags.LogFormat != "json" {
		return nil, internal.NewCLIError(internal.ExitError,
			fmt.Sprintf("invalid log format %q (expected text or json)", globalFlags.LogFormat))
	}

	if globalFlags.Verbose && globalFlags.Quiet {
		return nil, internal.NewCLIError(internal.ExitError, "--verbose and --quiet cannot be used together")
	}

	return globalFlags, nil
}

// OutputFormat returns the parsed output format enum
func (f *GlobalFlags) OutputFormat() internal.OutputFormat {
	if f.Output == string(internal.FormatJSON) {
		return internal.FormatJSON
	}
	return internal.FormatText
}

// IsVerbose returns true if verbose mode is enabled
func (f *GlobalFlags) IsVerbose() bool {
	return f.Verbose && !f.Quiet
}

// IsQuiet returns true if quiet mode is enabled
func (f *GlobalFlags) IsQuiet() bool {
	return f.Quiet
}
