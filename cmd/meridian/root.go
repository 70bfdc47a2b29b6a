package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/meridian-ai/meridian/internal/config"
	"github.com/meridian-ai/meridian/internal/pipeline"
	"github.com/spf13/cobra"
)

// Populated by setupApp before any command runs.
var (
	appConfig *config.Config
	appLogger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "meridian",
	Short: "Meridian - Multi-Agent Financial Research Reports",
	Long: `Meridian runs financial research queries through a multi-agent
workflow: a planner classifies the query, research and analysis
stages gather market data and evidence, and writer, quality-checker
and risk stages shape the final report.

Runs checkpoint after every stage. With approval gating enabled a run
suspends before the human-approval stage and can be resumed later.`,
	PersistentPreRunE: setupApp,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// Execute runs the root command with signal handling
func Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return rootCmd.ExecuteContext(ctx)
}

// setupApp loads configuration and builds the logger before any
// command runs.
func setupApp(cmd *cobra.Command, args []string) error {
	flags, err := ParseGlobalFlags(cmd)
	if err != nil {
		return err
	}

	// version, help, completion and config path work without
	// configuration, which may not exist yet
	switch cmd.Name() {
	case "version", "help", "completion", "path":
		return nil
	}

	// Determine home directory
	homeDir := flags.HomeDir
	if homeDir == "" {
		homeDir = os.Getenv("MERIDIAN_HOME")
	}
	if homeDir == "" {
		homeDir = config.DefaultHomeDir()
	}

	// Determine config file path
	configFile := flags.ConfigFile
	if configFile == "" {
		configFile = config.DefaultConfigPath(homeDir)
	}

	if _, statErr := os.Stat(configFile); statErr != nil {
		if os.IsNotExist(statErr) && flags.IsVerbose() {
			cmd.PrintErrf("Config file not found at %s, using defaults\n", configFile)
		}
	}

	cfg, err := config.LoadOrDefault(configFile)
	if err != nil {
		return err
	}

	// Flag overrides for logging
	if flags.IsVerbose() {
		cfg.Log.Level = "debug"
	}
	if flags.IsQuiet() {
		cfg.Log.Level = "error"
	}
	if flags.LogFormat != "" {
		cfg.Log.Format = flags.LogFormat
	}

	appConfig = cfg
	appLogger = newLogger(cfg.Log)
	return nil
}

// newLogger builds the process logger from the log configuration.
// Logs go to stderr so that stdout stays clean for report output.
func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// newCoordinator builds a pipeline coordinator from the loaded
// configuration. Mutators adjust a copy of the config, so command
// flags never leak into other commands.
func newCoordinator(mutators ...func(*config.Config)) (*pipeline.Coordinator, error) {
	cfg := *appConfig
	for _, mutate := range mutators {
		mutate(&cfg)
	}
	return pipeline.New(&cfg, pipeline.WithLogger(appLogger))
}

func init() {
	RegisterGlobalFlags(rootCmd)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(stateCmd)
	rootCmd.AddCommand(threadsCmd)
	rootCmd.AddCommand(evalCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println("Meridian v0.1.0")
	},
}

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for Meridian.

Bash:

  $ source <(meridian completion bash)

Zsh:

  $ meridian completion zsh > "${fpath[1]}/_meridian"

Fish:

  $ meridian completion fish | source

PowerShell:

  PS> meridian completion powershell | Out-String | Invoke-Expression
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	Run: func(cmd *cobra.Command, args []string) {
		switch args[0] {
		case "bash":
			_ = cmd.Root().GenBashCompletion(os.Stdout)
		case "zsh":
			_ = cmd.Root().GenZshCompletion(os.Stdout)
		case "fish":
			_ = cmd.Root().GenFishCompletion(os.Stdout, true)
		case "powershell":
			_ = cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
		}
	},
}
