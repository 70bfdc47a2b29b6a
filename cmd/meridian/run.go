package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/meridian-ai/meridian/cmd/meridian/internal"
	"github.com/meridian-ai/meridian/internal/config"
	"github.com/meridian-ai/meridian/internal/graph"
	"github.com/meridian-ai/meridian/internal/pipeline"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run \"<query>\"",
	Short: "Run a research query through the report pipeline",
	Long: `Run a financial research query through the multi-agent pipeline.

The planner classifies the query as a simple metric lookup or a
complex research request and the run takes the matching path. The
final report prints to stdout; progress and diagnostics go to stderr.

With --approve the run pauses before the human-approval stage and
prints the thread ID to resume with. With --stream, stage events
print as the run progresses.`,
	Example: `  # Full pipeline run
  meridian run "Analyze Tesla's financial health and main risks"

  # Quick metric lookup
  meridian run "What is Apple's current stock price?"

  # Pause for human approval before the risk assessment
  meridian run "Analyze Goldman Sachs' outlook for 2026" --approve

  # Watch stage events as they land
  meridian run "Analyze Microsoft's AI strategy" --stream`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

var (
	runApprove bool
	runStream  bool
)

func init() {
	runCmd.Flags().BoolVar(&runApprove, "approve", false, "Pause before the human-approval stage; continue with 'meridian resume'")
	runCmd.Flags().BoolVar(&runStream, "stream", false, "Print stage events as the run progresses")
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	query := strings.TrimSpace(args[0])
	if query == "" {
		return internal.NewCLIError(internal.ExitError, "query must not be empty")
	}

	coord, err := newCoordinator(func(cfg *config.Config) {
		if runApprove {
			cfg.Engine.RequireApproval = true
		}
	})
	if err != nil {
		return err
	}

	if runStream {
		threadID, events := coord.Stream(ctx, query)
		cmd.PrintErrf("Thread: %s\n\n", threadID)

		terminal := printEventStream(cmd, events)
		return printStoredOutcome(cmd, coord, threadID, terminal)
	}

	result, err := coord.Start(ctx, query)
	if err != nil {
		return err
	}
	return printRunResult(cmd, result)
}

// printRunResult renders the outcome of a blocking Run or Resume call.
func printRunResult(cmd *cobra.Command, result *graph.Result) error {
	if globalFlags.OutputFormat() == internal.FormatJSON {
		formatter := internal.NewFormatter(internal.FormatJSON, cmd.OutOrStdout())
		return formatter.PrintJSON(result)
	}

	switch result.Status {
	case graph.StatusSuspended:
		cmd.Printf("Run suspended before %s.\n", result.NextStage)
		cmd.Printf("Thread: %s\n\n", result.ThreadID)
		cmd.Printf("Review the draft with 'meridian state %s',\n", result.ThreadID)
		cmd.Printf("then continue with 'meridian resume %s'\n", result.ThreadID)

	case graph.StatusCompleted:
		cmd.Println(result.State.FinalReport)
		printRunFooter(cmd, result)

	default:
		cmd.Printf("Run %s ended with status %s\n", result.ThreadID, result.Status)
	}

	return nil
}

// printRunFooter writes run diagnostics to stderr, keeping stdout
// clean for the report itself.
func printRunFooter(cmd *cobra.Command, result *graph.Result) {
	if globalFlags.IsQuiet() {
		return
	}

	if errs := result.State.Errors; len(errs) > 0 {
		cmd.PrintErrf("\n%d stage error(s) degraded this run:\n", len(errs))
		for _, msg := range errs {
			cmd.PrintErrf("  - %s\n", msg)
		}
	}

	cmd.PrintErrf("\nThread: %s (%d stages in %s)\n",
		result.ThreadID, len(result.Visited), result.Duration.Round(time.Millisecond))
}

// printEventStream renders lifecycle events to stderr until the channel
// closes and returns the terminal event. Stdout stays reserved for the
// report.
func printEventStream(cmd *cobra.Command, events <-chan graph.Event) graph.Event {
	var last graph.Event
	for ev := range events {
		last = ev
		switch ev.Type {
		case graph.EventRunStarted:
			cmd.PrintErrf("▸ run started\n")
		case graph.EventRunResumed:
			cmd.PrintErrf("▸ run resumed at %s\n", ev.Stage)
		case graph.EventStageStarted:
			cmd.PrintErrf("  ▸ %s\n", ev.Stage)
		case graph.EventStageCompleted:
			next := ev.Payload["next"]
			if next == graph.End {
				next = "end"
			}
			cmd.PrintErrf("  ✓ %s -> %v\n", ev.Stage, next)
		case graph.EventRunSuspended:
			cmd.PrintErrf("⏸ run suspended before %s\n", ev.Stage)
		case graph.EventRunCompleted:
			cmd.PrintErrf("✓ run completed in %v (%v steps)\n", ev.Payload["duration"], ev.Payload["steps"])
		case graph.EventRunFailed:
			cmd.PrintErrf("✗ run failed at %s: %v\n", ev.Stage, ev.Payload["error"])
		}
	}
	return last
}

// printStoredOutcome loads the checkpoint after a streamed run and
// prints the final report or the resume hint.
func printStoredOutcome(cmd *cobra.Command, coord *pipeline.Coordinator, threadID string, terminal graph.Event) error {
	ctx := cmd.Context()

	snap, err := coord.Snapshot(ctx, threadID)
	if err != nil {
		return err
	}

	if snap.Suspended() {
		cmd.Printf("\nContinue with 'meridian resume %s'\n", threadID)
		return nil
	}

	if terminal.Type == graph.EventRunFailed {
		return internal.NewCLIError(internal.ExitError, fmt.Sprintf("run %s failed", threadID))
	}

	if snap.State.FinalReport != "" {
		cmd.Printf("\n%s\n", snap.State.FinalReport)
	}
	return nil
}
