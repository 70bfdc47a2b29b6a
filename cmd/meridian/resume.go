package main

import (
	"fmt"

	"github.com/meridian-ai/meridian/cmd/meridian/internal"
	"github.com/meridian-ai/meridian/internal/checkpoint"
	"github.com/spf13/cobra"
)

var resumeCmd = &cobra.Command{
	Use:   "resume <thread-id>",
	Short: "Resume a run suspended at the approval gate",
	Long: `Resume a thread that suspended before the human-approval stage.

Resuming approves the draft: the human-approval stage records the
sign-off and the run continues through risk assessment and
finalization.`,
	Example: `  # Continue a gated run
  meridian resume thread-01J9PYM3WZV5E8R4T2C6H7K9QD

  # Watch stage events while it finishes
  meridian resume thread-01J9PYM3WZV5E8R4T2C6H7K9QD --stream`,
	Args: cobra.ExactArgs(1),
	RunE: runResume,
}

var resumeStream bool

func init() {
	resumeCmd.Flags().BoolVar(&resumeStream, "stream", false, "Print stage events as the run progresses")
}

func runResume(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	threadID := args[0]

	coord, err := newCoordinator()
	if err != nil {
		return err
	}

	if resumeStream {
		events := coord.StreamResume(ctx, threadID)
		terminal := printEventStream(cmd, events)
		return printStoredOutcome(cmd, coord, threadID, terminal)
	}

	result, err := coord.Resume(ctx, threadID)
	if err != nil {
		if checkpoint.IsNotFound(err) {
			return internal.WrapError(internal.ExitError,
				fmt.Sprintf("no run found for thread %q", threadID), err)
		}
		return err
	}
	return printRunResult(cmd, result)
}
