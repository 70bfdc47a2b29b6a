package main

import (
	"fmt"

	"github.com/meridian-ai/meridian/cmd/meridian/internal"
	"github.com/meridian-ai/meridian/internal/checkpoint"
	"github.com/spf13/cobra"
)

var stateCmd = &cobra.Command{
	Use:   "state <thread-id>",
	Short: "Dump the stored snapshot for a thread",
	Long: `Print the latest checkpoint for a thread as JSON: the accumulated
state after the last completed stage, the pending stage when the run
is suspended, and the snapshot version counter.`,
	Example: `  meridian state thread-01J9PYM3WZV5E8R4T2C6H7K9QD

  # Extract the draft report with jq
  meridian state thread-01J9PYM3WZV5E8R4T2C6H7K9QD | jq -r .state.draft_report`,
	Args: cobra.ExactArgs(1),
	RunE: runState,
}

func runState(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	threadID := args[0]

	coord, err := newCoordinator()
	if err != nil {
		return err
	}

	snap, err := coord.Snapshot(ctx, threadID)
	if err != nil {
		if checkpoint.IsNotFound(err) {
			return internal.WrapError(internal.ExitError,
				fmt.Sprintf("no run found for thread %q", threadID), err)
		}
		return err
	}

	// Snapshot dumps are JSON in both output modes.
	formatter := internal.NewFormatter(globalFlags.OutputFormat(), cmd.OutOrStdout())
	return formatter.PrintJSON(snap)
}
