package main

import (
	"strconv"

	"github.com/meridian-ai/meridian/cmd/meridian/internal"
	"github.com/meridian-ai/meridian/internal/checkpoint"
	"github.com/meridian-ai/meridian/internal/stage"
	"github.com/spf13/cobra"
)

var threadsCmd = &cobra.Command{
	Use:   "threads",
	Short: "List stored run threads",
	Long: `List the threads known to the checkpoint store, most recently
updated first. Suspended threads can be continued with
'meridian resume'.`,
	RunE: runThreads,
}

func runThreads(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	coord, err := newCoordinator()
	if err != nil {
		return err
	}

	ids, err := coord.Threads(ctx)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		cmd.Println("No stored threads.")
		return nil
	}

	headers := []string{"thread", "status", "stage", "version", "updated"}
	rows := make([][]string, 0, len(ids))
	for _, id := range ids {
		snap, err := coord.Snapshot(ctx, id)
		if err != nil {
			// Listed but unloadable, usually a corrupted snapshot.
			rows = append(rows, []string{id, "unreadable", "", "", ""})
			continue
		}
		rows = append(rows, []string{
			id,
			threadStatus(snap),
			snap.State.CurrentStage,
			strconv.Itoa(snap.Version),
			snap.UpdatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	formatter := internal.NewFormatter(globalFlags.OutputFormat(), cmd.OutOrStdout())
	return formatter.PrintTable(headers, rows)
}

// threadStatus derives a display status from the snapshot.
func threadStatus(snap *checkpoint.Snapshot) string {
	if snap.Suspended() {
		return "suspended"
	}
	switch snap.State.CurrentStage {
	case stage.CompleteMarker(stage.StageFinalizer), stage.CompleteMarker(stage.StageSimpleResponse):
		return "completed"
	default:
		return "in-flight"
	}
}
