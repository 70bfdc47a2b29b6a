package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/meridian-ai/meridian/internal/graph"
	"github.com/meridian-ai/meridian/internal/stage"
	"github.com/meridian-ai/meridian/internal/state"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCaptureCommand() (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	cmd := &cobra.Command{}
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	return cmd, out, errOut
}

func TestPrintRunResult_Completed(t *testing.T) {
	setFlags(t, GlobalFlags{Output: "text"})
	cmd, out, errOut := newCaptureCommand()

	result := &graph.Result{
		ThreadID: "thread-1",
		Status:   graph.StatusCompleted,
		State: state.State{
			FinalReport: "# Apple Inc. Research Report",
			Errors:      []string{"researcher: search unavailable"},
		},
		Visited:  []string{"planner", "researcher", "simple-response"},
		Duration: 120 * time.Millisecond,
	}

	require.NoError(t, printRunResult(cmd, result))

	assert.Contains(t, out.String(), "# Apple Inc. Research Report")
	assert.Contains(t, errOut.String(), "1 stage error(s)")
	assert.Contains(t, errOut.String(), "researcher: search unavailable")
	assert.Contains(t, errOut.String(), "Thread: thread-1 (3 stages in 120ms)")
}

func TestPrintRunResult_CompletedQuiet(t *testing.T) {
	setFlags(t, GlobalFlags{Output: "text", Quiet: true})
	cmd, out, errOut := newCaptureCommand()

	result := &graph.Result{
		ThreadID: "thread-1",
		Status:   graph.StatusCompleted,
		State:    state.State{FinalReport: "# Report"},
	}

	require.NoError(t, printRunResult(cmd, result))

	assert.Contains(t, out.String(), "# Report")
	assert.Empty(t, errOut.String())
}

func TestPrintRunResult_Suspended(t *testing.T) {
	setFlags(t, GlobalFlags{Output: "text"})
	cmd, out, _ := newCaptureCommand()

	result := &graph.Result{
		ThreadID:  "thread-2",
		Status:    graph.StatusSuspended,
		NextStage: stage.StageHumanApproval,
	}

	require.NoError(t, printRunResult(cmd, result))

	assert.Contains(t, out.String(), "Run suspended before human-approval")
	assert.Contains(t, out.String(), "Thread: thread-2")
	assert.Contains(t, out.String(), "meridian resume thread-2")
}

func TestPrintRunResult_JSON(t *testing.T) {
	setFlags(t, GlobalFlags{Output: "json"})
	cmd, out, _ := newCaptureCommand()

	result := &graph.Result{
		ThreadID: "thread-3",
		Status:   graph.StatusCompleted,
		State:    state.State{FinalReport: "# Report"},
	}

	require.NoError(t, printRunResult(cmd, result))

	assert.Contains(t, out.String(), `"thread_id": "thread-3"`)
	assert.Contains(t, out.String(), `"status": "completed"`)
}

func TestPrintEventStream(t *testing.T) {
	cmd, out, errOut := newCaptureCommand()

	events := make(chan graph.Event, 8)
	events <- graph.NewRunStartedEvent("t1", "What is Apple's stock price?")
	events <- graph.NewStageStartedEvent("t1", "planner", 1)
	events <- graph.NewStageCompletedEvent("t1", "planner", "researcher")
	events <- graph.NewStageCompletedEvent("t1", "simple-response", graph.End)
	events <- graph.NewRunCompletedEvent("t1", 3, time.Second)
	close(events)

	terminal := printEventStream(cmd, events)

	assert.Equal(t, graph.EventRunCompleted, terminal.Type)
	assert.Contains(t, errOut.String(), "run started")
	assert.Contains(t, errOut.String(), "▸ planner")
	assert.Contains(t, errOut.String(), "✓ planner -> researcher")
	assert.Contains(t, errOut.String(), "simple-response -> end")
	assert.Contains(t, errOut.String(), "run completed")
	assert.Empty(t, out.String(), "event lines never land on stdout")
}

func TestPrintEventStream_Suspended(t *testing.T) {
	cmd, _, errOut := newCaptureCommand()

	events := make(chan graph.Event, 2)
	events <- graph.NewRunSuspendedEvent("t2", stage.StageHumanApproval)
	close(events)

	terminal := printEventStream(cmd, events)

	assert.Equal(t, graph.EventRunSuspended, terminal.Type)
	assert.Contains(t, errOut.String(), "run suspended before human-approval")
}

func TestPrintEventStream_Failed(t *testing.T) {
	cmd, _, errOut := newCaptureCommand()

	events := make(chan graph.Event, 2)
	events <- graph.NewRunFailedEvent("t3", "analyst", assert.AnError)
	close(events)

	terminal := printEventStream(cmd, events)

	assert.Equal(t, graph.EventRunFailed, terminal.Type)
	assert.Contains(t, errOut.String(), "run failed at analyst")
}
