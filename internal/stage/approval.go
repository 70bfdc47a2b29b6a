package stage

import (
	"context"

	"github.com/meridian-ai/meridian/internal/state"
)

// HumanApproval records approval of the reviewed draft. The pause for
// an actual human happens before this stage runs, via the engine's
// interrupt gate; by the time Execute is reached the operator has
// resumed the thread, which is the approval signal.
type HumanApproval struct {
	opts options
}

// NewHumanApproval creates the human-approval stage.
func NewHumanApproval(opts ...Option) *HumanApproval {
	return &HumanApproval{opts: applyOptions(opts)}
}

// Name implements graph.Stage.
func (h *HumanApproval) Name() string { return StageHumanApproval }

// Execute implements graph.Stage.
func (h *HumanApproval) Execute(ctx context.Context, s state.State) state.Delta {
	h.opts.logger.InfoContext(ctx, "Draft approved", "company", s.Company)

	approved := true
	return state.Delta{
		HumanApproved: &approved,
		CurrentStage:  CompleteMarker(StageHumanApproval),
	}
}
