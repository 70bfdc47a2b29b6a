package stage

import (
	"github.com/meridian-ai/meridian/internal/state"
)

// MaxRevisions bounds the writer/quality-checker revision loop. Once a
// draft has been revised this many times it proceeds regardless of the
// reviewer's verdict.
const MaxRevisions = 2

// Routing labels returned by the decision functions.
const (
	RouteSimple     = "simple"
	RouteComplex    = "complex"
	DecisionApprove = "approve"
	DecisionRevise  = "revise"
)

// RouteByComplexity routes after the planner. Unknown complexity takes
// the complex path; a misrouted simple query costs latency, a
// misrouted complex query loses the whole analysis.
func RouteByComplexity(st state.State) string {
	return string(st.Complexity.OrDefault())
}

// RouteAfterResearch routes after the researcher, splitting simple
// queries onto the quick-lookup path and complex ones into analysis.
func RouteAfterResearch(st state.State) string {
	return string(st.Complexity.OrDefault())
}

// ShouldRevise routes after the quality checker: approve when the
// review passed or the revision budget is spent, revise otherwise.
func ShouldRevise(st state.State) string {
	if st.QualityReview != nil && st.QualityReview.Passed {
		return DecisionApprove
	}
	if st.RevisionCount >= MaxRevisions {
		return DecisionApprove
	}
	return DecisionRevise
}
