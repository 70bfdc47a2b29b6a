package state

// Delta is a partial state update produced by a single stage execution. Fields
// left at their zero value (nil for pointers and slices, "" for strings) are
// untouched by Merge; a non-nil empty Plan slice replaces the existing plan.
//
// Stages communicate failure through Errors entries and degraded field values,
// never by omitting their completion marker, so a Delta is always mergeable.
type Delta struct {
	Query             string             `json:"query,omitempty"`
	Company           string             `json:"company,omitempty"`
	Complexity        Complexity         `json:"complexity,omitempty"`
	Plan              []Subtask          `json:"plan,omitempty"`
	Findings          []Finding          `json:"findings,omitempty"`
	FinancialSnapshot *FinancialSnapshot `json:"financial_snapshot,omitempty"`
	Analysis          *Analysis          `json:"analysis,omitempty"`
	DraftReport       string             `json:"draft_report,omitempty"`
	QualityReview     *QualityReview     `json:"quality_review,omitempty"`
	RevisionCount     *int               `json:"revision_count,omitempty"`
	RiskAssessment    *RiskAssessment    `json:"risk_assessment,omitempty"`
	HumanApproved     *bool              `json:"human_approved,omitempty"`
	CurrentStage      string             `json:"current_stage,omitempty"`
	FinalReport       string             `json:"final_report,omitempty"`
	Errors            []string           `json:"errors,omitempty"`
}

// IsEmpty returns true if merging the delta would leave any state unchanged.
func (d Delta) IsEmpty() bool {
	return d.Query == "" &&
		d.Company == "" &&
		d.Complexity == "" &&
		d.Plan == nil &&
		len(d.Findings) == 0 &&
		d.FinancialSnapshot == nil &&
		d.Analysis == nil &&
		d.DraftReport == "" &&
		d.QualityReview == nil &&
		d.RevisionCount == nil &&
		d.RiskAssessment == nil &&
		d.HumanApproved == nil &&
		d.CurrentStage == "" &&
		d.FinalReport == "" &&
		d.Errors == nil
}

// Merge folds a stage delta into the current state and returns the result.
// Neither input is mutated.
//
// Field policies:
//   - Findings and Errors append in delta order; existing entries are never
//     removed or reordered.
//   - Query is set once: a delta value is ignored when the state already
//     carries a query.
//   - RevisionCount never decreases.
//   - Every other field is last-write-wins, and a zero-value delta field
//     leaves the current value untouched.
func Merge(current State, delta Delta) State {
	next := current.Clone()

	if next.Query == "" && delta.Query != "" {
		next.Query = delta.Query
	}
	if delta.Company != "" {
		next.Company = delta.Company
	}
	if delta.Complexity != "" {
		next.Complexity = delta.Complexity
	}
	if delta.Plan != nil {
		next.Plan = cloneSubtasks(delta.Plan)
	}
	if len(delta.Findings) > 0 {
		next.Findings = append(next.Findings, cloneFindings(delta.Findings)...)
	}
	if delta.FinancialSnapshot != nil {
		next.FinancialSnapshot = delta.FinancialSnapshot.Clone()
	}
	if delta.Analysis != nil {
		next.Analysis = delta.Analysis.Clone()
	}
	if delta.DraftReport != "" {
		next.DraftReport = delta.DraftReport
	}
	if delta.QualityReview != nil {
		next.QualityReview = delta.QualityReview.Clone()
	}
	if delta.RevisionCount != nil && *delta.RevisionCount > next.RevisionCount {
		next.RevisionCount = *delta.RevisionCount
	}
	if delta.RiskAssessment != nil {
		next.RiskAssessment = delta.RiskAssessment.Clone()
	}
	if delta.HumanApproved != nil {
		v := *delta.HumanApproved
		next.HumanApproved = &v
	}
	if delta.CurrentStage != "" {
		next.CurrentStage = delta.CurrentStage
	}
	if delta.FinalReport != "" {
		next.FinalReport = delta.FinalReport
	}
	if len(delta.Errors) > 0 {
		next.Errors = append(next.Errors, cloneStrings(delta.Errors)...)
	}

	return next
}
