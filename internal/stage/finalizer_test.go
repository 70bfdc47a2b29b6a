package stage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-ai/meridian/internal/state"
)

func finalizerState() state.State {
	st := state.New("Write a research report on Apple")
	st.Company = "Apple Inc."
	st.DraftReport = "# Apple Inc. Research Report\n\nApproved body."
	st.RiskAssessment = &state.RiskAssessment{
		OverallRiskLevel: "elevated",
		Categories: map[string]state.RiskCategory{
			state.RiskFinancial: {Level: "low", Assessment: "Strong balance sheet"},
			state.RiskMarket:    {Level: "moderate", Assessment: "Tech multiple exposure"},
			"liquidity_risk":    {Level: "low", Assessment: "Deep markets"},
		},
		KeyRiskFactors: []string{"Hardware cycle dependence"},
		Mitigants:      []string{"Services mix"},
		Summary:        "Overall risk is manageable.",
	}
	return st
}

func TestFinalizer_Execute(t *testing.T) {
	finalizer := NewFinalizer(WithLogger(quietLogger()))

	delta := finalizer.Execute(context.Background(), finalizerState())

	report := delta.FinalReport
	assert.True(t, strings.HasPrefix(report, "# Apple Inc. Research Report"))
	assert.Contains(t, report, "## Detailed Risk Assessment")
	assert.Contains(t, report, "**Overall Risk Level: ELEVATED**")
	assert.Contains(t, report, "| Market Risk | moderate | Tech multiple exposure |")
	assert.Contains(t, report, "| Financial Risk | low | Strong balance sheet |")
	assert.Contains(t, report, "| Liquidity Risk | low | Deep markets |")
	assert.Contains(t, report, "- Hardware cycle dependence")
	assert.Contains(t, report, "- Services mix")
	assert.Contains(t, report, "Overall risk is manageable.")
	assert.Equal(t, "finalizer_complete", delta.CurrentStage)
	assert.Empty(t, delta.Errors)
}

func TestFinalizer_Execute_CategoryOrder(t *testing.T) {
	finalizer := NewFinalizer(WithLogger(quietLogger()))

	delta := finalizer.Execute(context.Background(), finalizerState())

	// Known categories keep their fixed order; extras land after them.
	market := strings.Index(delta.FinalReport, "| Market Risk |")
	financial := strings.Index(delta.FinalReport, "| Financial Risk |")
	liquidity := strings.Index(delta.FinalReport, "| Liquidity Risk |")
	require.True(t, market >= 0 && financial >= 0 && liquidity >= 0)
	assert.Less(t, market, financial)
	assert.Less(t, financial, liquidity)
}

func TestFinalizer_Execute_NoRiskAssessment(t *testing.T) {
	finalizer := NewFinalizer(WithLogger(quietLogger()))

	st := finalizerState()
	st.RiskAssessment = nil
	delta := finalizer.Execute(context.Background(), st)

	assert.Equal(t, st.DraftReport, delta.FinalReport)
	assert.Equal(t, "finalizer_complete", delta.CurrentStage)
}

func TestFinalizer_Execute_RiskWithoutLevel(t *testing.T) {
	finalizer := NewFinalizer(WithLogger(quietLogger()))

	st := finalizerState()
	st.RiskAssessment = &state.RiskAssessment{Summary: "level missing"}
	delta := finalizer.Execute(context.Background(), st)

	assert.Equal(t, st.DraftReport, delta.FinalReport)
	assert.NotContains(t, delta.FinalReport, "Detailed Risk Assessment")
}

func TestFinalizer_Execute_NoDraft(t *testing.T) {
	finalizer := NewFinalizer(WithLogger(quietLogger()))

	st := finalizerState()
	st.DraftReport = ""
	delta := finalizer.Execute(context.Background(), st)

	assert.Equal(t, "No report draft was produced for this run.", delta.FinalReport)
	require.Len(t, delta.Errors, 1)
	assert.Contains(t, delta.Errors[0], "finalizer:")
	assert.Equal(t, "finalizer_complete", delta.CurrentStage)
}
