package stage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/meridian-ai/meridian/internal/llm/providers"
	"github.com/meridian-ai/meridian/internal/state"
)

func TestRouteByComplexity(t *testing.T) {
	tests := []struct {
		name       string
		complexity state.Complexity
		want       string
	}{
		{"simple", state.ComplexitySimple, RouteSimple},
		{"complex", state.ComplexityComplex, RouteComplex},
		{"unset defaults complex", "", RouteComplex},
		{"unknown defaults complex", "medium", RouteComplex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := state.New("query")
			st.Complexity = tt.complexity
			assert.Equal(t, tt.want, RouteByComplexity(st))
			assert.Equal(t, tt.want, RouteAfterResearch(st))
		})
	}
}

func TestShouldRevise(t *testing.T) {
	tests := []struct {
		name   string
		review *state.QualityReview
		count  int
		want   string
	}{
		{"passed review", &state.QualityReview{Passed: true, Score: 8}, 0, DecisionApprove},
		{"failed review first time", &state.QualityReview{Passed: false, Score: 4}, 1, DecisionRevise},
		{"failed review budget spent", &state.QualityReview{Passed: false, Score: 4}, 2, DecisionApprove},
		{"failed review over budget", &state.QualityReview{Passed: false, Score: 4}, 3, DecisionApprove},
		{"no review yet", nil, 0, DecisionRevise},
		{"no review budget spent", nil, 2, DecisionApprove},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := state.New("query")
			st.QualityReview = tt.review
			st.RevisionCount = tt.count
			assert.Equal(t, tt.want, ShouldRevise(st))
		})
	}
}

// Two rejections spend the revision budget; the third verdict no
// longer matters.
func TestShouldRevise_BudgetSpentAfterTwoRejections(t *testing.T) {
	provider := providers.NewScriptedProvider(rejectResponse)
	checker := NewQualityChecker(provider, WithLogger(quietLogger()))
	ctx := context.Background()

	st := state.New("Write a research report on Apple")
	st = state.Merge(st, state.Delta{DraftReport: "draft one"})

	st = state.Merge(st, checker.Execute(ctx, st))
	assert.Equal(t, 1, st.RevisionCount)
	assert.Equal(t, DecisionRevise, ShouldRevise(st))

	st = state.Merge(st, state.Delta{DraftReport: "draft two"})
	st = state.Merge(st, checker.Execute(ctx, st))
	assert.Equal(t, 2, st.RevisionCount)
	assert.Equal(t, DecisionApprove, ShouldRevise(st))
}
