package state

import (
	"reflect"
	"testing"
)

func TestMergeEmptyDeltaIsIdentity(t *testing.T) {
	approved := true
	s := State{
		Query:             "Analyze Apple",
		Company:           "Apple",
		Complexity:        ComplexityComplex,
		Plan:              []Subtask{{ID: 1, Description: "metrics", Category: TaskCategoryData, Priority: PriorityHigh}},
		Findings:          []Finding{{Category: FindingRecentNews, Title: "a", Content: "b", Source: "s", Relevance: PriorityLow}},
		FinancialSnapshot: &FinancialSnapshot{Success: true, Ticker: "AAPL"},
		Analysis:          &Analysis{OverallAssessment: "solid"},
		DraftReport:       "draft",
		QualityReview:     &QualityReview{Passed: true, Score: 8},
		RevisionCount:     1,
		RiskAssessment:    &RiskAssessment{OverallRiskLevel: "low"},
		HumanApproved:     &approved,
		CurrentStage:      "finalizer",
		FinalReport:       "final",
		Errors:            []string{"warn"},
	}

	merged := Merge(s, Delta{})

	if !reflect.DeepEqual(merged, s) {
		t.Errorf("empty delta changed state:\n got: %+v\nwant: %+v", merged, s)
	}
}

func TestMergeAccumulatesFindings(t *testing.T) {
	s := New("Analyze Apple")

	first := []Finding{
		{Category: FindingFinancialMetrics, Title: "P/E", Content: "25", Source: "market_data", Relevance: PriorityHigh},
		{Category: FindingRecentNews, Title: "Launch", Content: "New product", Source: "web_search", Relevance: PriorityMedium},
	}
	second := []Finding{
		{Category: FindingRiskFactor, Title: "Rates", Content: "Rising", Source: "web_search", Relevance: PriorityLow},
	}

	s = Merge(s, Delta{Findings: first})
	s = Merge(s, Delta{Findings: second})

	if len(s.Findings) != 3 {
		t.Fatalf("len(Findings) = %d, want 3", len(s.Findings))
	}
	wantTitles := []string{"P/E", "Launch", "Rates"}
	for i, want := range wantTitles {
		if s.Findings[i].Title != want {
			t.Errorf("Findings[%d].Title = %q, want %q", i, s.Findings[i].Title, want)
		}
	}
}

func TestMergeAccumulatesErrors(t *testing.T) {
	s := New("q")
	s = Merge(s, Delta{Errors: []string{"planner_failed: bad json"}})
	s = Merge(s, Delta{Errors: []string{"search degraded", "metrics lookup failed"}})

	want := []string{"planner_failed: bad json", "search degraded", "metrics lookup failed"}
	if !reflect.DeepEqual(s.Errors, want) {
		t.Errorf("Errors = %v, want %v", s.Errors, want)
	}
}

func TestMergeQuerySetOnce(t *testing.T) {
	s := State{}
	s = Merge(s, Delta{Query: "first"})
	if s.Query != "first" {
		t.Fatalf("Query = %q, want %q", s.Query, "first")
	}

	s = Merge(s, Delta{Query: "second"})
	if s.Query != "first" {
		t.Errorf("Query overwritten to %q, want %q", s.Query, "first")
	}
}

func TestMergeRevisionCountNeverDecreases(t *testing.T) {
	s := New("q")

	one := 1
	s = Merge(s, Delta{RevisionCount: &one})
	if s.RevisionCount != 1 {
		t.Fatalf("RevisionCount = %d, want 1", s.RevisionCount)
	}

	zero := 0
	s = Merge(s, Delta{RevisionCount: &zero})
	if s.RevisionCount != 1 {
		t.Errorf("RevisionCount decreased to %d, want 1", s.RevisionCount)
	}

	two := 2
	s = Merge(s, Delta{RevisionCount: &two})
	if s.RevisionCount != 2 {
		t.Errorf("RevisionCount = %d, want 2", s.RevisionCount)
	}
}

func TestMergeLastWriteWins(t *testing.T) {
	s := New("q")

	s = Merge(s, Delta{
		Company:     "Apple",
		Complexity:  ComplexityComplex,
		DraftReport: "draft one",
		FinancialSnapshot: &FinancialSnapshot{
			Success: true,
			Ticker:  "AAPL",
			Price:   150,
		},
	})
	s = Merge(s, Delta{
		DraftReport: "draft two",
		FinancialSnapshot: &FinancialSnapshot{
			Success: true,
			Ticker:  "AAPL",
			Price:   155,
		},
	})

	if s.DraftReport != "draft two" {
		t.Errorf("DraftReport = %q, want %q", s.DraftReport, "draft two")
	}
	if s.FinancialSnapshot.Price != 155 {
		t.Errorf("FinancialSnapshot.Price = %v, want 155", s.FinancialSnapshot.Price)
	}
	// Untouched last-write-wins fields keep their values.
	if s.Company != "Apple" {
		t.Errorf("Company = %q, want Apple", s.Company)
	}
	if s.Complexity != ComplexityComplex {
		t.Errorf("Complexity = %q, want complex", s.Complexity)
	}
}

func TestMergeEmptyPlanReplacesExisting(t *testing.T) {
	s := New("q")
	s = Merge(s, Delta{Plan: []Subtask{{ID: 1, Description: "x", Category: TaskCategorySearch, Priority: PriorityHigh}}})
	if len(s.Plan) != 1 {
		t.Fatalf("len(Plan) = %d, want 1", len(s.Plan))
	}

	// A non-nil empty slice is an explicit write, distinct from an absent field.
	s = Merge(s, Delta{Plan: []Subtask{}})
	if s.Plan == nil || len(s.Plan) != 0 {
		t.Errorf("Plan = %v, want explicit empty", s.Plan)
	}
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	s := State{
		Query:    "q",
		Findings: []Finding{{Category: FindingRecentNews, Title: "orig", Content: "c", Source: "s", Relevance: PriorityLow}},
		Errors:   []string{"orig"},
	}
	delta := Delta{
		Findings: []Finding{{Category: FindingRiskFactor, Title: "new", Content: "c", Source: "s", Relevance: PriorityLow}},
		Errors:   []string{"new"},
	}

	merged := Merge(s, delta)

	if len(s.Findings) != 1 || s.Findings[0].Title != "orig" {
		t.Error("Merge mutated the input state's Findings")
	}
	if len(delta.Findings) != 1 || delta.Findings[0].Title != "new" {
		t.Error("Merge mutated the delta's Findings")
	}

	// The merged state must not alias either input.
	merged.Findings[0].Title = "changed"
	merged.Findings[1].Title = "changed"
	merged.Errors[0] = "changed"
	if s.Findings[0].Title != "orig" || delta.Findings[0].Title != "new" {
		t.Error("merged state aliases an input's Findings")
	}
	if s.Errors[0] != "orig" || delta.Errors[0] != "new" {
		t.Error("merged state aliases an input's Errors")
	}
}

func TestMergeHumanApproved(t *testing.T) {
	s := New("q")

	approved := true
	s = Merge(s, Delta{HumanApproved: &approved})
	if !s.Approved() {
		t.Fatal("expected approved state")
	}

	// The merged state holds its own copy of the flag.
	approved = false
	if !s.Approved() {
		t.Error("merged state aliases the delta's HumanApproved pointer")
	}
}

func TestDeltaIsEmpty(t *testing.T) {
	if !(Delta{}).IsEmpty() {
		t.Error("zero delta should be empty")
	}

	rc := 0
	tests := []struct {
		name  string
		delta Delta
	}{
		{"query", Delta{Query: "q"}},
		{"company", Delta{Company: "Apple"}},
		{"complexity", Delta{Complexity: ComplexitySimple}},
		{"plan", Delta{Plan: []Subtask{}}},
		{"findings", Delta{Findings: []Finding{{}}}},
		{"snapshot", Delta{FinancialSnapshot: &FinancialSnapshot{}}},
		{"analysis", Delta{Analysis: &Analysis{}}},
		{"draft", Delta{DraftReport: "d"}},
		{"review", Delta{QualityReview: &QualityReview{}}},
		{"revision", Delta{RevisionCount: &rc}},
		{"risk", Delta{RiskAssessment: &RiskAssessment{}}},
		{"approved", Delta{HumanApproved: new(bool)}},
		{"stage", Delta{CurrentStage: "writer"}},
		{"final", Delta{FinalReport: "f"}},
		{"errors", Delta{Errors: []string{"e"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.delta.IsEmpty() {
				t.Error("delta with a set field should not be empty")
			}
		})
	}
}
