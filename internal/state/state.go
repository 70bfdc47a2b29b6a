// Package state defines the shared research state that threads through every
// pipeline stage, along with the field-level merge semantics that govern how
// stage outputs are folded into it.
package state

import (
	"fmt"
	"time"
)

// Complexity classifies a research query as answerable by a quick data lookup
// or as requiring the full analysis pipeline.
type Complexity string

const (
	// ComplexitySimple routes the query to the quick-lookup response path.
	ComplexitySimple Complexity = "simple"
	// ComplexityComplex routes the query through the full analysis pipeline.
	ComplexityComplex Complexity = "complex"
)

// ParseComplexity parses a string into a Complexity value.
func ParseComplexity(s string) (Complexity, error) {
	switch Complexity(s) {
	case ComplexitySimple, ComplexityComplex:
		return Complexity(s), nil
	default:
		return "", fmt.Errorf("invalid complexity: %q", s)
	}
}

// IsValid returns true if the complexity is a recognized value.
func (c Complexity) IsValid() bool {
	return c == ComplexitySimple || c == ComplexityComplex
}

// String returns the string representation of the complexity.
func (c Complexity) String() string {
	return string(c)
}

// OrDefault returns the complexity itself when valid, otherwise
// ComplexityComplex. Unknown complexity must never route a query onto the
// cheaper quick-lookup path.
func (c Complexity) OrDefault() Complexity {
	if c.IsValid() {
		return c
	}
	return ComplexityComplex
}

// TaskCategory classifies a research subtask by the collaborator it needs.
type TaskCategory string

const (
	TaskCategorySearch   TaskCategory = "search"
	TaskCategoryData     TaskCategory = "data"
	TaskCategoryAnalysis TaskCategory = "analysis"
)

// IsValid returns true if the task category is a recognized value.
func (c TaskCategory) IsValid() bool {
	switch c {
	case TaskCategorySearch, TaskCategoryData, TaskCategoryAnalysis:
		return true
	}
	return false
}

// Priority orders research subtasks for execution.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// IsValid returns true if the priority is a recognized value.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Rank returns the execution order of the priority, lower first.
// Unknown priorities sort last.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// FindingCategory classifies a research finding.
type FindingCategory string

const (
	FindingFinancialMetrics FindingCategory = "financial_metrics"
	FindingRecentNews       FindingCategory = "recent_news"
	FindingAnalystOpinion   FindingCategory = "analyst_opinion"
	FindingIndustryContext  FindingCategory = "industry_context"
	FindingRiskFactor       FindingCategory = "risk_factor"
)

// IsValid returns true if the finding category is a recognized value.
func (c FindingCategory) IsValid() bool {
	switch c {
	case FindingFinancialMetrics, FindingRecentNews, FindingAnalystOpinion,
		FindingIndustryContext, FindingRiskFactor:
		return true
	}
	return false
}

// Subtask is one unit of a research plan produced by the planner stage.
type Subtask struct {
	ID          int          `json:"id"`
	Description string       `json:"description"`
	Category    TaskCategory `json:"category"`
	Priority    Priority     `json:"priority"`
}

// Validate checks that the subtask's enum fields carry recognized values.
func (s Subtask) Validate() error {
	if s.Description == "" {
		return fmt.Errorf("subtask %d: description is required", s.ID)
	}
	if !s.Category.IsValid() {
		return fmt.Errorf("subtask %d: invalid category %q", s.ID, s.Category)
	}
	if !s.Priority.IsValid() {
		return fmt.Errorf("subtask %d: invalid priority %q", s.ID, s.Priority)
	}
	return nil
}

// Finding is one item of research evidence accumulated by the researcher stage.
type Finding struct {
	Category  FindingCategory `json:"category"`
	Title     string          `json:"title"`
	Content   string          `json:"content"`
	Source    string          `json:"source"`
	Relevance Priority        `json:"relevance"`
}

// Validate checks that the finding's enum fields carry recognized values.
func (f Finding) Validate() error {
	if !f.Category.IsValid() {
		return fmt.Errorf("finding %q: invalid category %q", f.Title, f.Category)
	}
	if !f.Relevance.IsValid() {
		return fmt.Errorf("finding %q: invalid relevance %q", f.Title, f.Relevance)
	}
	return nil
}

// FinancialSnapshot holds the market-data lookup result for a company.
// Success=false records a failed lookup; the pipeline continues without
// financial data rather than aborting.
type FinancialSnapshot struct {
	Success      bool      `json:"success"`
	Ticker       string    `json:"ticker,omitempty"`
	Company      string    `json:"company,omitempty"`
	Price        float64   `json:"price,omitempty"`
	MarketCap    float64   `json:"market_cap,omitempty"`
	PERatio      float64   `json:"pe_ratio,omitempty"`
	ProfitMargin float64   `json:"profit_margin,omitempty"`
	DebtToEquity float64   `json:"debt_to_equity,omitempty"`
	High52Week   float64   `json:"fifty_two_week_high,omitempty"`
	Low52Week    float64   `json:"fifty_two_week_low,omitempty"`
	Sector       string    `json:"sector,omitempty"`
	Industry     string    `json:"industry,omitempty"`
	Error        string    `json:"error,omitempty"`
	Timestamp    time.Time `json:"timestamp,omitzero"`
}

// Clone returns a copy of the snapshot.
func (f *FinancialSnapshot) Clone() *FinancialSnapshot {
	if f == nil {
		return nil
	}
	cp := *f
	return &cp
}

// Analysis is the analyst stage's SWOT assessment of the accumulated research.
type Analysis struct {
	Strengths         []string `json:"strengths,omitempty"`
	Weaknesses        []string `json:"weaknesses,omitempty"`
	Opportunities     []string `json:"opportunities,omitempty"`
	Threats           []string `json:"threats,omitempty"`
	KeyMetricsSummary string   `json:"key_metrics_summary,omitempty"`
	OverallAssessment string   `json:"overall_assessment,omitempty"`
}

// Clone returns a deep copy of the analysis.
func (a *Analysis) Clone() *Analysis {
	if a == nil {
		return nil
	}
	cp := *a
	cp.Strengths = cloneStrings(a.Strengths)
	cp.Weaknesses = cloneStrings(a.Weaknesses)
	cp.Opportunities = cloneStrings(a.Opportunities)
	cp.Threats = cloneStrings(a.Threats)
	return &cp
}

// QualityReview is the quality-checker stage's verdict on a report draft.
type QualityReview struct {
	Passed               bool     `json:"passed"`
	Score                int      `json:"score"`
	Issues               []string `json:"issues,omitempty"`
	RevisionInstructions string   `json:"revision_instructions,omitempty"`
}

// Clone returns a deep copy of the review.
func (q *QualityReview) Clone() *QualityReview {
	if q == nil {
		return nil
	}
	cp := *q
	cp.Issues = cloneStrings(q.Issues)
	return &cp
}

// Risk category keys used in RiskAssessment.Categories.
const (
	RiskMarket      = "market_risk"
	RiskCompetitive = "competitive_risk"
	RiskFinancial   = "financial_risk"
	RiskRegulatory  = "regulatory_risk"
	RiskOperational = "operational_risk"
)

// RiskCategory is one dimension of the risk assessment.
type RiskCategory struct {
	Level      string `json:"level"`
	Assessment string `json:"assessment"`
}

// RiskAssessment is the risk-assessor stage's structured output.
type RiskAssessment struct {
	OverallRiskLevel string                  `json:"overall_risk_level,omitempty"`
	Categories       map[string]RiskCategory `json:"risk_categories,omitempty"`
	KeyRiskFactors   []string                `json:"key_risk_factors,omitempty"`
	Mitigants        []string                `json:"mitigants,omitempty"`
	Summary          string                  `json:"risk_summary,omitempty"`
}

// Clone returns a deep copy of the assessment.
func (r *RiskAssessment) Clone() *RiskAssessment {
	if r == nil {
		return nil
	}
	cp := *r
	if r.Categories != nil {
		cp.Categories = make(map[string]RiskCategory, len(r.Categories))
		for k, v := range r.Categories {
			cp.Categories[k] = v
		}
	}
	cp.KeyRiskFactors = cloneStrings(r.KeyRiskFactors)
	cp.Mitigants = cloneStrings(r.Mitigants)
	return &cp
}

// State is the shared record threading through every pipeline stage.
//
// Findings and Errors are accumulator fields: they grow monotonically across
// one execution and no stage may remove prior entries. Query is set once at
// the start of a run. All remaining fields are last-write-wins, owned by the
// stages that produce them.
type State struct {
	Query             string             `json:"query"`
	Company           string             `json:"company,omitempty"`
	Complexity        Complexity         `json:"complexity,omitempty"`
	Plan              []Subtask          `json:"plan,omitempty"`
	Findings          []Finding          `json:"findings,omitempty"`
	FinancialSnapshot *FinancialSnapshot `json:"financial_snapshot,omitempty"`
	Analysis          *Analysis          `json:"analysis,omitempty"`
	DraftReport       string             `json:"draft_report,omitempty"`
	QualityReview     *QualityReview     `json:"quality_review,omitempty"`
	RevisionCount     int                `json:"revision_count"`
	RiskAssessment    *RiskAssessment    `json:"risk_assessment,omitempty"`
	HumanApproved     *bool              `json:"human_approved,omitempty"`
	CurrentStage      string             `json:"current_stage,omitempty"`
	FinalReport       string             `json:"final_report,omitempty"`
	Errors            []string           `json:"errors,omitempty"`
}

// New returns the initial state for a run of the given query.
func New(query string) State {
	return State{Query: query}
}

// Clone returns a deep copy of the state. Merge operates on clones so that
// prior snapshots held by checkpoints or event subscribers never alias the
// live state.
func (s State) Clone() State {
	cp := s
	cp.Plan = cloneSubtasks(s.Plan)
	cp.Findings = cloneFindings(s.Findings)
	cp.FinancialSnapshot = s.FinancialSnapshot.Clone()
	cp.Analysis = s.Analysis.Clone()
	cp.QualityReview = s.QualityReview.Clone()
	cp.RiskAssessment = s.RiskAssessment.Clone()
	if s.HumanApproved != nil {
		v := *s.HumanApproved
		cp.HumanApproved = &v
	}
	cp.Errors = cloneStrings(s.Errors)
	return cp
}

// Approved returns true when the human-approval stage has recorded approval.
func (s State) Approved() bool {
	return s.HumanApproved != nil && *s.HumanApproved
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneSubtasks(in []Subtask) []Subtask {
	if in == nil {
		return nil
	}
	out := make([]Subtask, len(in))
	copy(out, in)
	return out
}

func cloneFindings(in []Finding) []Finding {
	if in == nil {
		return nil
	}
	out := make([]Finding, len(in))
	copy(out, in)
	return out
}
