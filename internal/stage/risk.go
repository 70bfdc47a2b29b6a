package stage

import (
	"context"
	"fmt"
	"strings"

	"github.com/meridian-ai/meridian/internal/llm"
	"github.com/meridian-ai/meridian/internal/state"
)

const riskPrompt = `You are the risk assessor of a financial research pipeline.
Assess the investment risks for the company using the approved report
and research findings.

Respond with JSON only, no prose:
{
  "overall_risk_level": "low" | "moderate" | "elevated" | "high",
  "risk_categories": {
    "market_risk": {"level": "low|moderate|elevated|high", "assessment": "..."},
    "competitive_risk": {"level": "...", "assessment": "..."},
    "financial_risk": {"level": "...", "assessment": "..."},
    "regulatory_risk": {"level": "...", "assessment": "..."},
    "operational_risk": {"level": "...", "assessment": "..."}
  },
  "key_risk_factors": ["<most material risks, ordered>"],
  "mitigants": ["<factors that offset the risks>"],
  "risk_summary": "<one paragraph overall risk verdict>"
}

Ground the assessment in the report and findings. Do not invent facts.`

// RiskAssessor produces the structured risk assessment appended to the
// final report. When assessment fails the report ships with a stated
// moderate default rather than no risk section at all.
type RiskAssessor struct {
	provider llm.Provider
	opts     options
}

// NewRiskAssessor creates the risk-assessor stage.
func NewRiskAssessor(provider llm.Provider, opts ...Option) *RiskAssessor {
	return &RiskAssessor{provider: provider, opts: applyOptions(opts)}
}

// Name implements graph.Stage.
func (r *RiskAssessor) Name() string { return StageRiskAssessor }

type riskResult struct {
	OverallRiskLevel string `json:"overall_risk_level"`
	RiskCategories   map[string]struct {
		Level      string `json:"level"`
		Assessment string `json:"assessment"`
	} `json:"risk_categories"`
	KeyRiskFactors []string `json:"key_risk_factors"`
	Mitigants      []string `json:"mitigants"`
	RiskSummary    string   `json:"risk_summary"`
}

// Execute implements graph.Stage.
func (r *RiskAssessor) Execute(ctx context.Context, s state.State) state.Delta {
	if strings.TrimSpace(s.DraftReport) == "" {
		r.opts.logger.WarnContext(ctx, "Risk assessment skipped, no draft to assess")
		return state.Delta{
			RiskAssessment: &state.RiskAssessment{
				OverallRiskLevel: "moderate",
				Summary:          "No approved draft to assess; defaulting to a moderate overall risk posture.",
			},
			Errors:       []string{errorEntry(StageRiskAssessor, fmt.Errorf("no draft to assess"))},
			CurrentStage: FailedMarker(StageRiskAssessor),
		}
	}

	text, err := completeJSON(ctx, r.provider, r.opts, riskPrompt, riskPayload(s))
	var parsed riskResult
	if err == nil {
		parsed, err = llm.ExtractJSONAs[riskResult](text)
	}
	if err != nil {
		r.opts.logger.WarnContext(ctx, "Risk assessment failed, defaulting to moderate", "error", err)
		return state.Delta{
			RiskAssessment: &state.RiskAssessment{
				OverallRiskLevel: "moderate",
				Summary:          "Automated risk assessment unavailable; defaulting to a moderate overall risk posture.",
			},
			Errors:       []string{errorEntry(StageRiskAssessor, err)},
			CurrentStage: FailedMarker(StageRiskAssessor),
		}
	}

	assessment := &state.RiskAssessment{
		OverallRiskLevel: parsed.OverallRiskLevel,
		KeyRiskFactors:   parsed.KeyRiskFactors,
		Mitigants:        parsed.Mitigants,
		Summary:          parsed.RiskSummary,
	}
	if len(parsed.RiskCategories) > 0 {
		assessment.Categories = make(map[string]state.RiskCategory, len(parsed.RiskCategories))
		for key, cat := range parsed.RiskCategories {
			assessment.Categories[key] = state.RiskCategory{
				Level:      cat.Level,
				Assessment: cat.Assessment,
			}
		}
	}

	r.opts.logger.InfoContext(ctx, "Risk assessment complete",
		"company", s.Company,
		"overall", assessment.OverallRiskLevel,
		"factors", len(assessment.KeyRiskFactors))

	return state.Delta{
		RiskAssessment: assessment,
		CurrentStage:   CompleteMarker(StageRiskAssessor),
	}
}

func riskPayload(s state.State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Company: %s\n", s.Company)

	if snap := s.FinancialSnapshot; snap != nil && snap.Success {
		fmt.Fprintf(&b, "Market data (%s): price $%.2f, P/E %.1f, debt/equity %.2f, sector %s\n",
			snap.Ticker, snap.Price, snap.PERatio, snap.DebtToEquity, snap.Sector)
	}

	risks := 0
	b.WriteString("\nRisk-related findings:\n")
	for _, f := range s.Findings {
		if f.Category != state.FindingRiskFactor {
			continue
		}
		fmt.Fprintf(&b, "- %s: %s\n", f.Title, f.Content)
		risks++
	}
	if risks == 0 {
		b.WriteString("- none recorded\n")
	}

	fmt.Fprintf(&b, "\nApproved report:\n%s\n", s.DraftReport)
	return b.String()
}
