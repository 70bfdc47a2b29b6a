package stage

import (
	"context"
	"fmt"
	"strings"

	"github.com/meridian-ai/meridian/internal/llm"
	"github.com/meridian-ai/meridian/internal/state"
)

const analystPrompt = `You are the analyst component of a financial research pipeline.
Given research findings and market data for a company, produce a SWOT analysis.

Respond with JSON only, no prose:
{
  "strengths": ["..."],
  "weaknesses": ["..."],
  "opportunities": ["..."],
  "threats": ["..."],
  "key_metrics_summary": "<one paragraph on the company's financial position>",
  "overall_assessment": "<one paragraph verdict grounded in the findings>"
}

Ground every point in the findings provided. Do not invent facts.`

// Analyst turns accumulated findings into a SWOT analysis. A failed
// analysis leaves an empty Analysis in place so the writer can still
// produce a findings-only report.
type Analyst struct {
	provider llm.Provider
	opts     options
}

// NewAnalyst creates the analyst stage.
func NewAnalyst(provider llm.Provider, opts ...Option) *Analyst {
	return &Analyst{provider: provider, opts: applyOptions(opts)}
}

// Name implements graph.Stage.
func (a *Analyst) Name() string { return StageAnalyst }

type analystResult struct {
	Strengths         []string `json:"strengths"`
	Weaknesses        []string `json:"weaknesses"`
	Opportunities     []string `json:"opportunities"`
	Threats           []string `json:"threats"`
	KeyMetricsSummary string   `json:"key_metrics_summary"`
	OverallAssessment string   `json:"overall_assessment"`
}

// Execute implements graph.Stage.
func (a *Analyst) Execute(ctx context.Context, s state.State) state.Delta {
	text, err := completeJSON(ctx, a.provider, a.opts, analystPrompt, analystPayload(s))
	if err != nil {
		return a.failed(ctx, err)
	}
	parsed, err := llm.ExtractJSONAs[analystResult](text)
	if err != nil {
		return a.failed(ctx, err)
	}

	analysis := &state.Analysis{
		Strengths:         parsed.Strengths,
		Weaknesses:        parsed.Weaknesses,
		Opportunities:     parsed.Opportunities,
		Threats:           parsed.Threats,
		KeyMetricsSummary: parsed.KeyMetricsSummary,
		OverallAssessment: parsed.OverallAssessment,
	}

	a.opts.logger.InfoContext(ctx, "Analysis complete",
		"company", s.Company,
		"strengths", len(analysis.Strengths),
		"threats", len(analysis.Threats))

	return state.Delta{
		Analysis:     analysis,
		CurrentStage: CompleteMarker(StageAnalyst),
	}
}

func (a *Analyst) failed(ctx context.Context, err error) state.Delta {
	a.opts.logger.WarnContext(ctx, "Analysis failed, continuing without SWOT", "error", err)
	return state.Delta{
		Analysis:     &state.Analysis{},
		Errors:       []string{errorEntry(StageAnalyst, err)},
		CurrentStage: FailedMarker(StageAnalyst),
	}
}

// analystPayload renders the state the analyst reasons over.
func analystPayload(s state.State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Company: %s\nQuery: %s\n", s.Company, s.Query)

	if snap := s.FinancialSnapshot; snap != nil && snap.Success {
		fmt.Fprintf(&b, "\nMarket data (%s): price $%.2f, market cap $%.0f, P/E %.1f, profit margin %.1f%%, debt/equity %.2f\n",
			snap.Ticker, snap.Price, snap.MarketCap, snap.PERatio, snap.ProfitMargin*100, snap.DebtToEquity)
	} else {
		b.WriteString("\nMarket data: unavailable\n")
	}

	b.WriteString("\nFindings:\n")
	if len(s.Findings) == 0 {
		b.WriteString("- none\n")
	}
	for _, f := range s.Findings {
		fmt.Fprintf(&b, "- [%s/%s] %s: %s\n", f.Category, f.Relevance, f.Title, f.Content)
	}
	return b.String()
}
