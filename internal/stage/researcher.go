package stage

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/meridian-ai/meridian/internal/llm"
	"github.com/meridian-ai/meridian/internal/market"
	"github.com/meridian-ai/meridian/internal/search"
	"github.com/meridian-ai/meridian/internal/state"
)

const researcherPrompt = `You are the research synthesis component of a financial research pipeline.
Given raw search evidence about a company, distill it into findings.

Respond with JSON only, no prose:
{
  "findings": [
    {"category": "financial_metrics" | "recent_news" | "analyst_opinion" | "industry_context" | "risk_factor",
     "title": "<short headline>",
     "content": "<one or two sentences grounded in the evidence>",
     "source": "<url or origin of the evidence>",
     "relevance": "high" | "medium" | "low"}
  ]
}

Base every finding strictly on the evidence provided. Do not invent facts.`

// Researcher executes the research plan: market data lookups populate
// the financial snapshot, search tasks gather evidence, and a final
// synthesis call turns the evidence into findings. Collaborator
// failures reduce the available evidence but never halt the stage.
type Researcher struct {
	provider llm.Provider
	market   market.Provider
	search   search.Client
	opts     options
}

// NewResearcher creates the researcher stage.
func NewResearcher(provider llm.Provider, marketProvider market.Provider, searchClient search.Client, opts ...Option) *Researcher {
	return &Researcher{
		provider: provider,
		market:   marketProvider,
		search:   searchClient,
		opts:     applyOptions(opts),
	}
}

// Name implements graph.Stage.
func (r *Researcher) Name() string { return StageResearcher }

// evidenceItem is one raw search hit awaiting synthesis, tagged with
// the finding category its task implies.
type evidenceItem struct {
	category state.FindingCategory
	item     search.Item
}

type researcherResult struct {
	Findings []struct {
		Category  string `json:"category"`
		Title     string `json:"title"`
		Content   string `json:"content"`
		Source    string `json:"source"`
		Relevance string `json:"relevance"`
	} `json:"findings"`
}

// Execute implements graph.Stage.
func (r *Researcher) Execute(ctx context.Context, s state.State) state.Delta {
	company := s.Company
	if company == "" {
		r.opts.logger.WarnContext(ctx, "Research skipped, no company identified")
		return state.Delta{
			Errors:       []string{errorEntry(StageResearcher, fmt.Errorf("no company identified in query"))},
			CurrentStage: FailedMarker(StageResearcher),
		}
	}

	plan := orderedPlan(s.Plan)
	if len(plan) == 0 {
		plan = defaultPlan(company)
	}

	var (
		snapshot   *state.FinancialSnapshot
		findings   []state.Finding
		evidence   []evidenceItem
		lookupErrs []string
	)

	for _, task := range plan {
		switch task.Category {
		case state.TaskCategoryData:
			// The first data task owns the snapshot; later ones are
			// redundant lookups of the same company.
			if snapshot != nil {
				continue
			}
			metrics, err := r.market.CompanyMetrics(ctx, company)
			if err != nil {
				lookupErrs = append(lookupErrs, errorEntry(StageResearcher,
					fmt.Errorf("market data lookup failed: %w", err)))
				continue
			}
			snapshot = metricsToSnapshot(metrics)
			if metrics.Success {
				findings = append(findings, r.supplementFindings(ctx, company)...)
			}

		case state.TaskCategorySearch, state.TaskCategoryAnalysis:
			items, category, err := r.dispatchSearch(ctx, company, task, snapshot)
			if err != nil {
				lookupErrs = append(lookupErrs, errorEntry(StageResearcher,
					fmt.Errorf("search failed for %q: %w", task.Description, err)))
				continue
			}
			for _, item := range items {
				evidence = append(evidence, evidenceItem{category: category, item: item})
			}
		}
	}

	if len(evidence) > 0 {
		synthesized, err := r.synthesize(ctx, s.Query, company, snapshot, evidence)
		if err != nil {
			lookupErrs = append(lookupErrs, errorEntry(StageResearcher,
				fmt.Errorf("findings synthesis failed: %w", err)))
			findings = append(findings, mechanicalFindings(evidence)...)
		} else {
			findings = append(findings, synthesized...)
		}
	}

	r.opts.logger.InfoContext(ctx, "Research complete",
		"company", company,
		"tasks", len(plan),
		"findings", len(findings),
		"lookup_errors", len(lookupErrs))

	return state.Delta{
		Findings:          findings,
		FinancialSnapshot: snapshot,
		Errors:            lookupErrs,
		CurrentStage:      CompleteMarker(StageResearcher),
	}
}

// orderedPlan returns a copy of the plan sorted high before medium
// before low, preserving the planner's order within a priority.
func orderedPlan(plan []state.Subtask) []state.Subtask {
	ordered := make([]state.Subtask, len(plan))
	copy(ordered, plan)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority.Rank() < ordered[j].Priority.Rank()
	})
	return ordered
}

// defaultPlan covers runs where the planner produced no usable tasks.
func defaultPlan(company string) []state.Subtask {
	return []state.Subtask{
		{ID: 1, Description: fmt.Sprintf("current financial metrics for %s", company), Category: state.TaskCategoryData, Priority: state.PriorityHigh},
		{ID: 2, Description: fmt.Sprintf("recent news about %s", company), Category: state.TaskCategorySearch, Priority: state.PriorityMedium},
	}
}

// dispatchSearch picks the search flavor from keywords in the task
// description, mirroring the upstream search tool split.
func (r *Researcher) dispatchSearch(ctx context.Context, company string, task state.Subtask, snapshot *state.FinancialSnapshot) ([]search.Item, state.FindingCategory, error) {
	desc := strings.ToLower(task.Description)

	switch {
	case strings.Contains(desc, "news") || strings.Contains(desc, "recent"):
		results, err := search.FinancialNews(ctx, r.search, company)
		if err != nil {
			return nil, "", err
		}
		return results.Items, state.FindingRecentNews, nil

	case strings.Contains(desc, "analyst") || strings.Contains(desc, "rating"):
		results, err := search.CompanyAnalysis(ctx, r.search, company)
		if err != nil {
			return nil, "", err
		}
		return results.Items, state.FindingAnalystOpinion, nil

	case strings.Contains(desc, "industry") || strings.Contains(desc, "sector"):
		industry := company
		if snapshot != nil && snapshot.Sector != "" {
			industry = snapshot.Sector
		}
		results, err := search.IndustryTrends(ctx, r.search, industry)
		if err != nil {
			return nil, "", err
		}
		return results.Items, state.FindingIndustryContext, nil

	default:
		results, err := r.search.Search(ctx, fmt.Sprintf("%s %s", company, task.Description), search.DefaultMaxResults)
		if err != nil {
			return nil, "", err
		}
		return results.Items, state.FindingIndustryContext, nil
	}
}

// supplementFindings adds price history and earnings context when the
// metrics lookup succeeded. Both are best-effort.
func (r *Researcher) supplementFindings(ctx context.Context, company string) []state.Finding {
	var findings []state.Finding

	if h, err := r.market.PriceHistory(ctx, company, "3mo"); err == nil {
		direction := "up"
		if h.ChangePct < 0 {
			direction = "down"
		}
		findings = append(findings, state.Finding{
			Category:  state.FindingFinancialMetrics,
			Title:     fmt.Sprintf("%s price movement (%s)", h.Ticker, h.Period),
			Content:   fmt.Sprintf("%s is %s %.1f%% over the last %s, trading between $%.2f and $%.2f.", h.Ticker, direction, math.Abs(h.ChangePct), h.Period, h.Low, h.High),
			Source:    "market data",
			Relevance: state.PriorityMedium,
		})
	}

	if e, err := r.market.RecentEarnings(ctx, company); err == nil {
		beat := "missed"
		if e.EPSBeat {
			beat = "beat"
		}
		findings = append(findings, state.Finding{
			Category:  state.FindingFinancialMetrics,
			Title:     fmt.Sprintf("%s earnings (%s)", e.Ticker, e.Quarter),
			Content:   fmt.Sprintf("Revenue of $%.1fB with EPS of $%.2f (%s expectations), %.1f%% growth year over year. %s", e.RevenueB, e.EPS, beat, e.YoYGrowth, e.Commentary),
			Source:    "market data",
			Relevance: state.PriorityHigh,
		})
	}

	return findings
}

// synthesize turns raw evidence into findings via the provider.
func (r *Researcher) synthesize(ctx context.Context, query, company string, snapshot *state.FinancialSnapshot, evidence []evidenceItem) ([]state.Finding, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Query: %s\nCompany: %s\n", query, company)
	if snapshot != nil && snapshot.Success {
		fmt.Fprintf(&b, "Snapshot: price $%.2f, P/E %.1f, sector %s\n", snapshot.Price, snapshot.PERatio, snapshot.Sector)
	}
	b.WriteString("\nEvidence:\n")
	for _, ev := range evidence {
		fmt.Fprintf(&b, "- [%s] %s: %s (%s)\n", ev.category, ev.item.Title, ev.item.Content, ev.item.URL)
	}

	text, err := completeJSON(ctx, r.provider, r.opts, researcherPrompt, b.String())
	if err != nil {
		return nil, err
	}
	parsed, err := llm.ExtractJSONAs[researcherResult](text)
	if err != nil {
		return nil, err
	}

	findings := make([]state.Finding, 0, len(parsed.Findings))
	for _, f := range parsed.Findings {
		finding := state.Finding{
			Category:  state.FindingCategory(f.Category),
			Title:     f.Title,
			Content:   f.Content,
			Source:    f.Source,
			Relevance: state.Priority(f.Relevance),
		}
		if finding.Validate() != nil {
			continue
		}
		findings = append(findings, finding)
	}
	if len(findings) == 0 {
		return nil, fmt.Errorf("synthesis produced no valid findings")
	}
	return findings, nil
}

// mechanicalFindings is the fallback when synthesis fails: evidence
// items become findings verbatim, relevance derived from the search
// score.
func mechanicalFindings(evidence []evidenceItem) []state.Finding {
	findings := make([]state.Finding, 0, len(evidence))
	for _, ev := range evidence {
		relevance := state.PriorityLow
		switch {
		case ev.item.Score >= 0.85:
			relevance = state.PriorityHigh
		case ev.item.Score >= 0.7:
			relevance = state.PriorityMedium
		}
		findings = append(findings, state.Finding{
			Category:  ev.category,
			Title:     ev.item.Title,
			Content:   ev.item.Content,
			Source:    ev.item.URL,
			Relevance: relevance,
		})
	}
	return findings
}

func metricsToSnapshot(m *market.Metrics) *state.FinancialSnapshot {
	return &state.FinancialSnapshot{
		Success:      m.Success,
		Ticker:       m.Ticker,
		Company:      m.Company,
		Price:        m.Price,
		MarketCap:    m.MarketCap,
		PERatio:      m.PERatio,
		ProfitMargin: m.ProfitMargin,
		DebtToEquity: m.DebtToEquity,
		High52Week:   m.High52Week,
		Low52Week:    m.Low52Week,
		Sector:       m.Sector,
		Industry:     m.Industry,
		Error:        m.Error,
		Timestamp:    m.Timestamp,
	}
}
