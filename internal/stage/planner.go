package stage

import (
	"context"

	"github.com/meridian-ai/meridian/internal/llm"
	"github.com/meridian-ai/meridian/internal/state"
)

const plannerPrompt = `You are the planning component of a financial research pipeline.
Given a user query about a company, classify it and produce a research plan.

Respond with JSON only, no prose:
{
  "company": "<company name or ticker the query is about, empty string if none>",
  "complexity": "simple" | "complex",
  "plan": [
    {"id": 1, "description": "<what to research>", "category": "data" | "search" | "analysis", "priority": "high" | "medium" | "low"}
  ]
}

Classify as "simple" only when the query asks for a single current fact
(stock price, market cap, P/E ratio) answerable from one data lookup.
Anything needing synthesis, comparison, or judgment is "complex".
Always include at least one "data" task when a company is identified.`

// Planner classifies the query, extracts the company, and produces the
// research plan. When classification fails it defaults to the complex
// path: an unknown query must never be routed onto the cheap
// quick-lookup path.
type Planner struct {
	provider llm.Provider
	opts     options
}

// NewPlanner creates the planner stage.
func NewPlanner(provider llm.Provider, opts ...Option) *Planner {
	return &Planner{provider: provider, opts: applyOptions(opts)}
}

// Name implements graph.Stage.
func (p *Planner) Name() string { return StagePlanner }

type plannerResult struct {
	Company    string `json:"company"`
	Complexity string `json:"complexity"`
	Plan       []struct {
		ID          int    `json:"id"`
		Description string `json:"description"`
		Category    string `json:"category"`
		Priority    string `json:"priority"`
	} `json:"plan"`
}

// Execute implements graph.Stage.
func (p *Planner) Execute(ctx context.Context, s state.State) state.Delta {
	text, err := completeJSON(ctx, p.provider, p.opts, plannerPrompt, s.Query)
	if err != nil {
		return p.failed(ctx, err)
	}
	parsed, err := llm.ExtractJSONAs[plannerResult](text)
	if err != nil {
		return p.failed(ctx, err)
	}

	plan := make([]state.Subtask, 0, len(parsed.Plan))
	for _, t := range parsed.Plan {
		task := state.Subtask{
			ID:          t.ID,
			Description: t.Description,
			Category:    state.TaskCategory(t.Category),
			Priority:    state.Priority(t.Priority),
		}
		if task.Validate() != nil {
			continue
		}
		plan = append(plan, task)
	}

	complexity := state.Complexity(parsed.Complexity).OrDefault()
	p.opts.logger.InfoContext(ctx, "Research planned",
		"company", parsed.Company,
		"complexity", complexity,
		"tasks", len(plan))

	return state.Delta{
		Company:      parsed.Company,
		Complexity:   complexity,
		Plan:         plan,
		CurrentStage: CompleteMarker(StagePlanner),
	}
}

// failed is the planner's degraded path: complex complexity, an empty
// plan, and an error entry.
func (p *Planner) failed(ctx context.Context, err error) state.Delta {
	p.opts.logger.WarnContext(ctx, "Planning failed, defaulting to complex path", "error", err)
	return state.Delta{
		Complexity:   state.ComplexityComplex,
		Plan:         []state.Subtask{},
		Errors:       []string{errorEntry(StagePlanner, err)},
		CurrentStage: FailedMarker(StagePlanner),
	}
}
