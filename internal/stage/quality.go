package stage

import (
	"context"
	"fmt"
	"strings"

	"github.com/meridian-ai/meridian/internal/llm"
	"github.com/meridian-ai/meridian/internal/state"
)

const qualityPrompt = `You are the quality reviewer of a financial research pipeline.
Review the report draft against the research findings for accuracy,
completeness and clarity.

Respond with JSON only, no prose:
{
  "passed": true | false,
  "score": <1-10>,
  "issues": ["<specific problem>", ...],
  "revision_instructions": "<what the writer should change, empty when passed>"
}

Pass drafts scoring 7 or higher. Reject drafts that contradict the
findings, omit major findings, or lack a clear assessment.`

// QualityChecker reviews the draft report. When the reviewer itself
// fails, the draft is waved through rather than blocking the pipeline
// on a broken reviewer.
type QualityChecker struct {
	provider llm.Provider
	opts     options
}

// NewQualityChecker creates the quality-checker stage.
func NewQualityChecker(provider llm.Provider, opts ...Option) *QualityChecker {
	return &QualityChecker{provider: provider, opts: applyOptions(opts)}
}

// Name implements graph.Stage.
func (q *QualityChecker) Name() string { return StageQualityChecker }

type qualityResult struct {
	Passed               bool     `json:"passed"`
	Score                int      `json:"score"`
	Issues               []string `json:"issues"`
	RevisionInstructions string   `json:"revision_instructions"`
}

// Execute implements graph.Stage.
func (q *QualityChecker) Execute(ctx context.Context, s state.State) state.Delta {
	if strings.TrimSpace(s.DraftReport) == "" {
		q.opts.logger.WarnContext(ctx, "Quality check failed, no draft to review")
		count := s.RevisionCount + 1
		return state.Delta{
			QualityReview: &state.QualityReview{
				Passed: false,
				Score:  0,
				Issues: []string{"no draft to review"},
			},
			RevisionCount: &count,
			Errors:        []string{errorEntry(StageQualityChecker, fmt.Errorf("no draft to review"))},
			CurrentStage:  FailedMarker(StageQualityChecker),
		}
	}

	text, err := completeJSON(ctx, q.provider, q.opts, qualityPrompt, qualityPayload(s))
	var parsed qualityResult
	if err == nil {
		parsed, err = llm.ExtractJSONAs[qualityResult](text)
	}
	if err != nil {
		// A broken reviewer must not strand a finished draft, so
		// reviewer failures pass the draft with a middling score.
		q.opts.logger.WarnContext(ctx, "Quality check failed, passing draft unreviewed", "error", err)
		return state.Delta{
			QualityReview: &state.QualityReview{Passed: true, Score: 5},
			Errors:        []string{errorEntry(StageQualityChecker, err)},
			CurrentStage:  FailedMarker(StageQualityChecker),
		}
	}

	review := &state.QualityReview{
		Passed:               parsed.Passed,
		Score:                parsed.Score,
		Issues:               parsed.Issues,
		RevisionInstructions: parsed.RevisionInstructions,
	}

	delta := state.Delta{
		QualityReview: review,
		CurrentStage:  CompleteMarker(StageQualityChecker),
	}
	if !review.Passed {
		count := s.RevisionCount + 1
		delta.RevisionCount = &count
	}

	q.opts.logger.InfoContext(ctx, "Quality check complete",
		"passed", review.Passed,
		"score", review.Score,
		"issues", len(review.Issues))

	return delta
}

func qualityPayload(s state.State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Company: %s\n\nFindings:\n", s.Company)
	if len(s.Findings) == 0 {
		b.WriteString("- none\n")
	}
	for _, f := range s.Findings {
		fmt.Fprintf(&b, "- [%s] %s: %s\n", f.Category, f.Title, f.Content)
	}
	fmt.Fprintf(&b, "\nDraft report:\n%s\n", s.DraftReport)
	return b.String()
}
