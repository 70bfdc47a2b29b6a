package stage

import (
	"context"
	"fmt"
	"strings"

	"github.com/meridian-ai/meridian/internal/llm"
	"github.com/meridian-ai/meridian/internal/state"
)

const writerPrompt = `You are the report writer of a financial research pipeline.
Write a professional markdown research report for the company using the
research findings and analysis provided.

Structure the report with these sections:
# <Company> Research Report
## Executive Summary
## Financial Overview
## Key Findings
## Analysis
## Outlook

Write in measured, factual prose. Cite only the findings and data
provided. Respond with the markdown report only, no preamble.`

const reviserPrompt = `You are the report writer of a financial research pipeline.
A reviewer rejected your previous draft. Revise it according to the
reviewer's instructions while keeping the same section structure.

Respond with the full revised markdown report only, no preamble.`

// Writer drafts the research report, or revises a prior draft when the
// quality checker sent it back with instructions.
type Writer struct {
	provider llm.Provider
	opts     options
}

// NewWriter creates the writer stage.
func NewWriter(provider llm.Provider, opts ...Option) *Writer {
	return &Writer{provider: provider, opts: applyOptions(opts)}
}

// Name implements graph.Stage.
func (w *Writer) Name() string { return StageWriter }

// Execute implements graph.Stage.
func (w *Writer) Execute(ctx context.Context, s state.State) state.Delta {
	revising := s.QualityReview != nil && s.QualityReview.RevisionInstructions != "" && s.DraftReport != ""

	system := writerPrompt
	if revising {
		system = reviserPrompt
	}

	text, err := completeText(ctx, w.provider, w.opts, system, writerPayload(s, revising))
	if err == nil && strings.TrimSpace(text) == "" {
		err = fmt.Errorf("provider returned an empty draft")
	}
	if err != nil {
		w.opts.logger.WarnContext(ctx, "Report drafting failed", "revising", revising, "error", err)
		return state.Delta{
			Errors:       []string{errorEntry(StageWriter, err)},
			CurrentStage: FailedMarker(StageWriter),
		}
	}

	w.opts.logger.InfoContext(ctx, "Report drafted",
		"company", s.Company,
		"revising", revising,
		"chars", len(text))

	return state.Delta{
		DraftReport:  text,
		CurrentStage: CompleteMarker(StageWriter),
	}
}

// writerPayload renders the material the writer works from. In
// revision mode it leads with the reviewer's instructions and the
// rejected draft.
func writerPayload(s state.State, revising bool) string {
	var b strings.Builder

	if revising {
		fmt.Fprintf(&b, "Reviewer instructions:\n%s\n\nPrevious draft:\n%s\n\n", s.QualityReview.RevisionInstructions, s.DraftReport)
		if len(s.QualityReview.Issues) > 0 {
			b.WriteString("Reviewer issues:\n")
			for _, issue := range s.QualityReview.Issues {
				fmt.Fprintf(&b, "- %s\n", issue)
			}
			b.WriteString("\n")
		}
	}

	fmt.Fprintf(&b, "Company: %s\nQuery: %s\n", s.Company, s.Query)

	if snap := s.FinancialSnapshot; snap != nil && snap.Success {
		fmt.Fprintf(&b, "\nMarket data (%s): price $%.2f, market cap $%.0f, P/E %.1f, sector %s\n",
			snap.Ticker, snap.Price, snap.MarketCap, snap.PERatio, snap.Sector)
	}

	b.WriteString("\nFindings:\n")
	if len(s.Findings) == 0 {
		b.WriteString("- none\n")
	}
	for _, f := range s.Findings {
		fmt.Fprintf(&b, "- [%s] %s: %s\n", f.Category, f.Title, f.Content)
	}

	if a := s.Analysis; a != nil {
		b.WriteString("\nAnalysis:\n")
		writeList(&b, "Strengths", a.Strengths)
		writeList(&b, "Weaknesses", a.Weaknesses)
		writeList(&b, "Opportunities", a.Opportunities)
		writeList(&b, "Threats", a.Threats)
		if a.KeyMetricsSummary != "" {
			fmt.Fprintf(&b, "Key metrics: %s\n", a.KeyMetricsSummary)
		}
		if a.OverallAssessment != "" {
			fmt.Fprintf(&b, "Assessment: %s\n", a.OverallAssessment)
		}
	}

	return b.String()
}

func writeList(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", label)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}
