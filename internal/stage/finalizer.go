package stage

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/meridian-ai/meridian/internal/state"
)

// riskCategoryOrder fixes the table order for the known risk
// dimensions. Unknown keys from the assessor are appended after these,
// sorted by name.
var riskCategoryOrder = []string{
	state.RiskMarket,
	state.RiskCompetitive,
	state.RiskFinancial,
	state.RiskRegulatory,
	state.RiskOperational,
}

// Finalizer assembles the final report from the approved draft and the
// risk assessment. It is purely mechanical; no model call is involved.
type Finalizer struct {
	opts  options
	title cases.Caser
}

// NewFinalizer creates the finalizer stage.
func NewFinalizer(opts ...Option) *Finalizer {
	return &Finalizer{
		opts:  applyOptions(opts),
		title: cases.Title(language.English),
	}
}

// Name implements graph.Stage.
func (f *Finalizer) Name() string { return StageFinalizer }

// Execute implements graph.Stage.
func (f *Finalizer) Execute(ctx context.Context, s state.State) state.Delta {
	final := s.DraftReport
	if strings.TrimSpace(final) == "" {
		f.opts.logger.WarnContext(ctx, "Finalizing without a draft", "company", s.Company)
		return state.Delta{
			FinalReport:  "No report draft was produced for this run.",
			Errors:       []string{errorEntry(StageFinalizer, fmt.Errorf("no draft report to finalize"))},
			CurrentStage: CompleteMarker(StageFinalizer),
		}
	}

	if risk := s.RiskAssessment; risk != nil && risk.OverallRiskLevel != "" {
		final += f.riskSection(risk)
	}

	f.opts.logger.InfoContext(ctx, "Report finalized",
		"company", s.Company,
		"chars", len(final))

	return state.Delta{
		FinalReport:  final,
		CurrentStage: CompleteMarker(StageFinalizer),
	}
}

// riskSection renders the risk assessment as a markdown section
// appended to the report.
func (f *Finalizer) riskSection(risk *state.RiskAssessment) string {
	var b strings.Builder

	b.WriteString("\n\n## Detailed Risk Assessment\n\n")
	fmt.Fprintf(&b, "**Overall Risk Level: %s**\n", strings.ToUpper(risk.OverallRiskLevel))

	if len(risk.Categories) > 0 {
		b.WriteString("\n| Category | Level | Assessment |\n")
		b.WriteString("|----------|-------|------------|\n")
		for _, key := range orderedRiskKeys(risk.Categories) {
			cat := risk.Categories[key]
			fmt.Fprintf(&b, "| %s | %s | %s |\n", f.displayName(key), cat.Level, cat.Assessment)
		}
	}

	if len(risk.KeyRiskFactors) > 0 {
		b.WriteString("\n**Key Risk Factors:**\n")
		for _, factor := range risk.KeyRiskFactors {
			fmt.Fprintf(&b, "- %s\n", factor)
		}
	}

	if len(risk.Mitigants) > 0 {
		b.WriteString("\n**Mitigants:**\n")
		for _, mitigant := range risk.Mitigants {
			fmt.Fprintf(&b, "- %s\n", mitigant)
		}
	}

	if risk.Summary != "" {
		fmt.Fprintf(&b, "\n%s\n", risk.Summary)
	}

	return b.String()
}

// orderedRiskKeys returns the known categories in their fixed order
// followed by any extra keys sorted by name.
func orderedRiskKeys(categories map[string]state.RiskCategory) []string {
	keys := make([]string, 0, len(categories))
	seen := make(map[string]bool, len(riskCategoryOrder))
	for _, key := range riskCategoryOrder {
		seen[key] = true
		if _, ok := categories[key]; ok {
			keys = append(keys, key)
		}
	}

	var extra []string
	for key := range categories {
		if !seen[key] {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	return append(keys, extra...)
}

// displayName turns a category key like "market_risk" into "Market Risk".
func (f *Finalizer) displayName(key string) string {
	return f.title.String(strings.ReplaceAll(key, "_", " "))
}
