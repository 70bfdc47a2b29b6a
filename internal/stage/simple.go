package stage

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/meridian-ai/meridian/internal/state"
)

// SimpleResponse renders the quick-lookup answer for simple queries
// from the financial snapshot alone. It is purely mechanical; no model
// call is involved.
type SimpleResponse struct {
	opts    options
	printer *message.Printer
}

// NewSimpleResponse creates the simple-response stage.
func NewSimpleResponse(opts ...Option) *SimpleResponse {
	return &SimpleResponse{
		opts:    applyOptions(opts),
		printer: message.NewPrinter(language.English),
	}
}

// Name implements graph.Stage.
func (s *SimpleResponse) Name() string { return StageSimpleResponse }

// Execute implements graph.Stage.
func (s *SimpleResponse) Execute(ctx context.Context, st state.State) state.Delta {
	snap := st.FinancialSnapshot
	if snap == nil || !snap.Success {
		company := st.Company
		if company == "" {
			company = "the requested company"
		}
		s.opts.logger.WarnContext(ctx, "Quick lookup has no data", "company", st.Company)
		return state.Delta{
			FinalReport:  fmt.Sprintf("Could not retrieve data for %s.", company),
			Errors:       []string{errorEntry(StageSimpleResponse, fmt.Errorf("no financial data for %q", company))},
			CurrentStage: CompleteMarker(StageSimpleResponse),
		}
	}

	company := snap.Company
	if company == "" {
		company = st.Company
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s (%s) - Quick Lookup\n\n", company, snap.Ticker)
	b.WriteString("| Metric | Value |\n")
	b.WriteString("|--------|-------|\n")
	fmt.Fprintf(&b, "| Price | $%.2f |\n", snap.Price)
	fmt.Fprintf(&b, "| Market Cap | %s |\n", s.printer.Sprintf("$%d", int64(snap.MarketCap)))
	fmt.Fprintf(&b, "| P/E Ratio | %.1f |\n", snap.PERatio)
	fmt.Fprintf(&b, "| Sector | %s |\n", snap.Sector)
	fmt.Fprintf(&b, "| Industry | %s |\n", snap.Industry)
	if snap.Low52Week > 0 && snap.High52Week > 0 {
		fmt.Fprintf(&b, "| 52-Week Range | $%.2f - $%.2f |\n", snap.Low52Week, snap.High52Week)
	}
	if !snap.Timestamp.IsZero() {
		fmt.Fprintf(&b, "\n*Data as of %s*\n", snap.Timestamp.Format("2006-01-02 15:04 MST"))
	}

	s.opts.logger.InfoContext(ctx, "Quick lookup rendered", "company", company, "ticker", snap.Ticker)

	return state.Delta{
		FinalReport:  b.String(),
		CurrentStage: CompleteMarker(StageSimpleResponse),
	}
}
