package market

import (
	"context"
	"fmt"
	"time"
)

// StaticProvider serves deterministic fixture data. It backs tests,
// offline runs, and the evaluation harness.
type StaticProvider struct {
	metrics  map[string]Metrics
	history  map[string]History
	earnings map[string]Earnings
}

// StaticOption configures a StaticProvider.
type StaticOption func(*StaticProvider)

// WithMetrics replaces the metrics fixtures, keyed by ticker.
func WithMetrics(fixtures map[string]Metrics) StaticOption {
	return func(p *StaticProvider) { p.metrics = fixtures }
}

// WithHistory replaces the price history fixtures, keyed by ticker.
func WithHistory(fixtures map[string]History) StaticOption {
	return func(p *StaticProvider) { p.history = fixtures }
}

// WithEarnings replaces the earnings fixtures, keyed by ticker.
func WithEarnings(fixtures map[string]Earnings) StaticOption {
	return func(p *StaticProvider) { p.earnings = fixtures }
}

// NewStaticProvider creates a provider with the built-in fixture set
// unless overridden.
func NewStaticProvider(opts ...StaticOption) *StaticProvider {
	p := &StaticProvider{
		metrics:  defaultMetrics(),
		history:  defaultHistory(),
		earnings: defaultEarnings(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CompanyMetrics resolves the company to a ticker and returns its
// fixture, or a Success=false record when no fixture exists.
func (p *StaticProvider) CompanyMetrics(ctx context.Context, company string) (*Metrics, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ticker := ResolveTicker(company)
	m, ok := p.metrics[ticker]
	if !ok {
		return Failed(company, fmt.Sprintf("no data available for %q", company)), nil
	}
	out := m
	out.Timestamp = time.Now().UTC()
	return &out, nil
}

// PriceHistory returns the fixture movement summary for the period.
func (p *StaticProvider) PriceHistory(ctx context.Context, company, period string) (*History, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ticker := ResolveTicker(company)
	h, ok := p.history[ticker]
	if !ok {
		return nil, fmt.Errorf("no price history for %q", company)
	}
	out := h
	if period != "" {
		out.Period = period
	}
	return &out, nil
}

// RecentEarnings returns the fixture quarter.
func (p *StaticProvider) RecentEarnings(ctx context.Context, company string) (*Earnings, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ticker := ResolveTicker(company)
	e, ok := p.earnings[ticker]
	if !ok {
		return nil, fmt.Errorf("no earnings data for %q", company)
	}
	out := e
	return &out, nil
}

// Compare returns metrics for each company, substituting failure
// records for unknown ones.
func (p *StaticProvider) Compare(ctx context.Context, companies []string) (*Comparison, error) {
	cmp := &Comparison{Companies: make([]Metrics, 0, len(companies))}
	for _, company := range companies {
		m, err := p.CompanyMetrics(ctx, company)
		if err != nil {
			return nil, err
		}
		cmp.Companies = append(cmp.Companies, *m)
	}
	return cmp, nil
}

func defaultMetrics() map[string]Metrics {
	return map[string]Metrics{
		"AAPL": {
			Success: true, Ticker: "AAPL", Company: "Apple Inc.",
			Price: 150.00, MarketCap: 2_000_000_000_000, PERatio: 25.0,
			ProfitMargin: 0.253, DebtToEquity: 1.76,
			High52Week: 182.94, Low52Week: 124.17,
			Sector: "Technology", Industry: "Consumer Electronics",
		},
		"MSFT": {
			Success: true, Ticker: "MSFT", Company: "Microsoft Corporation",
			Price: 378.85, MarketCap: 2_810_000_000_000, PERatio: 36.5,
			ProfitMargin: 0.342, DebtToEquity: 0.47,
			High52Week: 384.30, Low52Week: 309.45,
			Sector: "Technology", Industry: "Software - Infrastructure",
		},
		"TSLA": {
			Success: true, Ticker: "TSLA", Company: "Tesla, Inc.",
			Price: 248.50, MarketCap: 789_000_000_000, PERatio: 71.2,
			ProfitMargin: 0.152, DebtToEquity: 0.28,
			High52Week: 299.29, Low52Week: 152.37,
			Sector: "Consumer Cyclical", Industry: "Auto Manufacturers",
		},
		"JPM": {
			Success: true, Ticker: "JPM", Company: "JPMorgan Chase & Co.",
			Price: 171.78, MarketCap: 495_000_000_000, PERatio: 10.8,
			ProfitMargin: 0.32, DebtToEquity: 1.29,
			High52Week: 179.04, Low52Week: 131.81,
			Sector: "Financial Services", Industry: "Banks - Diversified",
		},
		"NVDA": {
			Success: true, Ticker: "NVDA", Company: "NVIDIA Corporation",
			Price: 495.22, MarketCap: 1_220_000_000_000, PERatio: 63.4,
			ProfitMargin: 0.489, DebtToEquity: 0.26,
			High52Week: 505.48, Low52Week: 138.84,
			Sector: "Technology", Industry: "Semiconductors",
		},
	}
}

func defaultHistory() map[string]History {
	return map[string]History{
		"AAPL": {Ticker: "AAPL", Period: "3mo", StartPrice: 141.20, EndPrice: 150.00, ChangePct: 6.23, High: 155.12, Low: 138.90},
		"MSFT": {Ticker: "MSFT", Period: "3mo", StartPrice: 351.60, EndPrice: 378.85, ChangePct: 7.75, High: 384.30, Low: 345.12},
		"TSLA": {Ticker: "TSLA", Period: "3mo", StartPrice: 265.30, EndPrice: 248.50, ChangePct: -6.33, High: 278.98, Low: 234.41},
		"JPM":  {Ticker: "JPM", Period: "3mo", StartPrice: 158.42, EndPrice: 171.78, ChangePct: 8.43, High: 174.10, Low: 155.67},
		"NVDA": {Ticker: "NVDA", Period: "3mo", StartPrice: 439.50, EndPrice: 495.22, ChangePct: 12.68, High: 505.48, Low: 430.12},
	}
}

func defaultEarnings() map[string]Earnings {
	return map[string]Earnings{
		"AAPL": {Ticker: "AAPL", Quarter: "Q3 FY2025", RevenueB: 85.8, EPS: 1.40, EPSBeat: true, YoYGrowth: 4.9, Commentary: "Services revenue at an all-time high; iPhone revenue roughly flat year over year."},
		"MSFT": {Ticker: "MSFT", Quarter: "Q4 FY2025", RevenueB: 64.7, EPS: 2.95, EPSBeat: true, YoYGrowth: 15.2, Commentary: "Azure growth continued to lead; AI services contributed a growing share."},
		"TSLA": {Ticker: "TSLA", Quarter: "Q2 2025", RevenueB: 25.5, EPS: 0.52, EPSBeat: false, YoYGrowth: 2.3, Commentary: "Automotive margins compressed on pricing actions; energy storage deployments doubled."},
		"JPM":  {Ticker: "JPM", Quarter: "Q2 2025", RevenueB: 50.2, EPS: 4.40, EPSBeat: true, YoYGrowth: 11.7, Commentary: "Net interest income ahead of guidance; credit costs normalized."},
		"NVDA": {Ticker: "NVDA", Quarter: "Q2 FY2026", RevenueB: 30.0, EPS: 0.68, EPSBeat: true, YoYGrowth: 122.4, Commentary: "Data center demand continued to outpace supply."},
	}
}

var _ Provider = (*StaticProvider)(nil)
