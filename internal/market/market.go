// Package market provides financial data lookups for the research
// pipeline. Lookups that find nothing return a Metrics record with
// Success=false rather than an error; errors are reserved for
// transport-level failures. The researcher treats both the same way
// and continues without financial data.
package market

import (
	"context"
	"time"
)

// Provider serves company fundamentals and supplementary data.
type Provider interface {
	// CompanyMetrics returns fundamentals for a company name or
	// ticker. Unknown companies yield Success=false with Error set.
	CompanyMetrics(ctx context.Context, company string) (*Metrics, error)

	// PriceHistory summarizes price movement over a period such as
	// "1mo", "3mo" or "1y".
	PriceHistory(ctx context.Context, company, period string) (*History, error)

	// RecentEarnings returns the latest reported quarter.
	RecentEarnings(ctx context.Context, company string) (*Earnings, error)

	// Compare fetches metrics for several companies at once.
	Compare(ctx context.Context, companies []string) (*Comparison, error)
}

// Metrics is a point-in-time fundamentals record.
type Metrics struct {
	Success      bool      `json:"success"`
	Ticker       string    `json:"ticker"`
	Company      string    `json:"company"`
	Price        float64   `json:"price"`
	MarketCap    float64   `json:"market_cap"`
	PERatio      float64   `json:"pe_ratio"`
	ProfitMargin float64   `json:"profit_margin"`
	DebtToEquity float64   `json:"debt_to_equity"`
	High52Week   float64   `json:"fifty_two_week_high,omitempty"`
	Low52Week    float64   `json:"fifty_two_week_low,omitempty"`
	Sector       string    `json:"sector,omitempty"`
	Industry     string    `json:"industry,omitempty"`
	Error        string    `json:"error,omitempty"`
	Timestamp    time.Time `json:"timestamp,omitzero"`
}

// Failed builds the Success=false record returned for unknown or
// unavailable companies.
func Failed(company, reason string) *Metrics {
	return &Metrics{
		Success:   false,
		Company:   company,
		Ticker:    ResolveTicker(company),
		Error:     reason,
		Timestamp: time.Now().UTC(),
	}
}

// History summarizes price movement over a period.
type History struct {
	Ticker     string  `json:"ticker"`
	Period     string  `json:"period"`
	StartPrice float64 `json:"start_price"`
	EndPrice   float64 `json:"end_price"`
	ChangePct  float64 `json:"change_pct"`
	High       float64 `json:"high"`
	Low        float64 `json:"low"`
}

// Earnings is the most recent reported quarter.
type Earnings struct {
	Ticker     string  `json:"ticker"`
	Quarter    string  `json:"quarter"`
	RevenueB   float64 `json:"revenue_billions"`
	EPS        float64 `json:"eps"`
	EPSBeat    bool    `json:"eps_beat"`
	YoYGrowth  float64 `json:"yoy_growth_pct"`
	Commentary string  `json:"commentary,omitempty"`
}

// Comparison is a side-by-side metrics set.
type Comparison struct {
	Companies []Metrics `json:"companies"`
}
