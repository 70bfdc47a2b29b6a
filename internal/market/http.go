package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/meridian-ai/meridian/internal/types"
)

// HTTPProvider fetches market data from a JSON REST service. Requests
// are rate limited client-side so a burst of research tasks cannot
// trip the upstream quota.
type HTTPProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
}

// HTTPOption configures an HTTPProvider.
type HTTPOption func(*HTTPProvider)

// WithAPIKey sets the X-API-Key header on every request.
func WithAPIKey(key string) HTTPOption {
	return func(p *HTTPProvider) { p.apiKey = key }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(p *HTTPProvider) {
		if client != nil {
			p.client = client
		}
	}
}

// WithRateLimit sets the request rate in requests per second.
func WithRateLimit(rps float64, burst int) HTTPOption {
	return func(p *HTTPProvider) {
		if rps > 0 && burst > 0 {
			p.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

// NewHTTPProvider creates a provider for the service at baseURL.
// Defaults: 10s request timeout, 5 req/s with a burst of 5.
func NewHTTPProvider(baseURL string, opts ...HTTPOption) *HTTPProvider {
	p := &HTTPProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(5), 5),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CompanyMetrics fetches fundamentals. A 404 means the service does
// not know the company and maps to a Success=false record.
func (p *HTTPProvider) CompanyMetrics(ctx context.Context, company string) (*Metrics, error) {
	ticker := ResolveTicker(company)
	var m Metrics
	found, err := p.get(ctx, "/v1/metrics", url.Values{"symbol": {ticker}}, &m)
	if err != nil {
		return nil, err
	}
	if !found {
		return Failed(company, fmt.Sprintf("no data available for %q", company)), nil
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now().UTC()
	}
	return &m, nil
}

// PriceHistory fetches a movement summary for the period.
func (p *HTTPProvider) PriceHistory(ctx context.Context, company, period string) (*History, error) {
	ticker := ResolveTicker(company)
	var h History
	found, err := p.get(ctx, "/v1/history", url.Values{"symbol": {ticker}, "period": {period}}, &h)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, types.NewError(types.MARKET_LOOKUP_FAILED,
			fmt.Sprintf("no price history for %q", company))
	}
	return &h, nil
}

// RecentEarnings fetches the latest reported quarter.
func (p *HTTPProvider) RecentEarnings(ctx context.Context, company string) (*Earnings, error) {
	ticker := ResolveTicker(company)
	var e Earnings
	found, err := p.get(ctx, "/v1/earnings", url.Values{"symbol": {ticker}}, &e)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, types.NewError(types.MARKET_LOOKUP_FAILED,
			fmt.Sprintf("no earnings data for %q", company))
	}
	return &e, nil
}

// Compare fetches metrics for each company sequentially, letting the
// limiter pace the calls.
func (p *HTTPProvider) Compare(ctx context.Context, companies []string) (*Comparison, error) {
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

// get performs a rate-limited GET and decodes the JSON body into out.
// It returns found=false for 404 responses so callers can apply their
// own missing-data semantics.
func (p *HTTPProvider) get(ctx context.Context, path string, query url.Values, out interface{}) (found bool, err error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return false, types.WrapError(types.MARKET_LOOKUP_FAILED, "failed to build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if p.apiKey != "" {
		req.Header.Set("X-API-Key", p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return false, types.WrapError(types.MARKET_LOOKUP_FAILED, "request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return false, types.NewRetryableError(types.MARKET_LOOKUP_FAILED,
			fmt.Sprintf("rate limited by market data service (%s)", resp.Status))
	case resp.StatusCode != http.StatusOK:
		return false, types.NewError(types.MARKET_LOOKUP_FAILED,
			fmt.Sprintf("market data service returned %s", resp.Status))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, types.WrapError(types.MARKET_LOOKUP_FAILED, "failed to decode response", err)
	}
	return true, nil
}

var _ Provider = (*HTTPProvider)(nil)
