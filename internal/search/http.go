package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/meridian-ai/meridian/internal/types"
)

// DefaultBaseURL is the hosted search API endpoint.
const DefaultBaseURL = "https://api.tavily.com"

// HTTPClient talks to a Tavily-compatible search API. Calls are rate
// limited client-side.
type HTTPClient struct {
	baseURL string
	apiKey  string
	depth   string
	cap     int
	client  *http.Client
	limiter *rate.Limiter
}

// HTTPOption configures an HTTPClient.
type HTTPOption func(*HTTPClient)

// WithBaseURL points the client at a different endpoint.
func WithBaseURL(baseURL string) HTTPOption {
	return func(c *HTTPClient) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(c *HTTPClient) {
		if client != nil {
			c.client = client
		}
	}
}

// WithRateLimit sets the request rate in requests per second.
func WithRateLimit(rps float64, burst int) HTTPOption {
	return func(c *HTTPClient) {
		if rps > 0 && burst > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

// WithSearchDepth selects the API's "basic" or "advanced" mode.
func WithSearchDepth(depth string) HTTPOption {
	return func(c *HTTPClient) {
		if depth != "" {
			c.depth = depth
		}
	}
}

// WithMaxResults caps how many results any single call may request,
// regardless of what the caller asks for. Zero means no cap.
func WithMaxResults(n int) HTTPOption {
	return func(c *HTTPClient) {
		if n > 0 {
			c.cap = n
		}
	}
}

// NewHTTPClient creates a search client. Defaults: hosted endpoint,
// basic depth, 10s timeout, 2 req/s with a burst of 3.
func NewHTTPClient(apiKey string, opts ...HTTPOption) *HTTPClient {
	c := &HTTPClient{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		depth:   "basic",
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(2), 3),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchRequest struct {
	APIKey      string `json:"api_key"`
	Query       string `json:"query"`
	MaxResults  int    `json:"max_results"`
	SearchDepth string `json:"search_depth"`
}

type searchResponse struct {
	Query   string `json:"query"`
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

// Search runs a query and returns scored results.
func (c *HTTPClient) Search(ctx context.Context, query string, maxResults int) (*Results, error) {
	if query == "" {
		return nil, types.NewError(types.SEARCH_REQUEST_FAILED, "query must not be empty")
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	if c.cap > 0 && maxResults > c.cap {
		maxResults = c.cap
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(searchRequest{
		APIKey:      c.apiKey,
		Query:       query,
		MaxResults:  maxResults,
		SearchDepth: c.depth,
	})
	if err != nil {
		return nil, types.WrapError(types.SEARCH_REQUEST_FAILED, "failed to encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, types.WrapError(types.SEARCH_REQUEST_FAILED, "failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, types.WrapError(types.SEARCH_REQUEST_FAILED, "request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, types.NewRetryableError(types.SEARCH_REQUEST_FAILED,
			fmt.Sprintf("rate limited by search service (%s)", resp.Status))
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, types.NewError(types.SEARCH_REQUEST_FAILED,
			fmt.Sprintf("search service rejected credentials (%s)", resp.Status))
	case resp.StatusCode != http.StatusOK:
		return nil, types.NewError(types.SEARCH_REQUEST_FAILED,
			fmt.Sprintf("search service returned %s", resp.Status))
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, types.WrapError(types.SEARCH_REQUEST_FAILED, "failed to decode response", err)
	}

	results := &Results{Query: query, Items: make([]Item, 0, len(decoded.Results))}
	for _, r := range decoded.Results {
		results.Items = append(results.Items, Item{
			Title:   r.Title,
			URL:     r.URL,
			Content: r.Content,
			Score:   r.Score,
		})
	}
	return results, nil
}

var _ Client = (*HTTPClient)(nil)
