// Package search provides web search for the researcher stage. The
// production client speaks a Tavily-style JSON API; the static client
// serves canned results for tests and offline runs.
package search

import (
	"context"
	"fmt"
)

// DefaultMaxResults is used by the convenience wrappers.
const DefaultMaxResults = 5

// Client performs a web search.
type Client interface {
	Search(ctx context.Context, query string, maxResults int) (*Results, error)
}

// Item is a single search hit.
type Item struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Results is a scored result set for a query.
type Results struct {
	Query string `json:"query"`
	Items []Item `json:"items"`
}

// FinancialNews searches for recent news about a company's stock.
func FinancialNews(ctx context.Context, c Client, company string) (*Results, error) {
	return c.Search(ctx, fmt.Sprintf("%s stock news latest developments", company), DefaultMaxResults)
}

// CompanyAnalysis searches for analyst opinions and price targets.
func CompanyAnalysis(ctx context.Context, c Client, company string) (*Results, error) {
	return c.Search(ctx, fmt.Sprintf("%s stock analyst ratings price target analysis", company), DefaultMaxResults)
}

// IndustryTrends searches for sector-level outlook.
func IndustryTrends(ctx context.Context, c Client, industry string) (*Results, error) {
	return c.Search(ctx, fmt.Sprintf("%s industry trends outlook", industry), DefaultMaxResults)
}
