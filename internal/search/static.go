package search

import (
	"context"
	"fmt"
	"strings"
)

// StaticClient serves deterministic results keyed off query keywords,
// mirroring the kinds of hits the hosted API returns for financial
// queries. It backs tests, offline runs, and the evaluation harness.
type StaticClient struct{}

// NewStaticClient creates a fixture-backed search client.
func NewStaticClient() *StaticClient { return &StaticClient{} }

// Search routes on keywords in the query: news, analyst/rating,
// industry/trends, with a generic fallback. The query's first word is
// treated as the subject when phrasing the canned items.
func (c *StaticClient) Search(ctx context.Context, query string, maxResults int) (*Results, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	subject := query
	if fields := strings.Fields(query); len(fields) > 0 {
		subject = fields[0]
	}

	lower := strings.ToLower(query)
	var items []Item
	switch {
	case strings.Contains(lower, "news"):
		items = []Item{
			{Title: fmt.Sprintf("%s posts stronger than expected quarterly results", subject), URL: "https://news.example.com/quarterly-results", Content: fmt.Sprintf("%s reported revenue ahead of consensus, driven by services growth and resilient demand.", subject), Score: 0.92},
			{Title: fmt.Sprintf("%s announces new product lineup", subject), URL: "https://news.example.com/product-launch", Content: fmt.Sprintf("%s unveiled its next generation lineup, with analysts noting a focus on recurring revenue.", subject), Score: 0.87},
			{Title: fmt.Sprintf("%s expands buyback program", subject), URL: "https://news.example.com/buyback", Content: fmt.Sprintf("The board of %s authorized an expanded share repurchase program.", subject), Score: 0.81},
		}
	case strings.Contains(lower, "analyst"), strings.Contains(lower, "rating"):
		items = []Item{
			{Title: fmt.Sprintf("Analysts maintain buy rating on %s", subject), URL: "https://research.example.com/rating", Content: fmt.Sprintf("Consensus remains overweight on %s with a median price target roughly 12%% above the current price.", subject), Score: 0.90},
			{Title: fmt.Sprintf("%s price target raised at two firms", subject), URL: "https://research.example.com/price-target", Content: fmt.Sprintf("Two sell-side firms raised their targets on %s citing margin durability.", subject), Score: 0.84},
		}
	case strings.Contains(lower, "industry"), strings.Contains(lower, "trends"):
		items = []Item{
			{Title: fmt.Sprintf("%s sector outlook steady into next year", subject), URL: "https://research.example.com/sector-outlook", Content: "Sector analysts expect mid single digit growth with pricing power concentrated in market leaders.", Score: 0.88},
			{Title: "Supply chains normalize across the sector", URL: "https://research.example.com/supply-chain", Content: "Input costs and lead times have returned to pre-disruption baselines across most of the industry.", Score: 0.79},
		}
	default:
		items = []Item{
			{Title: fmt.Sprintf("Overview: %s", query), URL: "https://search.example.com/overview", Content: fmt.Sprintf("Background information relevant to %q, including recent operating performance and competitive position.", query), Score: 0.75},
			{Title: fmt.Sprintf("Key facts about %s", subject), URL: "https://search.example.com/key-facts", Content: fmt.Sprintf("A summary of fundamentals and recent developments for %s.", subject), Score: 0.70},
		}
	}

	if len(items) > maxResults {
		items = items[:maxResults]
	}
	return &Results{Query: query, Items: items}, nil
}

var _ Client = (*StaticClient)(nil)
