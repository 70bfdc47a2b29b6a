// Package eval replays a fixed suite of research queries through the
// pipeline and scores the routing decisions against expectations:
// did the planner classify the query correctly, and did the run take
// the expected path. It drives the same coordinator the CLI uses.
package eval

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/meridian-ai/meridian/internal/types"
)

// Path labels a run by the branch it took after research.
const (
	PathSimpleResponse = "simple_response"
	PathFullPipeline   = "full_pipeline"
)

// Case is one scored query.
type Case struct {
	ID    string `yaml:"id"`
	Query string `yaml:"query"`

	// ExpectedComplexity is "simple" or "complex"; empty skips the check.
	ExpectedComplexity string `yaml:"expected_complexity,omitempty"`

	// ExpectedPath is "simple_response" or "full_pipeline"; empty skips
	// the check.
	ExpectedPath string `yaml:"expected_path,omitempty"`

	Category string `yaml:"category,omitempty"`
	Notes    string `yaml:"notes,omitempty"`
}

// Validate checks the case is well formed.
func (c Case) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("case is missing an id")
	}
	if c.Query == "" {
		return fmt.Errorf("case %q is missing a query", c.ID)
	}
	switch c.ExpectedComplexity {
	case "", "simple", "complex":
	default:
		return fmt.Errorf("case %q has unknown expected_complexity %q", c.ID, c.ExpectedComplexity)
	}
	switch c.ExpectedPath {
	case "", PathSimpleResponse, PathFullPipeline:
	default:
		return fmt.Errorf("case %q has unknown expected_path %q", c.ID, c.ExpectedPath)
	}
	return nil
}

// Suite is a named collection of cases.
type Suite struct {
	Name  string `yaml:"name"`
	Cases []Case `yaml:"cases"`
}

// Validate checks every case and rejects duplicate IDs.
func (s *Suite) Validate() error {
	if len(s.Cases) == 0 {
		return fmt.Errorf("suite %q has no cases", s.Name)
	}
	seen := make(map[string]bool, len(s.Cases))
	for _, c := range s.Cases {
		if err := c.Validate(); err != nil {
			return err
		}
		if seen[c.ID] {
			return fmt.Errorf("duplicate case id %q", c.ID)
		}
		seen[c.ID] = true
	}
	return nil
}

// Filter returns the cases matching a category. The special categories
// "simple" and "complex" filter on expected complexity instead.
func (s *Suite) Filter(category string) *Suite {
	if category == "" {
		return s
	}
	out := &Suite{Name: s.Name}
	for _, c := range s.Cases {
		switch category {
		case "simple", "complex":
			if c.ExpectedComplexity == category {
				out.Cases = append(out.Cases, c)
			}
		default:
			if c.Category == category {
				out.Cases = append(out.Cases, c)
			}
		}
	}
	return out
}

// LoadSuite reads a YAML suite file.
func LoadSuite(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, types.WrapError(types.CONFIG_LOAD_FAILED,
			fmt.Sprintf("failed to read eval suite %q", path), err)
	}
	var suite Suite
	if err := yaml.Unmarshal(data, &suite); err != nil {
		return nil, types.WrapError(types.CONFIG_PARSE_FAILED,
			fmt.Sprintf("failed to parse eval suite %q", path), err)
	}
	if err := suite.Validate(); err != nil {
		return nil, types.WrapError(types.CONFIG_VALIDATION_FAILED,
			fmt.Sprintf("invalid eval suite %q", path), err)
	}
	return &suite, nil
}

// DefaultSuite returns the built-in query set: complex analyses that
// should take the full pipeline, simple lookups that should short
// circuit, and a couple of edge cases.
func DefaultSuite() *Suite {
	return &Suite{
		Name: "default",
		Cases: []Case{
			{
				ID:                 "complex_1",
				Query:              "Analyze Goldman Sachs' financial health and outlook for 2025",
				ExpectedComplexity: "complex",
				ExpectedPath:       PathFullPipeline,
				Category:           "single_company_analysis",
			},
			{
				ID:                 "complex_2",
				Query:              "What are the key risks facing Tesla right now?",
				ExpectedComplexity: "complex",
				ExpectedPath:       PathFullPipeline,
				Category:           "risk_focused",
			},
			{
				ID:                 "complex_3",
				Query:              "Analyze JPMorgan Chase's competitive position in retail banking",
				ExpectedComplexity: "complex",
				ExpectedPath:       PathFullPipeline,
				Category:           "competitive_analysis",
			},
			{
				ID:                 "complex_4",
				Query:              "Should I invest in Microsoft based on their AI strategy?",
				ExpectedComplexity: "complex",
				ExpectedPath:       PathFullPipeline,
				Category:           "investment_thesis",
			},
			{
				ID:                 "complex_5",
				Query:              "Evaluate Bank of America's dividend sustainability",
				ExpectedComplexity: "complex",
				ExpectedPath:       PathFullPipeline,
				Category:           "dividend_analysis",
			},
			{
				ID:                 "simple_1",
				Query:              "What is Apple's current stock price?",
				ExpectedComplexity: "simple",
				ExpectedPath:       PathSimpleResponse,
				Category:           "price_lookup",
			},
			{
				ID:                 "simple_2",
				Query:              "What's the P/E ratio of Amazon?",
				ExpectedComplexity: "simple",
				ExpectedPath:       PathSimpleResponse,
				Category:           "metric_lookup",
			},
			{
				ID:                 "simple_3",
				Query:              "What is NVIDIA's market cap?",
				ExpectedComplexity: "simple",
				ExpectedPath:       PathSimpleResponse,
				Category:           "metric_lookup",
			},
			{
				ID:                 "edge_1",
				Query:              "Tell me about TD Bank",
				ExpectedComplexity: "complex",
				ExpectedPath:       PathFullPipeline,
				Category:           "ambiguous",
				Notes:              "Vague query, should default to complex",
			},
			{
				ID:                 "edge_2",
				Query:              "Compare the profitability of Citigroup and Wells Fargo",
				ExpectedComplexity: "complex",
				ExpectedPath:       PathFullPipeline,
				Category:           "comparison",
				Notes:              "Multi-company comparison",
			},
		},
	}
}
