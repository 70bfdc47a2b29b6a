package market

import "strings"

// tickerMap resolves common company names to their primary listing.
// Lookups are lowercase-normalized; anything not found falls through
// to ResolveTicker's heuristics.
var tickerMap = map[string]string{
	"apple":             "AAPL",
	"microsoft":         "MSFT",
	"google":            "GOOGL",
	"alphabet":          "GOOGL",
	"amazon":            "AMZN",
	"tesla":             "TSLA",
	"meta":              "META",
	"facebook":          "META",
	"nvidia":            "NVDA",
	"netflix":           "NFLX",
	"intel":             "INTC",
	"amd":               "AMD",
	"ibm":               "IBM",
	"oracle":            "ORCL",
	"salesforce":        "CRM",
	"jpmorgan":          "JPM",
	"jpmorgan chase":    "JPM",
	"goldman sachs":     "GS",
	"goldman":           "GS",
	"morgan stanley":    "MS",
	"bank of america":   "BAC",
	"wells fargo":       "WFC",
	"visa":              "V",
	"mastercard":        "MA",
	"walmart":           "WMT",
	"disney":            "DIS",
	"coca-cola":         "KO",
	"coca cola":         "KO",
	"pepsi":             "PEP",
	"pepsico":           "PEP",
	"boeing":            "BA",
	"exxon":             "XOM",
	"exxonmobil":        "XOM",
	"chevron":           "CVX",
	"pfizer":            "PFE",
	"johnson & johnson": "JNJ",
}

// corporate suffixes stripped before a map lookup, so "Apple Inc."
// still resolves.
var corporateSuffixes = []string{"inc.", "inc", "corp.", "corp", "corporation", "co.", "ltd.", "ltd", "plc"}

// ResolveTicker maps a free-text company reference to a ticker symbol.
// Known names resolve through the static map; anything that already
// looks like a ticker passes through uppercased; everything else is
// uppercased as a best effort, matching the upstream data tools.
func ResolveTicker(company string) string {
	name := strings.ToLower(strings.TrimSpace(company))
	if name == "" {
		return ""
	}
	if ticker, ok := tickerMap[name]; ok {
		return ticker
	}

	trimmed := stripSuffixes(name)
	if ticker, ok := tickerMap[trimmed]; ok {
		return ticker
	}
	if fields := strings.Fields(trimmed); len(fields) > 0 {
		if ticker, ok := tickerMap[fields[0]]; ok {
			return ticker
		}
	}
	return strings.ToUpper(strings.TrimSpace(company))
}

func stripSuffixes(name string) string {
	for _, suffix := range corporateSuffixes {
		if strings.HasSuffix(name, " "+suffix) {
			return strings.TrimSpace(strings.TrimSuffix(name, " "+suffix))
		}
	}
	return name
}
