package gemini

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kirillkom/market-brief-agent/internal/core/domain"
)

var tickerPattern = regexp.MustCompile(`^[A-Z][A-Z0-9.\-]{0,9}$`)

func tickerPrompt(query string) string {
	var b strings.Builder
	b.WriteString("Extract stock ticker symbols from the following financial query.\n")
	b.WriteString("Return ONLY the ticker symbols as a comma-separated list.\n")
	b.WriteString("If no clear tickers are found, suggest relevant tech or finance tickers.\n\n")
	fmt.Fprintf(&b, "Query: %s\n", query)
	return b.String()
}

func briefPrompt(summary domain.BriefSummary) string {
	var b strings.Builder
	b.WriteString("Generate a comprehensive market brief based on the following financial data:\n\n")

	b.WriteString("Stock Overview:\n")
	b.WriteString(strings.Join(summary.StockLines, "\n"))
	b.WriteString("\n\nRecent News:\n")
	b.WriteString(strings.Join(summary.NewsLines, "\n"))
	fmt.Fprintf(&b, "\n\nRisk Analysis:\nTotal Stocks: %d\n", summary.TotalStocks)
	fmt.Fprintf(&b, "\nContextual Insights:\n%s\n", strings.Join(summary.ContextTitles, ", "))

	b.WriteString("\nCreate a professional, concise market brief that provides:\n")
	b.WriteString("1. An overview of stock performance\n")
	b.WriteString("2. Key news highlights\n")
	b.WriteString("3. Potential market implications\n")
	b.WriteString("4. Brief risk assessment\n")
	return b.String()
}

// ParseTickerList extracts plausible ticker symbols from a model reply.
// The model is asked for a comma-separated list but replies are not
// trusted: tokens are uppercased, filtered against a symbol pattern and
// deduplicated, preserving reply order.
func ParseTickerList(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, token := range strings.Split(text, ",") {
		symbol := strings.ToUpper(strings.TrimSpace(token))
		symbol = strings.Trim(symbol, ".")
		if !tickerPattern.MatchString(symbol) || seen[symbol] {
			continue
		}
		seen[symbol] = true
		out = append(out, symbol)
	}
	return out
}
