package usecase

import (
	"fmt"
	"strings"

	"github.com/kirillkom/market-brief-agent/internal/core/domain"
)

// Recommend derives a Buy/Hold call for every valid quote. Failed
// records produce no recommendation.
func Recommend(quotes []domain.QuoteRecord) []domain.Recommendation {
	out := make([]domain.Recommendation, 0, len(quotes))
	for _, quote := range quotes {
		if !quote.Valid() {
			continue
		}
		rec := domain.Recommendation{
			Ticker:      quote.Ticker,
			CompanyName: quote.CompanyName,
			Action:      domain.ActionHold,
		}
		if quote.PERatio != nil && *quote.PERatio < 15 {
			rec.Action = domain.ActionBuy
			rec.Reasons = append(rec.Reasons, "Low P/E Ratio")
		}
		if quote.Week52High != nil && quote.CurrentPrice != nil && *quote.Week52High > 0 {
			percentFromHigh := (*quote.Week52High - *quote.CurrentPrice) / *quote.Week52High * 100
			if percentFromHigh > 20 {
				rec.Action = domain.ActionBuy
				rec.Reasons = append(rec.Reasons, "Significantly Below 52-Week High")
			}
		}
		out = append(out, rec)
	}
	return out
}

// NewsInsights tags headlines with coarse themes per ticker. A headline
// can contribute to more than one theme.
func NewsInsights(news map[string][]domain.NewsItem) map[string][]string {
	out := make(map[string][]string, len(news))
	for ticker, items := range news {
		insights := []string{}
		for _, item := range items {
			title := strings.ToLower(item.Title)
			if containsAny(title, "earnings", "beat", "miss") {
				insights = append(insights, "Earnings-related: "+item.Title)
			}
			if containsAny(title, "merger", "acquisition", "partnership") {
				insights = append(insights, "Strategic move: "+item.Title)
			}
			if containsAny(title, "technology", "innovation", "breakthrough") {
				insights = append(insights, "Tech development: "+item.Title)
			}
		}
		out[ticker] = insights
	}
	return out
}

func containsAny(s string, keywords ...string) bool {
	for _, keyword := range keywords {
		if strings.Contains(s, keyword) {
			return true
		}
	}
	return false
}

// InvestmentInsights renders a risk bundle as readable commentary for
// the CLI and for operators reading logs.
func InvestmentInsights(bundle domain.RiskMetricsBundle) string {
	var b strings.Builder
	b.WriteString("Portfolio Investment Insights:\n\n")

	score := bundle.Health.DiversificationScore
	fmt.Fprintf(&b, "Diversification Score: %.2f/100\n", score)
	switch {
	case score < 40:
		b.WriteString("- Your portfolio lacks diversification. Consider spreading investments across more sectors.\n")
	case score < 70:
		b.WriteString("- Moderate diversification. There's room for improvement in sector allocation.\n")
	default:
		b.WriteString("- Excellent diversification across different sectors.\n")
	}

	conc := bundle.Health.SectorConcentration
	b.WriteString("\nSector Concentration:\n")
	fmt.Fprintf(&b, "- Most Concentrated Sector: %s\n", conc.TopSector)
	fmt.Fprintf(&b, "- Sector Concentration: %.2f%%\n", conc.TopPercentage)

	valuation := bundle.Health.Valuation
	b.WriteString("\nValuation Health:\n")
	fmt.Fprintf(&b, "- Average PE Ratio: %.2f\n", valuation.AvgPERatio)
	fmt.Fprintf(&b, "- Valuation Status: %s\n", valuation.Status)

	tiers := bundle.Health.MarketCapTiers
	b.WriteString("\nMarket Cap Distribution:\n")
	fmt.Fprintf(&b, "- Large Cap: %.2f%%\n", tiers.LargeCapPct)
	fmt.Fprintf(&b, "- Mid Cap: %.2f%%\n", tiers.MidCapPct)
	fmt.Fprintf(&b, "- Small Cap: %.2f%%\n", tiers.SmallCapPct)

	return b.String()
}
