package domain

// Market-cap tier thresholds in USD.
const (
	LargeCapThreshold int64 = 10_000_000_000
	MidCapThreshold   int64 = 2_000_000_000
)

// Valuation status buckets over mean trailing P/E.
const (
	ValuationUndervalued      = "Potentially Undervalued"
	ValuationFair             = "Fairly Valued"
	ValuationSlightlyOver     = "Slightly Overvalued"
	ValuationOvervalued       = "Overvalued"
	ValuationInsufficientData = "Insufficient Data"
)

// RiskMetricsBundle aggregates the valid-quote batch of one run.
// Purely derived; absent data degrades to zeros and placeholders.
type RiskMetricsBundle struct {
	TotalStocks        int              `json:"total_stocks"`
	TotalMarketCap     int64            `json:"total_market_cap"`
	AvgMarketCap       float64          `json:"avg_market_cap"`
	MarketCapStdDev    float64          `json:"market_cap_std_dev"`
	AvgPrice           float64          `json:"avg_price"`
	PriceVolatility    float64          `json:"price_volatility"`
	AvgPERatio         float64          `json:"avg_pe_ratio"`
	PERatioVolatility  float64          `json:"pe_ratio_volatility"`
	SectorDistribution map[string]int   `json:"sector_distribution"`
	Health             HealthIndicators `json:"portfolio_health"`
}

type HealthIndicators struct {
	DiversificationScore float64             `json:"diversification_score"`
	SectorConcentration  SectorConcentration `json:"sector_concentration"`
	MarketCapTiers       MarketCapTiers      `json:"market_cap_distribution"`
	Valuation            ValuationHealth     `json:"valuation_health"`
}

type SectorConcentration struct {
	TopSector     string             `json:"most_concentrated_sector"`
	TopPercentage float64            `json:"most_concentrated_percentage"`
	Percentages   map[string]float64 `json:"sector_percentages"`
}

// MarketCapTiers are percentages of the valid-quote count; they sum to
// 100 when at least one valid quote exists and to 0 otherwise.
type MarketCapTiers struct {
	LargeCapPct float64 `json:"large_cap_percentage"`
	MidCapPct   float64 `json:"mid_cap_percentage"`
	SmallCapPct float64 `json:"small_cap_percentage"`
}

type ValuationHealth struct {
	AvgPERatio float64 `json:"average_pe_ratio"`
	MinPERatio float64 `json:"min_pe_ratio"`
	MaxPERatio float64 `json:"max_pe_ratio"`
	Status     string  `json:"valuation_status"`
}
