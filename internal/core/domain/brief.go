package domain

import "time"

// Recommendation actions.
const (
	ActionBuy  = "Buy"
	ActionHold = "Hold"
)

// Recommendation is a per-stock call derived from one valid quote.
type Recommendation struct {
	Ticker      string   `json:"ticker"`
	CompanyName string   `json:"company_name,omitempty"`
	Action      string   `json:"recommendation"`
	Reasons     []string `json:"reasons,omitempty"`
}

// Brief is the aggregate result of one pipeline run. Its shape is
// identical regardless of how many sub-fetches failed: degraded fields
// carry sentinel values instead of errors.
type Brief struct {
	RunID           string                 `json:"run_id"`
	Query           string                 `json:"query"`
	Tickers         []string               `json:"tickers"`
	Quotes          map[string]QuoteRecord `json:"stock_data"`
	News            map[string][]NewsItem  `json:"news_data"`
	Risk            RiskMetricsBundle      `json:"risk_analysis"`
	Context         []Document             `json:"contextual_results"`
	Recommendations []Recommendation       `json:"recommendations,omitempty"`
	NewsInsights    map[string][]string    `json:"news_insights,omitempty"`
	Narrative       string                 `json:"narrative_response"`
	VoiceArtifact   string                 `json:"voice_response,omitempty"`
	StartedAt       time.Time              `json:"started_at"`
	ElapsedMS       int64                  `json:"elapsed_ms"`
}

// BriefSummary is the structured summary handed to the narrative
// generator; building it is the coordinator's job so generator
// implementations stay prompt-only.
type BriefSummary struct {
	Query         string
	StockLines    []string
	NewsLines     []string
	TotalStocks   int
	ContextTitles []string
}
