package domain

import (
	"strings"
	"time"
)

// SectorUnknown buckets valid quotes that carry no sector.
const SectorUnknown = "Unknown"

// NormalizeTicker canonicalizes a raw symbol to the uppercase form used
// as the fan-out key throughout one pipeline run.
func NormalizeTicker(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// QuoteRecord is one ticker's quote snapshot, scoped to a single
// pipeline run and immutable after the fetch stage. A record is either
// valid (FailureReason empty, fetch-derived fields populated) or failed
// (FailureReason set, everything else zero). Failed records never enter
// aggregate analysis or the index.
type QuoteRecord struct {
	Ticker        string     `json:"ticker"`
	CompanyName   string     `json:"company_name,omitempty"`
	Sector        string     `json:"sector,omitempty"`
	CurrentPrice  *float64   `json:"current_price,omitempty"`
	MarketCap     int64      `json:"market_cap,omitempty"`
	PERatio       *float64   `json:"pe_ratio,omitempty"`
	Week52High    *float64   `json:"week_52_high,omitempty"`
	Week52Low     *float64   `json:"week_52_low,omitempty"`
	EarningsDate  *time.Time `json:"earnings_date,omitempty"`
	FailureReason string     `json:"error,omitempty"`
}

func (q QuoteRecord) Valid() bool {
	return q.FailureReason == ""
}

// FailedQuote captures a per-ticker fetch failure as data so that one
// ticker's error never aborts its siblings.
func FailedQuote(ticker string, err error) QuoteRecord {
	reason := "fetch failed"
	if err != nil {
		reason = err.Error()
	}
	return QuoteRecord{Ticker: ticker, FailureReason: reason}
}

// NewsItem is one scraped headline associated with a ticker.
type NewsItem struct {
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
	Link   string `json:"link"`
	Source string `json:"source"`
}
