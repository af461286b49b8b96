package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/kirillkom/market-brief-agent/internal/core/domain"
	"github.com/kirillkom/market-brief-agent/internal/infrastructure/resilience"
)

const (
	defaultBaseURL = "https://query1.finance.yahoo.com"
	// Unauthenticated endpoints throttle aggressively; stay well under.
	defaultRateLimit = 5

	quoteModules = "price,summaryProfile,summaryDetail,defaultKeyStatistics,calendarEvents"
	userAgent    = "Mozilla/5.0"
)

// Client fetches quote snapshots from the Yahoo Finance quoteSummary
// API. All requests go through a shared rate limiter and the retry and
// breaker executor.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	exec       *resilience.Executor
}

type ClientOption func(*Client)

func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

func New(exec *resilience.Executor, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(defaultRateLimit), defaultRateLimit),
		exec:       exec,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// rawValue is Yahoo's number wrapper. A nil *rawValue means the field
// was absent for this ticker.
type rawValue struct {
	Raw float64 `json:"raw"`
}

func (v *rawValue) float() *float64 {
	if v == nil {
		return nil
	}
	raw := v.Raw
	return &raw
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			Price *struct {
				LongName           string    `json:"longName"`
				RegularMarketPrice *rawValue `json:"regularMarketPrice"`
				MarketCap          *rawValue `json:"marketCap"`
			} `json:"price"`
			SummaryProfile *struct {
				Sector string `json:"sector"`
			} `json:"summaryProfile"`
			SummaryDetail *struct {
				TrailingPE       *rawValue `json:"trailingPE"`
				FiftyTwoWeekHigh *rawValue `json:"fiftyTwoWeekHigh"`
				FiftyTwoWeekLow  *rawValue `json:"fiftyTwoWeekLow"`
			} `json:"summaryDetail"`
			CalendarEvents *struct {
				Earnings struct {
					EarningsDate []rawValue `json:"earningsDate"`
				} `json:"earnings"`
			} `json:"calendarEvents"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// FetchQuote fetches one ticker's snapshot. Optional fields map to nil
// pointers; the caller decides what an absent field means.
func (c *Client) FetchQuote(ctx context.Context, ticker string) (domain.QuoteRecord, error) {
	var payload quoteSummaryResponse
	err := c.exec.Execute(ctx, "yahoo_quote", func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		return c.getJSON(ctx, c.quoteSummaryURL(ticker), &payload)
	}, classifyFetchError)
	if err != nil {
		return domain.QuoteRecord{}, fmt.Errorf("fetch quote %s: %w", ticker, err)
	}

	if apiErr := payload.QuoteSummary.Error; apiErr != nil {
		return domain.QuoteRecord{}, fmt.Errorf("fetch quote %s: yahoo api error: %s", ticker, apiErr.Description)
	}
	if len(payload.QuoteSummary.Result) == 0 {
		return domain.QuoteRecord{}, fmt.Errorf("fetch quote %s: no data returned", ticker)
	}

	result := payload.QuoteSummary.Result[0]
	quote := domain.QuoteRecord{Ticker: ticker, CompanyName: ticker}

	if result.Price != nil {
		if result.Price.LongName != "" {
			quote.CompanyName = result.Price.LongName
		}
		quote.CurrentPrice = result.Price.RegularMarketPrice.float()
		if mc := result.Price.MarketCap; mc != nil {
			quote.MarketCap = int64(mc.Raw)
		}
	}
	if result.SummaryProfile != nil {
		quote.Sector = result.SummaryProfile.Sector
	}
	if result.SummaryDetail != nil {
		quote.PERatio = result.SummaryDetail.TrailingPE.float()
		quote.Week52High = result.SummaryDetail.FiftyTwoWeekHigh.float()
		quote.Week52Low = result.SummaryDetail.FiftyTwoWeekLow.float()
	}
	if result.CalendarEvents != nil && len(result.CalendarEvents.Earnings.EarningsDate) > 0 {
		earnings := time.Unix(int64(result.CalendarEvents.Earnings.EarningsDate[0].Raw), 0).UTC()
		quote.EarningsDate = &earnings
	}
	return quote, nil
}

func (c *Client) quoteSummaryURL(ticker string) string {
	return fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s",
		c.baseURL, url.PathEscape(ticker), url.QueryEscape(quoteModules))
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("yahoo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &statusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(body)),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode yahoo response: %w", err)
	}
	return nil
}
