package yahoonews

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/kirillkom/market-brief-agent/internal/core/domain"
)

const (
	defaultBaseURL   = "https://finance.yahoo.com"
	defaultRateLimit = 5
	maxItemsPerPage  = 3

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

	// Headline containers on the quote news page plus the class-based
	// variants older markup used.
	headlineSelector = "h3.news-title, h2.news-title, h3.article-title, h2.article-title, li.js-stream-content h3, h3"
)

// Scraper extracts recent headlines for a ticker from the Yahoo
// Finance news page. Scraping is best effort: markup drift yields
// fewer items, not errors.
type Scraper struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxItems   int
}

type ScraperOption func(*Scraper)

func WithBaseURL(baseURL string) ScraperOption {
	return func(s *Scraper) {
		s.baseURL = strings.TrimRight(baseURL, "/")
	}
}

func WithMaxItems(n int) ScraperOption {
	return func(s *Scraper) {
		if n > 0 {
			s.maxItems = n
		}
	}
}

func New(opts ...ScraperOption) *Scraper {
	s := &Scraper{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(defaultRateLimit), defaultRateLimit),
		maxItems:   maxItemsPerPage,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchNews scrapes up to maxItems headlines for one ticker.
func (s *Scraper) FetchNews(ctx context.Context, ticker string) ([]domain.NewsItem, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	sourceURL := fmt.Sprintf("%s/quote/%s/news", s.baseURL, url.PathEscape(ticker))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create news request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch news %s: %w", ticker, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("fetch news %s: status %s", ticker, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse news page %s: %w", ticker, err)
	}

	return s.extractHeadlines(doc, ticker, sourceURL), nil
}

func (s *Scraper) extractHeadlines(doc *goquery.Document, ticker, sourceURL string) []domain.NewsItem {
	var items []domain.NewsItem
	seen := make(map[string]bool)

	doc.Find(headlineSelector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		title := strings.TrimSpace(sel.Text())
		if title == "" || seen[title] {
			return true
		}
		seen[title] = true

		link := sourceURL
		if href, ok := headlineLink(sel); ok {
			link = s.absoluteLink(href)
		}

		items = append(items, domain.NewsItem{
			Ticker: ticker,
			Title:  title,
			Link:   link,
			Source: sourceURL,
		})
		return len(items) < s.maxItems
	})
	return items
}

// headlineLink finds the anchor inside the headline or on an enclosing
// element, whichever the current markup uses.
func headlineLink(sel *goquery.Selection) (string, bool) {
	if href, ok := sel.Find("a").First().Attr("href"); ok && href != "" {
		return href, true
	}
	if href, ok := sel.Closest("a").Attr("href"); ok && href != "" {
		return href, true
	}
	return "", false
}

func (s *Scraper) absoluteLink(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if strings.HasPrefix(href, "/") {
		return s.baseURL + href
	}
	return href
}
