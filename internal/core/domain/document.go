package domain

import (
	"fmt"
	"strconv"
	"strings"
)

type DocumentKind string

const (
	DocumentQuote DocumentKind = "quote"
	DocumentNews  DocumentKind = "news"
)

// Document is the unifying addressable type the retrieval service
// indexes: a tagged union over quote records and news items.
type Document struct {
	Kind  DocumentKind `json:"kind"`
	Quote *QuoteRecord `json:"quote,omitempty"`
	News  *NewsItem    `json:"news,omitempty"`
}

func QuoteDocument(quote QuoteRecord) Document {
	return Document{Kind: DocumentQuote, Quote: &quote}
}

func NewsDocument(item NewsItem) Document {
	return Document{Kind: DocumentNews, News: &item}
}

// SearchText renders the document into the text handed to the embedding
// model. Total over both variants: missing optional fields render as
// empty strings, never as an error. An empty result marks the document
// as non-indexable.
func (d Document) SearchText() string {
	switch d.Kind {
	case DocumentQuote:
		if d.Quote == nil {
			return ""
		}
		price := ""
		if d.Quote.CurrentPrice != nil {
			price = strconv.FormatFloat(*d.Quote.CurrentPrice, 'f', -1, 64)
		}
		return fmt.Sprintf("Ticker: %s Company: %s Sector: %s Current Price: %s",
			d.Quote.Ticker, d.Quote.CompanyName, d.Quote.Sector, price)
	case DocumentNews:
		if d.News == nil {
			return ""
		}
		return strings.TrimSpace(d.News.Title + " " + d.News.Link)
	default:
		return ""
	}
}

// Title is the short label used when listing retrieved context.
func (d Document) Title() string {
	switch d.Kind {
	case DocumentQuote:
		if d.Quote == nil {
			return ""
		}
		if d.Quote.CompanyName != "" {
			return d.Quote.CompanyName
		}
		return d.Quote.Ticker
	case DocumentNews:
		if d.News == nil {
			return ""
		}
		return d.News.Title
	default:
		return ""
	}
}

// MergeSources concatenates document sources preserving encounter
// order. Order matters: it fixes index id assignment and therefore the
// ranking of distance ties.
func MergeSources(sources ...[]Document) []Document {
	total := 0
	for _, source := range sources {
		total += len(source)
	}
	merged := make([]Document, 0, total)
	for _, source := range sources {
		merged = append(merged, source...)
	}
	return merged
}
