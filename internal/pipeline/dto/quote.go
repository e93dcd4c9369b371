package dto

import (
	"encoding/json"
	"time"
)

// Quote is a structured point-in-time quote from the quote provider.
type Quote struct {
	Symbol             string          `json:"symbol"`
	Price              float64         `json:"regularMarketPrice"`
	PreviousClose      float64         `json:"regularMarketPreviousClose"`
	Change             float64         `json:"regularMarketChange"`
	ChangePercent      float64         `json:"regularMarketChangePercent"`
	Volume             int64           `json:"regularMarketVolume"`
	MarketCap          float64         `json:"marketCap"`
	PERatio            float64         `json:"priceEarnings"`
	DividendYield      float64         `json:"dividendYield"`
	FiftyTwoWeekHigh   float64         `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow    float64         `json:"fiftyTwoWeekLow"`
	RegularMarketTime  string          `json:"regularMarketTime"`
	RawPayload         json.RawMessage `json:"-"`
}

// QuoteAPIResponse is the wire shape of the quote provider response.
type QuoteAPIResponse struct {
	Results []Quote `json:"results"`
}

// NewsItem is one headline from the news provider.
type NewsItem struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Link        string     `json:"link"`
	Source      string     `json:"source"`
	PublishedAt *time.Time `json:"published_at"`
	Content     string     `json:"content,omitempty"`
}
