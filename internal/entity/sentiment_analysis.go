package entity

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// Sentiment labels for an aggregate analysis.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// SentimentSourcePlaceholder marks analyses produced without a configured
// news provider.
const SentimentSourcePlaceholder = "placeholder"

// SentimentAnalysis is one immutable snapshot of market-sentiment signals
// for a symbol. "Latest" is the most recent row by AnalyzedAt.
type SentimentAnalysis struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	StockSymbolID  uint           `gorm:"not null;index" json:"stock_symbol_id"`
	Sentiment      string         `gorm:"type:varchar(20);not null" json:"sentiment"`
	Score          float64        `gorm:"not null" json:"score"`
	PositiveCount  int            `json:"positive_count"`
	NegativeCount  int            `json:"negative_count"`
	NeutralCount   int            `json:"neutral_count"`
	TrendingTopics pq.StringArray `gorm:"type:text[]" json:"trending_topics"`
	MarketContext  datatypes.JSON `gorm:"type:jsonb" json:"market_context"`
	Insights       string         `gorm:"type:text" json:"insights"`
	Recommendation string         `gorm:"type:text" json:"recommendation"`
	Source         string         `gorm:"type:varchar(50)" json:"source"`
	AnalyzedAt     time.Time      `gorm:"not null;index" json:"analyzed_at"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`

	StockSymbol StockSymbol `gorm:"foreignKey:StockSymbolID" json:"-"`
}

// TableName specifies the table name for the SentimentAnalysis model.
func (SentimentAnalysis) TableName() string {
	return "sentiment_analyses"
}

// IsFresh reports whether the snapshot is still inside the freshness window.
func (s *SentimentAnalysis) IsFresh(window time.Duration, now time.Time) bool {
	return now.Sub(s.AnalyzedAt) <= window
}

// IsPlaceholder reports whether this analysis was produced without a news source.
func (s *SentimentAnalysis) IsPlaceholder() bool {
	return s.Source == SentimentSourcePlaceholder
}
