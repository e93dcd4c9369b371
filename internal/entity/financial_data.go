package entity

import (
	"time"

	"gorm.io/datatypes"
)

// FinancialData is one immutable quote snapshot for a symbol. "Latest" is
// the most recent row by CollectedAt.
type FinancialData struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	StockSymbolID      uint           `gorm:"not null;index" json:"stock_symbol_id"`
	Price              float64        `gorm:"not null" json:"price"`
	PreviousClose      float64        `json:"previous_close"`
	PriceChange        float64        `json:"price_change"`
	PriceChangePercent float64        `json:"price_change_percent"`
	Volume             int64          `json:"volume"`
	MarketCap          float64        `json:"market_cap"`
	PERatio            float64        `gorm:"column:pe_ratio" json:"pe_ratio"`
	DividendYield      float64        `json:"dividend_yield"`
	Week52High         float64        `gorm:"column:week_52_high" json:"week_52_high"`
	Week52Low          float64        `gorm:"column:week_52_low" json:"week_52_low"`
	RawPayload         datatypes.JSON `gorm:"type:jsonb" json:"raw_payload"`
	Source             string         `gorm:"type:varchar(50)" json:"source"`
	CollectedAt        time.Time      `gorm:"not null;index" json:"collected_at"`
	CreatedAt          time.Time      `gorm:"autoCreateTime" json:"created_at"`

	StockSymbol StockSymbol `gorm:"foreignKey:StockSymbolID" json:"-"`
}

// TableName specifies the table name for the FinancialData model.
func (FinancialData) TableName() string {
	return "financial_data"
}

// IsFresh reports whether the snapshot is still inside the freshness window.
func (f *FinancialData) IsFresh(window time.Duration, now time.Time) bool {
	return now.Sub(f.CollectedAt) <= window
}
