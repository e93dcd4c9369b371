package entity

import (
	"time"

	"gorm.io/gorm"
)

// StockSymbol is a ticker eligible for processing.
type StockSymbol struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Symbol      string         `gorm:"type:varchar(10);unique;not null" json:"symbol"`
	CompanyName string         `gorm:"not null" json:"company_name"`
	IsActive    bool           `gorm:"not null;default:true" json:"is_active"`
	IsDefault   bool           `gorm:"not null;default:false" json:"is_default"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the StockSymbol model.
func (StockSymbol) TableName() string {
	return "stock_symbols"
}
