package dto

import "go-stock-newsroom/internal/entity"

// CreateSymbolRequest is the body for registering a new symbol.
type CreateSymbolRequest struct {
	Symbol      string `json:"symbol"`
	CompanyName string `json:"company_name"`
	IsDefault   bool   `json:"is_default"`
}

// SymbolResponse is the DTO for API responses containing symbol details.
type SymbolResponse struct {
	ID          uint   `json:"id"`
	Symbol      string `json:"symbol"`
	CompanyName string `json:"company_name"`
	IsActive    bool   `json:"is_active"`
	IsDefault   bool   `json:"is_default"`
}

// NewSymbolResponse maps a symbol entity to its API shape.
func NewSymbolResponse(symbol *entity.StockSymbol) SymbolResponse {
	return SymbolResponse{
		ID:          symbol.ID,
		Symbol:      symbol.Symbol,
		CompanyName: symbol.CompanyName,
		IsActive:    symbol.IsActive,
		IsDefault:   symbol.IsDefault,
	}
}
