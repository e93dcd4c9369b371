package repository

import (
	"context"

	"go-stock-newsroom/internal/entity"

	"gorm.io/gorm"
)

// StockSymbolRepository defines the interface for the symbol registry.
type StockSymbolRepository interface {
	Create(ctx context.Context, symbol *entity.StockSymbol) error
	FindBySymbol(ctx context.Context, symbol string) (*entity.StockSymbol, error)
	FindAll(ctx context.Context) ([]entity.StockSymbol, error)
	FindActive(ctx context.Context) ([]entity.StockSymbol, error)
	FindDefault(ctx context.Context) ([]entity.StockSymbol, error)
}

// NewStockSymbolRepository creates a new GORM-based symbol repository.
func NewStockSymbolRepository(db *gorm.DB) StockSymbolRepository {
	return &stockSymbolRepository{db: db}
}

type stockSymbolRepository struct {
	db *gorm.DB
}

func (r *stockSymbolRepository) Create(ctx context.Context, symbol *entity.StockSymbol) error {
	return r.db.WithContext(ctx).Create(symbol).Error
}

func (r *stockSymbolRepository) FindBySymbol(ctx context.Context, symbol string) (*entity.StockSymbol, error) {
	var s entity.StockSymbol
	if err := r.db.WithContext(ctx).Where("symbol = ?", symbol).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *stockSymbolRepository) FindAll(ctx context.Context) ([]entity.StockSymbol, error) {
	var symbols []entity.StockSymbol
	if err := r.db.WithContext(ctx).Order("symbol asc").Find(&symbols).Error; err != nil {
		return nil, err
	}
	return symbols, nil
}

func (r *stockSymbolRepository) FindActive(ctx context.Context) ([]entity.StockSymbol, error) {
	var symbols []entity.StockSymbol
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("symbol asc").Find(&symbols).Error; err != nil {
		return nil, err
	}
	return symbols, nil
}

func (r *stockSymbolRepository) FindDefault(ctx context.Context) ([]entity.StockSymbol, error) {
	var symbols []entity.StockSymbol
	if err := r.db.WithContext(ctx).Where("is_active = ? AND is_default = ?", true, true).Order("symbol asc").Find(&symbols).Error; err != nil {
		return nil, err
	}
	return symbols, nil
}
