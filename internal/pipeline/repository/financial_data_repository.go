package repository

import (
	"context"
	"time"

	"go-stock-newsroom/internal/entity"

	"gorm.io/gorm"
)

// FinancialDataRepository defines the interface for quote snapshot data.
type FinancialDataRepository interface {
	Create(ctx context.Context, data *entity.FinancialData) error
	GetLatest(ctx context.Context, stockSymbolID uint) (*entity.FinancialData, error)
	DeleteStale(ctx context.Context, before time.Time) (int64, error)
}

// NewFinancialDataRepository creates a new GORM-based financial data repository.
func NewFinancialDataRepository(db *gorm.DB) FinancialDataRepository {
	return &financialDataRepository{db: db}
}

type financialDataRepository struct {
	db *gorm.DB
}

func (r *financialDataRepository) Create(ctx context.Context, data *entity.FinancialData) error {
	return r.db.WithContext(ctx).Create(data).Error
}

// GetLatest returns the most recent snapshot for the symbol, or nil when none exists.
func (r *financialDataRepository) GetLatest(ctx context.Context, stockSymbolID uint) (*entity.FinancialData, error) {
	var data entity.FinancialData
	result := r.db.WithContext(ctx).
		Where("stock_symbol_id = ?", stockSymbolID).
		Order("collected_at desc").
		First(&data)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &data, nil
}

// DeleteStale removes snapshots older than the cutoff that are not referenced
// by a non-terminal analysis or a not-yet-published article.
func (r *financialDataRepository) DeleteStale(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Exec(`
		DELETE FROM financial_data fd
		WHERE fd.collected_at < ?
		AND NOT EXISTS (
			SELECT 1 FROM analyses a
			WHERE a.financial_data_id = fd.id
			AND a.status NOT IN ('completed', 'failed', 'cancelled')
		)
		AND NOT EXISTS (
			SELECT 1 FROM articles ar
			WHERE ar.financial_data_id = fd.id
			AND ar.status <> 'publicado'
		)`, before)
	return result.RowsAffected, result.Error
}
