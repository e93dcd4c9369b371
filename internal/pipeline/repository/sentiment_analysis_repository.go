package repository

import (
	"context"
	"time"

	"go-stock-newsroom/internal/entity"

	"gorm.io/gorm"
)

// SentimentAnalysisRepository defines the interface for sentiment snapshot data.
type SentimentAnalysisRepository interface {
	Create(ctx context.Context, analysis *entity.SentimentAnalysis) error
	GetLatest(ctx context.Context, stockSymbolID uint) (*entity.SentimentAnalysis, error)
	DeleteStale(ctx context.Context, before time.Time) (int64, error)
}

// NewSentimentAnalysisRepository creates a new GORM-based sentiment repository.
func NewSentimentAnalysisRepository(db *gorm.DB) SentimentAnalysisRepository {
	return &sentimentAnalysisRepository{db: db}
}

type sentimentAnalysisRepository struct {
	db *gorm.DB
}

func (r *sentimentAnalysisRepository) Create(ctx context.Context, analysis *entity.SentimentAnalysis) error {
	return r.db.WithContext(ctx).Create(analysis).Error
}

// GetLatest returns the most recent snapshot for the symbol, or nil when none exists.
func (r *sentimentAnalysisRepository) GetLatest(ctx context.Context, stockSymbolID uint) (*entity.SentimentAnalysis, error) {
	var analysis entity.SentimentAnalysis
	result := r.db.WithContext(ctx).
		Where("stock_symbol_id = ?", stockSymbolID).
		Order("analyzed_at desc").
		First(&analysis)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &analysis, nil
}

// DeleteStale removes snapshots older than the cutoff that are not referenced
// by a non-terminal analysis or a not-yet-published article.
func (r *sentimentAnalysisRepository) DeleteStale(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Exec(`
		DELETE FROM sentiment_analyses sa
		WHERE sa.analyzed_at < ?
		AND NOT EXISTS (
			SELECT 1 FROM analyses a
			WHERE a.sentiment_analysis_id = sa.id
			AND a.status NOT IN ('completed', 'failed', 'cancelled')
		)
		AND NOT EXISTS (
			SELECT 1 FROM articles ar
			WHERE ar.sentiment_analysis_id = sa.id
			AND ar.status <> 'publicado'
		)`, before)
	return result.RowsAffected, result.Error
}
