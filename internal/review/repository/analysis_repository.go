package repository

import (
	"context"

	"go-stock-newsroom/internal/entity"

	"gorm.io/gorm"
)

// AnalysisRepository defines the analysis operations the review API needs.
type AnalysisRepository interface {
	Create(ctx context.Context, analysis *entity.Analysis) error
	FindByID(ctx context.Context, id uint) (*entity.Analysis, error)
	FindByArticleID(ctx context.Context, articleID uint) (*entity.Analysis, error)
	FindAll(ctx context.Context) ([]entity.Analysis, error)
	Transition(ctx context.Context, id uint, from, to entity.AnalysisStatus, updates map[string]interface{}) error
}

// NewAnalysisRepository creates a new GORM-based analysis repository.
func NewAnalysisRepository(db *gorm.DB) AnalysisRepository {
	return &analysisRepository{db: db}
}

type analysisRepository struct {
	db *gorm.DB
}

func (r *analysisRepository) Create(ctx context.Context, analysis *entity.Analysis) error {
	return r.db.WithContext(ctx).Create(analysis).Error
}

func (r *analysisRepository) FindByID(ctx context.Context, id uint) (*entity.Analysis, error) {
	var analysis entity.Analysis
	if err := r.db.WithContext(ctx).Preload("StockSymbol").First(&analysis, id).Error; err != nil {
		return nil, err
	}
	return &analysis, nil
}

// FindByArticleID returns the analysis bound to the article, or nil when the
// article was composed outside any orchestrated run.
func (r *analysisRepository) FindByArticleID(ctx context.Context, articleID uint) (*entity.Analysis, error) {
	var analysis entity.Analysis
	result := r.db.WithContext(ctx).Where("article_id = ?", articleID).First(&analysis)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &analysis, nil
}

func (r *analysisRepository) FindAll(ctx context.Context) ([]entity.Analysis, error) {
	var analyses []entity.Analysis
	if err := r.db.WithContext(ctx).Preload("StockSymbol").Order("created_at desc").Find(&analyses).Error; err != nil {
		return nil, err
	}
	return analyses, nil
}

// Transition moves the analysis between statuses with the same guarded update
// the pipeline workers use, so API-side moves and worker-side moves contend
// safely.
func (r *analysisRepository) Transition(ctx context.Context, id uint, from, to entity.AnalysisStatus, updates map[string]interface{}) error {
	if !from.CanTransitionTo(to) {
		return entity.ErrInvalidTransition
	}

	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = to

	result := r.db.WithContext(ctx).Model(&entity.Analysis{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entity.ErrStatusConflict
	}
	return nil
}
