package repository

import (
	"context"

	"go-stock-newsroom/internal/entity"

	"gorm.io/gorm"
)

// StageRunRepository defines the interface for stage execution history.
type StageRunRepository interface {
	Create(ctx context.Context, run *entity.StageRun) error
	FindByID(ctx context.Context, id uint) (*entity.StageRun, error)
	Update(ctx context.Context, run *entity.StageRun) error
	FindRecent(ctx context.Context, limit int) ([]entity.StageRun, error)
}

// NewStageRunRepository creates a new GORM-based stage run repository.
func NewStageRunRepository(db *gorm.DB) StageRunRepository {
	return &stageRunRepository{db: db}
}

type stageRunRepository struct {
	db *gorm.DB
}

func (r *stageRunRepository) Create(ctx context.Context, run *entity.StageRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *stageRunRepository) FindByID(ctx context.Context, id uint) (*entity.StageRun, error) {
	var run entity.StageRun
	if err := r.db.WithContext(ctx).First(&run, id).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *stageRunRepository) Update(ctx context.Context, run *entity.StageRun) error {
	return r.db.WithContext(ctx).Save(run).Error
}

func (r *stageRunRepository) FindRecent(ctx context.Context, limit int) ([]entity.StageRun, error) {
	var runs []entity.StageRun
	if err := r.db.WithContext(ctx).Order("started_at desc").Limit(limit).Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}
