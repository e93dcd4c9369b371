package repository

import (
	"context"

	"go-stock-newsroom/internal/entity"
	"go-stock-newsroom/pkg/utils"

	"gorm.io/gorm"
)

// StageScheduleRepository defines the interface for stage schedule data.
type StageScheduleRepository interface {
	FindAll(ctx context.Context) ([]entity.StageSchedule, error)
	FindDue(ctx context.Context) ([]entity.StageSchedule, error)
	Update(ctx context.Context, schedule *entity.StageSchedule) error
}

// NewStageScheduleRepository creates a new GORM-based stage schedule repository.
func NewStageScheduleRepository(db *gorm.DB) StageScheduleRepository {
	return &stageScheduleRepository{db: db}
}

type stageScheduleRepository struct {
	db *gorm.DB
}

func (r *stageScheduleRepository) FindAll(ctx context.Context) ([]entity.StageSchedule, error) {
	var schedules []entity.StageSchedule
	if err := r.db.WithContext(ctx).Find(&schedules).Error; err != nil {
		return nil, err
	}
	return schedules, nil
}

// FindDue finds all active schedules whose next execution has passed or was
// never computed.
func (r *stageScheduleRepository) FindDue(ctx context.Context) ([]entity.StageSchedule, error) {
	var schedules []entity.StageSchedule
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND (next_execution IS NULL OR next_execution <= ?)", true, utils.TimeNowBRT()).
		Find(&schedules).Error
	if err != nil {
		return nil, err
	}
	return schedules, nil
}

func (r *stageScheduleRepository) Update(ctx context.Context, schedule *entity.StageSchedule) error {
	return r.db.WithContext(ctx).Save(schedule).Error
}
