package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"go-stock-newsroom/internal/entity"
	"go-stock-newsroom/internal/pipeline/config"
	"go-stock-newsroom/internal/pipeline/dto"
	"go-stock-newsroom/internal/pipeline/repository"
	"go-stock-newsroom/pkg/common"
	"go-stock-newsroom/pkg/logger"
	"go-stock-newsroom/pkg/utils"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
)

// SchedulerService polls stage schedules and enqueues the due ones.
type SchedulerService interface {
	Start(ctx context.Context)
	ProcessSchedules(ctx context.Context)
}

// NewSchedulerService creates a new scheduler service.
func NewSchedulerService(
	scheduleRepo repository.StageScheduleRepository,
	runRepo repository.StageRunRepository,
	redisClient *redis.Client,
	log *logger.Logger,
	pollingInterval time.Duration,
	cfg *config.Config,
) SchedulerService {
	return &schedulerService{
		scheduleRepo:    scheduleRepo,
		runRepo:         runRepo,
		redisClient:     redisClient,
		logger:          log,
		pollingInterval: pollingInterval,
		cronParser:      cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		cfg:             cfg,
	}
}

type schedulerService struct {
	scheduleRepo    repository.StageScheduleRepository
	runRepo         repository.StageRunRepository
	redisClient     *redis.Client
	logger          *logger.Logger
	pollingInterval time.Duration
	cronParser      cron.Parser
	cfg             *config.Config
}

// Start begins the periodic schedule processing loop.
func (s *schedulerService) Start(ctx context.Context) {
	ticker := time.NewTicker(s.pollingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler service stopping")
			return
		case <-ticker.C:
			s.ProcessSchedules(ctx)
		}
	}
}

// ProcessSchedules finds and enqueues stages that are due.
func (s *schedulerService) ProcessSchedules(ctx context.Context) {
	schedules, err := s.scheduleRepo.FindDue(ctx)
	if err != nil {
		s.logger.Error("Failed to find due schedules", logger.ErrorField(err))
		return
	}

	for _, schedule := range schedules {
		s.publishStageRun(ctx, schedule)
	}
}

func (s *schedulerService) publishStageRun(ctx context.Context, schedule entity.StageSchedule) {
	now := utils.TimeNowBRT()

	run := &entity.StageRun{
		Stage:      schedule.Stage,
		ScheduleID: utils.ToPointer(schedule.ID),
		Status:     entity.StageRunStatusRunning,
		StartedAt:  now,
	}
	if err := s.runRepo.Create(ctx, run); err != nil {
		s.logger.Error("Failed to create stage run", logger.ErrorField(err), logger.Field("schedule_id", schedule.ID))
		return
	}

	request := dto.StageRunRequest{
		Stage:       string(schedule.Stage),
		ScheduleID:  utils.ToPointer(schedule.ID),
		StageRunID:  utils.ToPointer(run.ID),
		RequestedBy: "scheduler",
	}
	if len(schedule.Payload) > 0 {
		// Schedule payload can pin a symbol or flip dry_run for one stage.
		var overrides dto.StageRunRequest
		if err := json.Unmarshal(schedule.Payload, &overrides); err != nil {
			s.logger.Warn("Ignoring malformed schedule payload", logger.ErrorField(err), logger.Field("schedule_id", schedule.ID))
		} else {
			request.Symbol = overrides.Symbol
			request.DryRun = overrides.DryRun
		}
	}

	payload, err := json.Marshal(request)
	if err != nil {
		s.logger.Error("Failed to marshal stage run payload", logger.ErrorField(err), logger.Field("stage_run_id", run.ID))
		return
	}

	if err := s.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: common.RedisStreamStageRun,
		Values: map[string]interface{}{"payload": payload},
		MaxLen: s.cfg.Redis.StreamMaxLen,
	}).Err(); err != nil {
		s.logger.Error("Failed to enqueue stage run", logger.ErrorField(err), logger.Field("stage_run_id", run.ID))
		run.Status = entity.StageRunStatusFailed
		run.CompletedAt = sql.NullTime{Time: utils.TimeNowBRT(), Valid: true}
		run.ErrorMessage = sql.NullString{String: err.Error(), Valid: true}
		if errInner := s.runRepo.Update(ctx, run); errInner != nil {
			s.logger.Error("Failed to update stage run", logger.ErrorField(errInner), logger.Field("stage_run_id", run.ID))
		}
		return
	}

	s.logger.Info("Stage run published",
		logger.StringField("stage", string(schedule.Stage)),
		logger.Field("stage_run_id", run.ID))

	cronSchedule, err := s.cronParser.Parse(schedule.CronExpression)
	if err != nil {
		s.logger.Error("Failed to parse cron expression", logger.ErrorField(err), logger.Field("schedule_id", schedule.ID))
		return
	}

	schedule.LastExecution = sql.NullTime{Time: now, Valid: true}
	schedule.NextExecution = sql.NullTime{Time: cronSchedule.Next(now), Valid: true}
	if err := s.scheduleRepo.Update(ctx, &schedule); err != nil {
		s.logger.Error("Failed to update next execution time", logger.ErrorField(err), logger.Field("schedule_id", schedule.ID))
	}
}
