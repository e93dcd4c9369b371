package runner

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-stock-newsroom/internal/entity"
	"go-stock-newsroom/internal/pipeline/config"
	"go-stock-newsroom/internal/pipeline/dto"
	"go-stock-newsroom/internal/pipeline/repository"
	"go-stock-newsroom/internal/pipeline/service"
	"go-stock-newsroom/internal/pipeline/stage"
	"go-stock-newsroom/pkg/common"
	"go-stock-newsroom/pkg/distlock"
	"go-stock-newsroom/pkg/logger"
	"go-stock-newsroom/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// Service consumes stage and analysis run requests from the Redis streams
// and executes them. Every stage execution holds a per-stage lease, so two
// workers never run the same stage concurrently.
type Service interface {
	ProcessStageRun(ctx context.Context)
	ProcessAnalysisRun(ctx context.Context)
	ExecuteStage(ctx context.Context, req dto.StageRunRequest) (string, error)
}

// NewService creates a new runner service.
func NewService(
	cfg *config.Config,
	redisClient *redis.Client,
	locker *distlock.Locker,
	runRepo repository.StageRunRepository,
	orchestrator service.OrchestratorService,
	log *logger.Logger,
	stages []stage.Stage,
) Service {
	stageMap := make(map[entity.StageName]stage.Stage)
	for _, s := range stages {
		stageMap[s.Name()] = s
	}

	return &runnerService{
		cfg:          cfg,
		redisClient:  redisClient,
		locker:       locker,
		runRepo:      runRepo,
		orchestrator: orchestrator,
		logger:       log,
		stages:       stageMap,
	}
}

type runnerService struct {
	cfg          *config.Config
	redisClient  *redis.Client
	locker       *distlock.Locker
	runRepo      repository.StageRunRepository
	orchestrator service.OrchestratorService
	logger       *logger.Logger
	stages       map[entity.StageName]stage.Stage
}

// ProcessStageRun dequeues and executes a single stage run request.
func (s *runnerService) ProcessStageRun(ctx context.Context) {
	message, ok := s.readOne(ctx, common.RedisStreamStageRun)
	if !ok {
		return
	}

	var req dto.StageRunRequest
	if !s.unmarshalPayload(ctx, common.RedisStreamStageRun, message, &req) {
		return
	}

	s.logger.Info("Processing stage run",
		logger.StringField("stage", req.Stage),
		logger.Field("stage_run_id", req.StageRunID))

	execCtx, cancel := context.WithTimeout(ctx, s.cfg.Runner.StageTimeout)
	defer cancel()

	output, err := s.ExecuteStage(execCtx, req)
	s.recordOutcome(ctx, req, output, err)
}

// ProcessAnalysisRun dequeues and runs a single orchestrated analysis.
func (s *runnerService) ProcessAnalysisRun(ctx context.Context) {
	message, ok := s.readOne(ctx, common.RedisStreamAnalysisRun)
	if !ok {
		return
	}

	var req dto.AnalysisRunRequest
	if !s.unmarshalPayload(ctx, common.RedisStreamAnalysisRun, message, &req) {
		return
	}

	s.logger.Info("Processing analysis run", logger.IntField("analysis_id", int(req.AnalysisID)))

	execCtx, cancel := context.WithTimeout(ctx, s.cfg.Runner.StageTimeout)
	defer cancel()

	if err := s.orchestrator.Run(execCtx, req.AnalysisID); err != nil {
		s.logger.Error("Analysis run failed",
			logger.IntField("analysis_id", int(req.AnalysisID)), logger.ErrorField(err))
	}
}

// ExecuteStage runs one stage under its lease and returns the stage output.
// It is also the synchronous path behind the CLI run command.
func (s *runnerService) ExecuteStage(ctx context.Context, req dto.StageRunRequest) (string, error) {
	stageName := entity.StageName(req.Stage)
	target, ok := s.stages[stageName]
	if !ok {
		return "", fmt.Errorf("no stage registered for %q", req.Stage)
	}

	lock, err := s.locker.Acquire(ctx, common.StageLockKeyPrefix+req.Stage, s.cfg.Runner.StageLockTTL)
	if err != nil {
		if errors.Is(err, distlock.ErrNotAcquired) {
			s.logger.Warn("Stage lease held elsewhere, skipping",
				logger.StringField("stage", req.Stage))
			return "", errStageLeaseHeld
		}
		return "", fmt.Errorf("failed to acquire stage lease: %w", err)
	}
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := lock.Release(releaseCtx); err != nil {
			s.logger.Warn("Failed to release stage lease",
				logger.StringField("key", lock.Key()), logger.ErrorField(err))
		}
	}()

	return target.Execute(ctx, req)
}

// errStageLeaseHeld marks a run that was skipped because another worker holds
// the stage lease. The run row is marked skipped, not failed.
var errStageLeaseHeld = errors.New("stage lease held by another worker")

func (s *runnerService) readOne(ctx context.Context, streamName string) (redis.XMessage, bool) {
	streams, err := s.redisClient.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    common.RedisStreamGroup,
		Consumer: common.RedisStreamConsumer,
		Streams:  []string{streamName, ">"},
		Count:    1,
		Block:    2 * time.Second,
		NoAck:    true,
	}).Result()
	if err != nil {
		if err == context.Canceled || err == context.DeadlineExceeded || err == redis.Nil {
			return redis.XMessage{}, false
		}
		s.logger.Error("Failed to read from stream",
			logger.StringField("stream", streamName), logger.ErrorField(err))
		return redis.XMessage{}, false
	}
	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return redis.XMessage{}, false
	}
	return streams[0].Messages[0], true
}

func (s *runnerService) unmarshalPayload(ctx context.Context, streamName string, message redis.XMessage, out interface{}) bool {
	payload, ok := message.Values["payload"].(string)
	if !ok {
		s.logger.Error("field 'payload' not found or not a string in stream message",
			logger.StringField("stream", streamName), logger.Field("message_id", message.ID))
		return false
	}
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		s.logger.Error("Failed to unmarshal stream payload",
			logger.ErrorField(err), logger.Field("message_id", message.ID))
		// Ack malformed messages so they are not reprocessed forever.
		if err := s.redisClient.XAck(ctx, streamName, common.RedisStreamGroup, message.ID).Err(); err != nil {
			s.logger.Error("Failed to acknowledge malformed message",
				logger.ErrorField(err), logger.Field("message_id", message.ID))
		}
		return false
	}
	return true
}

// recordOutcome closes out the stage run row created by the scheduler. Runs
// without a row (direct CLI requests) only log.
func (s *runnerService) recordOutcome(ctx context.Context, req dto.StageRunRequest, output string, err error) {
	if req.StageRunID == nil {
		if err != nil {
			s.logger.Error("Stage run failed", logger.StringField("stage", req.Stage), logger.ErrorField(err))
		}
		return
	}

	run, findErr := s.runRepo.FindByID(ctx, *req.StageRunID)
	if findErr != nil {
		s.logger.Error("Failed to load stage run",
			logger.Field("stage_run_id", *req.StageRunID), logger.ErrorField(findErr))
		return
	}

	run.CompletedAt = sql.NullTime{Time: utils.TimeNowBRT(), Valid: true}
	switch {
	case errors.Is(err, errStageLeaseHeld):
		run.Status = entity.StageRunStatusSkipped
		run.ErrorMessage = sql.NullString{String: err.Error(), Valid: true}
	case err != nil:
		run.Status = entity.StageRunStatusFailed
		run.ErrorMessage = sql.NullString{String: err.Error(), Valid: true}
	default:
		run.Status = entity.StageRunStatusCompleted
	}
	if output != "" {
		run.Output = sql.NullString{String: utils.CleanToValidUTF8(output), Valid: true}
	}

	if updateErr := s.runRepo.Update(ctx, run); updateErr != nil {
		s.logger.Error("Failed to update stage run",
			logger.Field("stage_run_id", run.ID), logger.ErrorField(updateErr))
	}
}
