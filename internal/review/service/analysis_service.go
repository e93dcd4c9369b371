package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go-stock-newsroom/internal/entity"
	pipelinedto "go-stock-newsroom/internal/pipeline/dto"
	"go-stock-newsroom/internal/review/config"
	"go-stock-newsroom/internal/review/dto"
	"go-stock-newsroom/internal/review/repository"
	"go-stock-newsroom/pkg/common"
	"go-stock-newsroom/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// AnalysisService creates, inspects and cancels orchestrated pipeline runs.
// Creation only enqueues: the pipeline workers pick the run up from the
// analysis stream.
type AnalysisService interface {
	Create(ctx context.Context, req *dto.CreateAnalysisRequest, requestedBy string) (*dto.AnalysisResponse, error)
	GetByID(ctx context.Context, id uint) (*dto.AnalysisResponse, error)
	GetAll(ctx context.Context) ([]dto.AnalysisResponse, error)
	Cancel(ctx context.Context, id uint) (*dto.AnalysisResponse, error)
}

// NewAnalysisService creates a new analysis service.
func NewAnalysisService(
	cfg *config.Config,
	log *logger.Logger,
	analysisRepo repository.AnalysisRepository,
	symbolRepo repository.StockSymbolRepository,
	redisClient *redis.Client,
) AnalysisService {
	return &analysisService{
		cfg:          cfg,
		logger:       log,
		analysisRepo: analysisRepo,
		symbolRepo:   symbolRepo,
		redisClient:  redisClient,
	}
}

type analysisService struct {
	cfg          *config.Config
	logger       *logger.Logger
	analysisRepo repository.AnalysisRepository
	symbolRepo   repository.StockSymbolRepository
	redisClient  *redis.Client
}

// Create registers a pending analysis for the symbol and enqueues it.
func (s *analysisService) Create(ctx context.Context, req *dto.CreateAnalysisRequest, requestedBy string) (*dto.AnalysisResponse, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if code == "" {
		return nil, fmt.Errorf("%w: symbol is required", dto.ErrValidation)
	}

	symbol, err := s.symbolRepo.FindBySymbol(ctx, code)
	if err != nil {
		return nil, err
	}

	analysis := &entity.Analysis{
		StockSymbolID: symbol.ID,
		Status:        entity.AnalysisStatusPending,
		RequestedBy:   requestedBy,
	}
	if err := s.analysisRepo.Create(ctx, analysis); err != nil {
		return nil, fmt.Errorf("failed to create analysis: %w", err)
	}

	payload, err := json.Marshal(pipelinedto.AnalysisRunRequest{AnalysisID: analysis.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analysis run payload: %w", err)
	}
	if err := s.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: common.RedisStreamAnalysisRun,
		Values: map[string]interface{}{"payload": payload},
		MaxLen: s.cfg.Redis.StreamMaxLen,
	}).Err(); err != nil {
		return nil, fmt.Errorf("failed to enqueue analysis run: %w", err)
	}

	s.logger.Info("Analysis enqueued",
		logger.IntField("analysis_id", int(analysis.ID)),
		logger.StringField("symbol", symbol.Symbol),
		logger.StringField("requested_by", requestedBy))

	analysis.StockSymbol = *symbol
	resp := dto.NewAnalysisResponse(analysis)
	return &resp, nil
}

func (s *analysisService) GetByID(ctx context.Context, id uint) (*dto.AnalysisResponse, error) {
	analysis, err := s.analysisRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewAnalysisResponse(analysis)
	return &resp, nil
}

func (s *analysisService) GetAll(ctx context.Context) ([]dto.AnalysisResponse, error) {
	analyses, err := s.analysisRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]dto.AnalysisResponse, 0, len(analyses))
	for i := range analyses {
		responses = append(responses, dto.NewAnalysisResponse(&analyses[i]))
	}
	return responses, nil
}

// Cancel moves a non-terminal analysis to cancelled. A worker holding the run
// loses the guarded transition race and discards its result.
func (s *analysisService) Cancel(ctx context.Context, id uint) (*dto.AnalysisResponse, error) {
	analysis, err := s.analysisRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if analysis.Status.IsTerminal() {
		return nil, entity.ErrInvalidTransition
	}

	if err := s.analysisRepo.Transition(ctx, analysis.ID, analysis.Status, entity.AnalysisStatusCancelled, nil); err != nil {
		return nil, err
	}

	s.logger.Info("Analysis cancelled",
		logger.IntField("analysis_id", int(id)),
		logger.StringField("from", string(analysis.Status)))

	analysis.Status = entity.AnalysisStatusCancelled
	resp := dto.NewAnalysisResponse(analysis)
	return &resp, nil
}
