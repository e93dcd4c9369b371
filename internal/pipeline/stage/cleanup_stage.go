package stage

import (
	"context"
	"encoding/json"
	"fmt"

	"go-stock-newsroom/internal/entity"
	"go-stock-newsroom/internal/pipeline/config"
	"go-stock-newsroom/internal/pipeline/dto"
	"go-stock-newsroom/internal/pipeline/repository"
	"go-stock-newsroom/pkg/logger"
	"go-stock-newsroom/pkg/utils"
)

// CleanupStage removes snapshots past the retention window. Snapshots still
// referenced by an in-flight analysis or an unpublished article are kept; the
// repositories enforce that in the delete itself.
type CleanupStage struct {
	logger        *logger.Logger
	cfg           *config.Config
	financialRepo repository.FinancialDataRepository
	sentimentRepo repository.SentimentAnalysisRepository
}

// NewCleanupStage creates a new snapshot cleanup stage.
func NewCleanupStage(log *logger.Logger, cfg *config.Config, financialRepo repository.FinancialDataRepository, sentimentRepo repository.SentimentAnalysisRepository) *CleanupStage {
	return &CleanupStage{logger: log, cfg: cfg, financialRepo: financialRepo, sentimentRepo: sentimentRepo}
}

// Name returns the stage identifier.
func (s *CleanupStage) Name() entity.StageName {
	return entity.StageCleanup
}

// Execute deletes stale financial and sentiment snapshots in one sweep.
func (s *CleanupStage) Execute(ctx context.Context, req dto.StageRunRequest) (string, error) {
	cutoff := utils.TimeNowBRT().Add(-s.cfg.Retention.SnapshotMaxAge)

	financialRemoved, err := s.financialRepo.DeleteStale(ctx, cutoff)
	if err != nil {
		return "", dto.NewStageError(s.Name(), fmt.Errorf("failed to delete stale financial data: %w", err))
	}

	sentimentRemoved, err := s.sentimentRepo.DeleteStale(ctx, cutoff)
	if err != nil {
		return "", dto.NewStageError(s.Name(), fmt.Errorf("failed to delete stale sentiment: %w", err))
	}

	s.logger.Info("Cleanup sweep finished",
		logger.Field("financial_removed", financialRemoved),
		logger.Field("sentiment_removed", sentimentRemoved),
		logger.StringField("cutoff", cutoff.Format("2006-01-02 15:04:05")))

	result := dto.CleanupStageResult{
		FinancialDataRemoved: financialRemoved,
		SentimentRemoved:     sentimentRemoved,
	}
	output, _ := json.Marshal(result)
	return string(output), nil
}
