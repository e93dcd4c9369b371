package service

import (
	"context"
	"errors"
	"fmt"

	"go-stock-newsroom/internal/entity"
	"go-stock-newsroom/internal/pipeline/dto"
	"go-stock-newsroom/internal/pipeline/repository"
	"go-stock-newsroom/pkg/logger"
	"go-stock-newsroom/pkg/utils"
)

// OrchestratorService drives one analysis through the pipeline stages. Every
// status move is a guarded transition, so a concurrent cancellation surfaces
// as a status conflict and the in-flight result is discarded instead of
// overwriting the cancelled row.
type OrchestratorService interface {
	Run(ctx context.Context, analysisID uint) error
	Cancel(ctx context.Context, analysisID uint) error
}

// NewOrchestratorService creates a new orchestrator service.
func NewOrchestratorService(
	log *logger.Logger,
	analysisRepo repository.AnalysisRepository,
	collector CollectorService,
	composer ComposerService,
) OrchestratorService {
	return &orchestratorService{
		logger:       log,
		analysisRepo: analysisRepo,
		collector:    collector,
		composer:     composer,
	}
}

type orchestratorService struct {
	logger       *logger.Logger
	analysisRepo repository.AnalysisRepository
	collector    CollectorService
	composer     ComposerService
}

// Run executes the pipeline for one analysis: financial snapshot, sentiment
// snapshot, draft article, then hands off to review. It only picks up pending
// rows; anything else was already claimed or finished.
func (s *orchestratorService) Run(ctx context.Context, analysisID uint) error {
	analysis, err := s.analysisRepo.FindByID(ctx, analysisID)
	if err != nil {
		return fmt.Errorf("failed to load analysis %d: %w", analysisID, err)
	}
	if analysis.Status != entity.AnalysisStatusPending {
		s.logger.Warn("Analysis is not pending, skipping run",
			logger.IntField("analysis_id", int(analysisID)),
			logger.StringField("status", string(analysis.Status)))
		return nil
	}
	symbol := &analysis.StockSymbol

	now := utils.TimeNowBRT()
	if err := s.transition(ctx, analysis, entity.AnalysisStatusFetchingFinancial, map[string]interface{}{
		"started_at": now,
	}); err != nil || s.discarded(ctx, analysis) {
		return err
	}

	financial, reusedFinancial, err := s.collector.EnsureFinancialData(ctx, symbol)
	if err != nil {
		return s.fail(ctx, analysis, dto.NewStageError(entity.StageFetchFinancial, err))
	}
	if err := s.transition(ctx, analysis, entity.AnalysisStatusAnalyzingSent, map[string]interface{}{
		"financial_data_id": financial.ID,
	}); err != nil || s.discarded(ctx, analysis) {
		return err
	}
	analysis.FinancialDataID = utils.ToPointer(financial.ID)

	sentiment, reusedSentiment, err := s.collector.EnsureSentiment(ctx, symbol)
	if err != nil {
		return s.fail(ctx, analysis, dto.NewStageError(entity.StageAnalyzeSentiment, err))
	}
	if err := s.transition(ctx, analysis, entity.AnalysisStatusDraftingArticle, map[string]interface{}{
		"sentiment_analysis_id": sentiment.ID,
	}); err != nil || s.discarded(ctx, analysis) {
		return err
	}
	analysis.SentimentAnalysisID = utils.ToPointer(sentiment.ID)

	article, reusedArticle, err := s.composer.EnsureArticle(ctx, symbol, financial, sentiment)
	if err != nil {
		return s.fail(ctx, analysis, dto.NewStageError(entity.StageComposeArticle, err))
	}
	if err := s.transition(ctx, analysis, entity.AnalysisStatusPendingReview, map[string]interface{}{
		"article_id": article.ID,
	}); err != nil || s.discarded(ctx, analysis) {
		return err
	}

	// A reused article that already cleared review means there is nothing
	// left to wait for.
	if article.Status == entity.ArticleStatusPublished {
		if err := s.transition(ctx, analysis, entity.AnalysisStatusCompleted, map[string]interface{}{
			"completed_at": utils.TimeNowBRT(),
		}); err != nil || s.discarded(ctx, analysis) {
			return err
		}
		s.logger.Info("Analysis bound to a published article, completed",
			logger.IntField("analysis_id", int(analysisID)),
			logger.IntField("article_id", int(article.ID)))
		return nil
	}

	s.logger.Info("Analysis reached review",
		logger.IntField("analysis_id", int(analysisID)),
		logger.StringField("symbol", symbol.Symbol),
		logger.IntField("article_id", int(article.ID)),
		logger.Field("reused_financial", reusedFinancial),
		logger.Field("reused_sentiment", reusedSentiment),
		logger.Field("reused_article", reusedArticle))

	return nil
}

// Cancel moves a non-terminal analysis to cancelled. Artifact references
// already written stay on the row.
func (s *orchestratorService) Cancel(ctx context.Context, analysisID uint) error {
	analysis, err := s.analysisRepo.FindByID(ctx, analysisID)
	if err != nil {
		return fmt.Errorf("failed to load analysis %d: %w", analysisID, err)
	}
	if analysis.Status.IsTerminal() {
		return entity.ErrInvalidTransition
	}
	if err := s.analysisRepo.Transition(ctx, analysis.ID, analysis.Status, entity.AnalysisStatusCancelled, nil); err != nil {
		return err
	}
	s.logger.Info("Analysis cancelled",
		logger.IntField("analysis_id", int(analysisID)),
		logger.StringField("from", string(analysis.Status)))
	return nil
}

// transition applies a guarded move and tracks the new status on the local
// copy. A status conflict means another actor moved the row, typically a
// cancellation; the caller checks discarded() and stops quietly.
func (s *orchestratorService) transition(ctx context.Context, analysis *entity.Analysis, to entity.AnalysisStatus, updates map[string]interface{}) error {
	err := s.analysisRepo.Transition(ctx, analysis.ID, analysis.Status, to, updates)
	if err == nil {
		analysis.Status = to
		return nil
	}
	if errors.Is(err, entity.ErrStatusConflict) {
		analysis.Status = "" // forces discarded() to reload
		return nil
	}
	return fmt.Errorf("failed to transition analysis %d to %s: %w", analysis.ID, to, err)
}

// discarded reports whether the run lost its row to a concurrent transition.
// The current DB status is logged so the discard is traceable.
func (s *orchestratorService) discarded(ctx context.Context, analysis *entity.Analysis) bool {
	if analysis.Status != "" {
		return false
	}
	current, err := s.analysisRepo.FindByID(ctx, analysis.ID)
	status := "unknown"
	if err == nil {
		status = string(current.Status)
	}
	s.logger.Warn("Analysis moved concurrently, discarding in-flight result",
		logger.IntField("analysis_id", int(analysis.ID)),
		logger.StringField("current_status", status))
	return true
}

// fail records the failure with its originating stage. completed_at stays
// null: failed runs never completed. A conflict here means the analysis was
// cancelled mid-flight, which wins over the failure.
func (s *orchestratorService) fail(ctx context.Context, analysis *entity.Analysis, stageErr error) error {
	stage, _ := dto.StageOf(stageErr)
	s.logger.Error("Analysis stage failed",
		logger.IntField("analysis_id", int(analysis.ID)),
		logger.StringField("stage", string(stage)),
		logger.ErrorField(stageErr))

	err := s.analysisRepo.Transition(ctx, analysis.ID, analysis.Status, entity.AnalysisStatusFailed, map[string]interface{}{
		"error_message": stageErr.Error(),
	})
	if err != nil && !errors.Is(err, entity.ErrStatusConflict) {
		return fmt.Errorf("failed to mark analysis %d failed: %w", analysis.ID, err)
	}
	return stageErr
}
