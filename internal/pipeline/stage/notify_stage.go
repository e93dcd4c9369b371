package stage

import (
	"context"
	"encoding/json"
	"fmt"

	"go-stock-newsroom/internal/entity"
	"go-stock-newsroom/internal/pipeline/dto"
	"go-stock-newsroom/internal/pipeline/repository"
	"go-stock-newsroom/pkg/logger"
	"go-stock-newsroom/pkg/telegram"
	"go-stock-newsroom/pkg/utils"
)

// NotifyStage sends the reviewers one batched digest of unnotified drafts.
// Articles are stamped only after the send succeeds, so a crash between send
// and stamp re-sends rather than drops: delivery is at-least-once.
type NotifyStage struct {
	logger      *logger.Logger
	articleRepo repository.ArticleRepository
	notifier    telegram.Notifier
}

// NewNotifyStage creates a new review notification stage.
func NewNotifyStage(log *logger.Logger, articleRepo repository.ArticleRepository, notifier telegram.Notifier) *NotifyStage {
	return &NotifyStage{logger: log, articleRepo: articleRepo, notifier: notifier}
}

// Name returns the stage identifier.
func (s *NotifyStage) Name() entity.StageName {
	return entity.StageNotifyPending
}

// Execute builds and sends the pending-review digest. With DryRun set the
// digest is logged and nothing is sent or stamped.
func (s *NotifyStage) Execute(ctx context.Context, req dto.StageRunRequest) (string, error) {
	articles, err := s.articleRepo.FindPendingUnnotified(ctx)
	if err != nil {
		return "", dto.NewStageError(s.Name(), fmt.Errorf("failed to load unnotified articles: %w", err))
	}

	result := dto.NotifyStageResult{DryRun: req.DryRun, Candidates: len(articles)}
	if len(articles) == 0 {
		output, _ := json.Marshal(result)
		return string(output), nil
	}

	items := make([]telegram.PendingReviewItem, 0, len(articles))
	ids := make([]uint, 0, len(articles))
	for _, article := range articles {
		items = append(items, telegram.PendingReviewItem{
			ArticleID:      article.ID,
			Symbol:         article.StockSymbol.Symbol,
			Title:          article.Title,
			Recommendation: article.Recommendation,
		})
		ids = append(ids, article.ID)
	}
	digest := telegram.FormatPendingReviewDigest(items)

	if req.DryRun {
		s.logger.Info("Dry run, digest not sent",
			logger.IntField("candidates", len(items)),
			logger.StringField("digest", digest))
		output, _ := json.Marshal(result)
		return string(output), nil
	}

	if s.notifier == nil {
		return "", dto.NewStageError(s.Name(), fmt.Errorf("notifier not configured"))
	}
	if err := s.notifier.SendPendingReviewDigest(items); err != nil {
		result.Error = err.Error()
		output, _ := json.Marshal(result)
		return string(output), dto.NewStageError(s.Name(), fmt.Errorf("failed to send digest: %w", err))
	}

	if err := s.articleRepo.MarkNotified(ctx, ids, utils.TimeNowBRT()); err != nil {
		// The digest went out. Failing the stage here would re-send next
		// run, which the at-least-once contract allows.
		return "", dto.NewStageError(s.Name(), fmt.Errorf("digest sent but stamping failed: %w", err))
	}

	result.Notified = len(ids)
	s.logger.Info("Review digest sent", logger.IntField("notified", len(ids)))

	output, _ := json.Marshal(result)
	return string(output), nil
}
