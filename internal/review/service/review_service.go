package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go-stock-newsroom/internal/entity"
	"go-stock-newsroom/internal/review/dto"
	"go-stock-newsroom/internal/review/repository"
	"go-stock-newsroom/pkg/logger"
	"go-stock-newsroom/pkg/utils"
)

// ReviewService is the review gate: every status change an article can go
// through after composition happens here, and nowhere else.
type ReviewService interface {
	GetArticle(ctx context.Context, id uint) (*dto.ArticleResponse, error)
	ListArticles(ctx context.Context, status string) ([]dto.ArticleResponse, error)
	Approve(ctx context.Context, id uint, reviewer string) (*dto.ArticleResponse, error)
	Reject(ctx context.Context, id uint, reviewer, reason string) (*dto.ArticleResponse, error)
	Publish(ctx context.Context, id uint, reviewer string) (*dto.ArticleResponse, error)
}

// NewReviewService creates a new review service.
func NewReviewService(
	log *logger.Logger,
	articleRepo repository.ArticleRepository,
	analysisRepo repository.AnalysisRepository,
	checker CapabilityChecker,
) ReviewService {
	return &reviewService{
		logger:       log,
		articleRepo:  articleRepo,
		analysisRepo: analysisRepo,
		checker:      checker,
	}
}

type reviewService struct {
	logger       *logger.Logger
	articleRepo  repository.ArticleRepository
	analysisRepo repository.AnalysisRepository
	checker      CapabilityChecker
}

func (s *reviewService) GetArticle(ctx context.Context, id uint) (*dto.ArticleResponse, error) {
	article, err := s.articleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewArticleResponse(article, true)
	return &resp, nil
}

func (s *reviewService) ListArticles(ctx context.Context, status string) ([]dto.ArticleResponse, error) {
	var (
		articles []entity.Article
		err      error
	)
	if status == "" {
		articles, err = s.articleRepo.FindAll(ctx)
	} else {
		articles, err = s.articleRepo.FindByStatus(ctx, entity.ArticleStatus(status))
	}
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ArticleResponse, 0, len(articles))
	for i := range articles {
		responses = append(responses, dto.NewArticleResponse(&articles[i], false))
	}
	return responses, nil
}

// Approve moves a pending article to aprovado.
func (s *reviewService) Approve(ctx context.Context, id uint, reviewer string) (*dto.ArticleResponse, error) {
	if err := s.authorize(reviewer, CapabilityReview); err != nil {
		return nil, err
	}

	article, err := s.articleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	from := article.Status
	if err := article.Approve(reviewer, utils.TimeNowBRT()); err != nil {
		return nil, err
	}
	if err := s.articleRepo.UpdateGuarded(ctx, article, from); err != nil {
		return nil, err
	}

	s.logger.Info("Article approved",
		logger.IntField("article_id", int(id)), logger.StringField("reviewer", reviewer))

	resp := dto.NewArticleResponse(article, true)
	return &resp, nil
}

// Reject moves a pending article to reprovado. The reason is mandatory and
// recorded on the row.
func (s *reviewService) Reject(ctx context.Context, id uint, reviewer, reason string) (*dto.ArticleResponse, error) {
	if err := s.authorize(reviewer, CapabilityReview); err != nil {
		return nil, err
	}

	article, err := s.articleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	from := article.Status
	if err := article.Reject(reviewer, reason, utils.TimeNowBRT()); err != nil {
		return nil, err
	}
	if err := s.articleRepo.UpdateGuarded(ctx, article, from); err != nil {
		return nil, err
	}

	s.logger.Info("Article rejected",
		logger.IntField("article_id", int(id)), logger.StringField("reviewer", reviewer))

	resp := dto.NewArticleResponse(article, true)
	return &resp, nil
}

// Publish moves an approved article to publicado and completes the analysis
// bound to it, when one exists and is still waiting on review.
func (s *reviewService) Publish(ctx context.Context, id uint, reviewer string) (*dto.ArticleResponse, error) {
	if err := s.authorize(reviewer, CapabilityPublish); err != nil {
		return nil, err
	}

	article, err := s.articleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := utils.TimeNowBRT()
	from := article.Status
	if err := article.Publish(now); err != nil {
		return nil, err
	}
	if err := s.articleRepo.UpdateGuarded(ctx, article, from); err != nil {
		return nil, err
	}

	s.completeBoundAnalysis(ctx, article.ID, now)

	s.logger.Info("Article published",
		logger.IntField("article_id", int(id)), logger.StringField("reviewer", reviewer))

	resp := dto.NewArticleResponse(article, true)
	return &resp, nil
}

func (s *reviewService) completeBoundAnalysis(ctx context.Context, articleID uint, completedAt time.Time) {
	analysis, err := s.analysisRepo.FindByArticleID(ctx, articleID)
	if err != nil {
		s.logger.Warn("Failed to load analysis for published article",
			logger.IntField("article_id", int(articleID)), logger.ErrorField(err))
		return
	}
	if analysis == nil || analysis.Status != entity.AnalysisStatusPendingReview {
		return
	}

	err = s.analysisRepo.Transition(ctx, analysis.ID, analysis.Status, entity.AnalysisStatusCompleted, map[string]interface{}{
		"completed_at": sql.NullTime{Time: completedAt, Valid: true},
	})
	if err != nil {
		s.logger.Warn("Failed to complete analysis on publish",
			logger.IntField("analysis_id", int(analysis.ID)), logger.ErrorField(err))
	}
}

func (s *reviewService) authorize(reviewer string, capability Capability) error {
	if strings.TrimSpace(reviewer) == "" {
		return dto.ErrReviewerRequired
	}
	if !s.checker(reviewer, capability) {
		return fmt.Errorf("%w: %s needs %s", dto.ErrNotAuthorized, reviewer, capability)
	}
	return nil
}
