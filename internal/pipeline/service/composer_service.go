package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go-stock-newsroom/internal/entity"
	"go-stock-newsroom/internal/pipeline/config"
	"go-stock-newsroom/internal/pipeline/repository"
	"go-stock-newsroom/pkg/logger"
	"go-stock-newsroom/pkg/utils"

	"gorm.io/datatypes"
)

// ComposerService turns fresh financial and sentiment snapshots into a draft
// article awaiting review. Composition is skipped when either input is missing
// or stale, and a deterministic template backs up the LLM so a draft is never
// empty.
type ComposerService interface {
	ComposeArticle(ctx context.Context, symbol *entity.StockSymbol) (*entity.Article, bool, error)
	EnsureArticle(ctx context.Context, symbol *entity.StockSymbol, financial *entity.FinancialData, sentiment *entity.SentimentAnalysis) (*entity.Article, bool, error)
	ComposeFromSnapshots(ctx context.Context, symbol *entity.StockSymbol, financial *entity.FinancialData, sentiment *entity.SentimentAnalysis) (*entity.Article, error)
}

// ErrStaleInputs is returned by ComposeArticle when no fresh snapshot pair
// exists for the symbol. Callers decide whether that means skip or fail.
var ErrStaleInputs = fmt.Errorf("composition inputs missing or stale")

// NewComposerService creates a new composer service.
func NewComposerService(
	cfg *config.Config,
	log *logger.Logger,
	articleRepo repository.ArticleRepository,
	financialRepo repository.FinancialDataRepository,
	sentimentRepo repository.SentimentAnalysisRepository,
	aiRepo repository.AIRepository,
) ComposerService {
	return &composerService{
		cfg:           cfg,
		logger:        log,
		articleRepo:   articleRepo,
		financialRepo: financialRepo,
		sentimentRepo: sentimentRepo,
		aiRepo:        aiRepo,
	}
}

type composerService struct {
	cfg           *config.Config
	logger        *logger.Logger
	articleRepo   repository.ArticleRepository
	financialRepo repository.FinancialDataRepository
	sentimentRepo repository.SentimentAnalysisRepository
	aiRepo        repository.AIRepository
}

// ComposeArticle loads the latest snapshots for the symbol and composes a
// draft from them. The reused flag is true when a recent draft already exists
// and composition was skipped.
func (s *composerService) ComposeArticle(ctx context.Context, symbol *entity.StockSymbol) (*entity.Article, bool, error) {
	now := utils.TimeNowBRT()

	draft, err := s.freshDraft(ctx, symbol, now)
	if err != nil {
		return nil, false, err
	}
	if draft != nil {
		return draft, true, nil
	}

	financial, err := s.financialRepo.GetLatest(ctx, symbol.ID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load financial data: %w", err)
	}
	sentiment, err := s.sentimentRepo.GetLatest(ctx, symbol.ID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load sentiment analysis: %w", err)
	}
	if financial == nil || !financial.IsFresh(s.cfg.Freshness.FinancialWindow, now) {
		return nil, false, fmt.Errorf("%w: financial data for %s", ErrStaleInputs, symbol.Symbol)
	}
	if sentiment == nil || !sentiment.IsFresh(s.cfg.Freshness.SentimentWindow, now) {
		return nil, false, fmt.Errorf("%w: sentiment for %s", ErrStaleInputs, symbol.Symbol)
	}

	article, err := s.ComposeFromSnapshots(ctx, symbol, financial, sentiment)
	if err != nil {
		return nil, false, err
	}
	return article, false, nil
}

// EnsureArticle reuses a fresh draft when one exists, otherwise composes and
// persists a new one from the given snapshots. The reused flag is true when
// nothing new was written, so a re-run costs no LLM call and no extra row.
func (s *composerService) EnsureArticle(ctx context.Context, symbol *entity.StockSymbol, financial *entity.FinancialData, sentiment *entity.SentimentAnalysis) (*entity.Article, bool, error) {
	draft, err := s.freshDraft(ctx, symbol, utils.TimeNowBRT())
	if err != nil {
		return nil, false, err
	}
	if draft != nil {
		return draft, true, nil
	}

	article, err := s.ComposeFromSnapshots(ctx, symbol, financial, sentiment)
	if err != nil {
		return nil, false, err
	}
	return article, false, nil
}

// freshDraft returns the most recent article for the symbol when one was
// composed inside the financial window, or nil when there is none.
func (s *composerService) freshDraft(ctx context.Context, symbol *entity.StockSymbol, now time.Time) (*entity.Article, error) {
	since := now.Add(-s.cfg.Freshness.FinancialWindow)
	hasDraft, err := s.articleRepo.HasFreshDraft(ctx, symbol.ID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to check for fresh draft: %w", err)
	}
	if !hasDraft {
		return nil, nil
	}
	latest, err := s.articleRepo.FindLatestBySymbol(ctx, symbol.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest draft: %w", err)
	}
	if latest != nil {
		s.logger.DebugContext(ctx, "Reusing fresh draft",
			logger.StringField("symbol", symbol.Symbol),
			logger.IntField("article_id", int(latest.ID)))
	}
	return latest, nil
}

// ComposeFromSnapshots composes and persists a draft from the given snapshot
// pair. Callers that want fresh-draft reuse go through EnsureArticle instead;
// this always writes a new row.
func (s *composerService) ComposeFromSnapshots(ctx context.Context, symbol *entity.StockSymbol, financial *entity.FinancialData, sentiment *entity.SentimentAnalysis) (*entity.Article, error) {
	generated, source := s.generate(ctx, symbol, financial, sentiment)

	metadata, _ := json.Marshal(map[string]interface{}{
		"generator":       source,
		"sentiment":       sentiment.Sentiment,
		"sentiment_score": sentiment.Score,
		"price":           financial.Price,
	})

	article := &entity.Article{
		StockSymbolID:       symbol.ID,
		FinancialDataID:     utils.ToPointer(financial.ID),
		SentimentAnalysisID: utils.ToPointer(sentiment.ID),
		Title:               generated.Title,
		Content:             generated.Content,
		Recommendation:      generated.Recommendation,
		Status:              entity.ArticleStatusPendingReview,
		Metadata:            datatypes.JSON(metadata),
	}
	if err := s.articleRepo.Create(ctx, article); err != nil {
		return nil, fmt.Errorf("failed to persist draft article: %w", err)
	}

	s.logger.Info("Composed draft article",
		logger.StringField("symbol", symbol.Symbol),
		logger.IntField("article_id", int(article.ID)),
		logger.StringField("generator", source))

	return article, nil
}

// generate asks the LLM for a draft and falls back to the deterministic
// template when the provider is unavailable or returns something unusable.
func (s *composerService) generate(ctx context.Context, symbol *entity.StockSymbol, financial *entity.FinancialData, sentiment *entity.SentimentAnalysis) (*dtoGenerated, string) {
	if s.aiRepo != nil {
		generated, err := s.aiRepo.GenerateArticle(ctx, symbol, financial, sentiment)
		if err != nil {
			s.logger.Warn("LLM draft generation failed, using template",
				logger.ErrorField(err), logger.StringField("symbol", symbol.Symbol))
		} else if strings.TrimSpace(generated.Title) != "" && strings.TrimSpace(generated.Content) != "" {
			return &dtoGenerated{
				Title:          generated.Title,
				Content:        generated.Content,
				Recommendation: generated.Recommendation,
			}, "gemini"
		} else {
			s.logger.Warn("LLM returned an empty draft, using template",
				logger.StringField("symbol", symbol.Symbol))
		}
	}
	return templateArticle(symbol, financial, sentiment), "template"
}

type dtoGenerated struct {
	Title          string
	Content        string
	Recommendation string
}

// templateArticle builds a deterministic draft straight from the snapshots.
func templateArticle(symbol *entity.StockSymbol, financial *entity.FinancialData, sentiment *entity.SentimentAnalysis) *dtoGenerated {
	direction := "fechou estável"
	if financial.PriceChangePercent > 0 {
		direction = "registrou alta"
	} else if financial.PriceChangePercent < 0 {
		direction = "registrou queda"
	}

	sentimentLabel := map[string]string{
		entity.SentimentPositive: "positivo",
		entity.SentimentNegative: "negativo",
		entity.SentimentNeutral:  "neutro",
	}[sentiment.Sentiment]

	title := fmt.Sprintf("%s %s de %.2f%%; sentimento do mercado é %s",
		symbol.Symbol, direction, financial.PriceChangePercent, sentimentLabel)

	var content strings.Builder
	content.WriteString(fmt.Sprintf(
		"<p>As ações da %s (%s) %s de %.2f%% na última sessão, negociadas a R$ %.2f, contra fechamento anterior de R$ %.2f.</p>",
		symbol.CompanyName, symbol.Symbol, direction,
		financial.PriceChangePercent, financial.Price, financial.PreviousClose))
	content.WriteString(fmt.Sprintf(
		"<p>O volume negociado foi de %d papéis. O papel opera entre a mínima de R$ %.2f e a máxima de R$ %.2f das últimas 52 semanas.</p>",
		financial.Volume, financial.Week52Low, financial.Week52High))
	content.WriteString(fmt.Sprintf(
		"<p>O sentimento agregado das notícias recentes é %s (score %.2f), com %d manchetes positivas, %d negativas e %d neutras.</p>",
		sentimentLabel, sentiment.Score,
		sentiment.PositiveCount, sentiment.NegativeCount, sentiment.NeutralCount))
	if len(sentiment.TrendingTopics) > 0 {
		content.WriteString(fmt.Sprintf(
			"<p>Tópicos em destaque: %s.</p>", strings.Join(sentiment.TrendingTopics, ", ")))
	}
	content.WriteString("<p>Este resumo foi gerado automaticamente a partir dos dados coletados e aguarda revisão editorial.</p>")

	recommendation := "manter"
	if sentiment.Recommendation != "" {
		recommendation = sentiment.Recommendation
	}

	return &dtoGenerated{
		Title:          title,
		Content:        content.String(),
		Recommendation: recommendation,
	}
}
