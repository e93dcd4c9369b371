package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go-stock-newsroom/internal/entity"
	"go-stock-newsroom/internal/pipeline/config"
	"go-stock-newsroom/internal/pipeline/repository"
	"go-stock-newsroom/pkg/logger"
	"go-stock-newsroom/pkg/utils"

	"gorm.io/datatypes"
)

// CollectorService produces financial and sentiment snapshots, reusing fresh
// ones instead of re-fetching. The reused flag tells callers whether an
// external call was avoided.
type CollectorService interface {
	EnsureFinancialData(ctx context.Context, symbol *entity.StockSymbol) (*entity.FinancialData, bool, error)
	EnsureSentiment(ctx context.Context, symbol *entity.StockSymbol) (*entity.SentimentAnalysis, bool, error)
}

// NewCollectorService creates a new collector service.
func NewCollectorService(
	cfg *config.Config,
	log *logger.Logger,
	financialRepo repository.FinancialDataRepository,
	sentimentRepo repository.SentimentAnalysisRepository,
	quoteRepo repository.QuoteRepository,
	newsRepo repository.NewsRepository,
	aiRepo repository.AIRepository,
) CollectorService {
	return &collectorService{
		cfg:           cfg,
		logger:        log,
		financialRepo: financialRepo,
		sentimentRepo: sentimentRepo,
		quoteRepo:     quoteRepo,
		newsRepo:      newsRepo,
		aiRepo:        aiRepo,
	}
}

type collectorService struct {
	cfg           *config.Config
	logger        *logger.Logger
	financialRepo repository.FinancialDataRepository
	sentimentRepo repository.SentimentAnalysisRepository
	quoteRepo     repository.QuoteRepository
	newsRepo      repository.NewsRepository
	aiRepo        repository.AIRepository
}

// EnsureFinancialData returns a fresh snapshot for the symbol, fetching from
// the quote provider only when the latest stored one is outside the window.
func (s *collectorService) EnsureFinancialData(ctx context.Context, symbol *entity.StockSymbol) (*entity.FinancialData, bool, error) {
	latest, err := s.financialRepo.GetLatest(ctx, symbol.ID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load latest financial data: %w", err)
	}
	now := utils.TimeNowBRT()
	if latest != nil && latest.IsFresh(s.cfg.Freshness.FinancialWindow, now) {
		s.logger.DebugContext(ctx, "Reusing fresh financial data",
			logger.StringField("symbol", symbol.Symbol),
			logger.IntField("financial_data_id", int(latest.ID)))
		return latest, true, nil
	}

	quote, err := s.quoteRepo.GetQuote(ctx, symbol.Symbol)
	if err != nil {
		return nil, false, err
	}

	data := &entity.FinancialData{
		StockSymbolID:      symbol.ID,
		Price:              quote.Price,
		PreviousClose:      quote.PreviousClose,
		PriceChange:        quote.Change,
		PriceChangePercent: quote.ChangePercent,
		Volume:             quote.Volume,
		MarketCap:          quote.MarketCap,
		PERatio:            quote.PERatio,
		DividendYield:      quote.DividendYield,
		Week52High:         quote.FiftyTwoWeekHigh,
		Week52Low:          quote.FiftyTwoWeekLow,
		RawPayload:         datatypes.JSON(quote.RawPayload),
		Source:             "brapi",
		CollectedAt:        now,
	}
	if err := s.financialRepo.Create(ctx, data); err != nil {
		return nil, false, fmt.Errorf("failed to persist financial data: %w", err)
	}

	s.logger.Info("Collected financial data",
		logger.StringField("symbol", symbol.Symbol),
		logger.IntField("financial_data_id", int(data.ID)))

	return data, false, nil
}

// EnsureSentiment returns a fresh sentiment snapshot for the symbol. Without
// a configured news provider it persists a clearly-marked neutral placeholder
// instead of failing.
func (s *collectorService) EnsureSentiment(ctx context.Context, symbol *entity.StockSymbol) (*entity.SentimentAnalysis, bool, error) {
	latest, err := s.sentimentRepo.GetLatest(ctx, symbol.ID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load latest sentiment: %w", err)
	}
	now := utils.TimeNowBRT()
	if latest != nil && latest.IsFresh(s.cfg.Freshness.SentimentWindow, now) {
		s.logger.DebugContext(ctx, "Reusing fresh sentiment analysis",
			logger.StringField("symbol", symbol.Symbol),
			logger.IntField("sentiment_analysis_id", int(latest.ID)))
		return latest, true, nil
	}

	if !s.newsRepo.IsConfigured() {
		s.logger.Warn("News provider not configured, producing placeholder sentiment",
			logger.StringField("symbol", symbol.Symbol))
		placeholder := &entity.SentimentAnalysis{
			StockSymbolID: symbol.ID,
			Sentiment:     entity.SentimentNeutral,
			Score:         0,
			Insights:      "No news source configured; neutral placeholder result.",
			Source:        entity.SentimentSourcePlaceholder,
			AnalyzedAt:    now,
		}
		if err := s.sentimentRepo.Create(ctx, placeholder); err != nil {
			return nil, false, fmt.Errorf("failed to persist placeholder sentiment: %w", err)
		}
		return placeholder, false, nil
	}

	items, err := s.newsRepo.Search(ctx, symbol.Symbol, symbol.CompanyName, s.cfg.News.MaxResults)
	if err != nil {
		return nil, false, err
	}

	score := ScoreNewsItems(items)

	analysis := &entity.SentimentAnalysis{
		StockSymbolID:  symbol.ID,
		Sentiment:      score.Label,
		Score:          score.Score,
		PositiveCount:  score.PositiveCount,
		NegativeCount:  score.NegativeCount,
		NeutralCount:   score.NeutralCount,
		TrendingTopics: score.TrendingTopics,
		Source:         "google_news",
		AnalyzedAt:     now,
	}

	// Market context from the LLM is best effort: any failure degrades to
	// the deterministic counts above.
	if s.aiRepo != nil && len(items) > 0 {
		insights, err := s.aiRepo.GenerateMarketInsights(ctx, symbol, items)
		if err != nil {
			s.logger.Warn("Failed to generate market insights, keeping deterministic sentiment",
				logger.ErrorField(err), logger.StringField("symbol", symbol.Symbol))
		} else {
			contextJSON, err := json.Marshal(map[string]string{
				"market_analysis": insights.MarketAnalysis,
				"macro_analysis":  insights.MacroAnalysis,
			})
			if err == nil {
				analysis.MarketContext = datatypes.JSON(contextJSON)
			}
			analysis.Insights = insights.Insights
			analysis.Recommendation = insights.Recommendation
		}
	}

	if err := s.sentimentRepo.Create(ctx, analysis); err != nil {
		return nil, false, fmt.Errorf("failed to persist sentiment analysis: %w", err)
	}

	s.logger.Info("Collected sentiment analysis",
		logger.StringField("symbol", symbol.Symbol),
		logger.StringField("sentiment", analysis.Sentiment),
		logger.IntField("news_count", len(items)))

	return analysis, false, nil
}
