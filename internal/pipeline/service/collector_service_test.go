package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"go-stock-newsroom/internal/entity"
	"go-stock-newsroom/internal/pipeline/config"
	"go-stock-newsroom/internal/pipeline/dto"
	"go-stock-newsroom/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFinancialRepo struct {
	latest  *entity.FinancialData
	created []*entity.FinancialData
}

func (f *fakeFinancialRepo) Create(ctx context.Context, data *entity.FinancialData) error {
	data.ID = uint(len(f.created) + 100)
	f.created = append(f.created, data)
	return nil
}

func (f *fakeFinancialRepo) GetLatest(ctx context.Context, stockSymbolID uint) (*entity.FinancialData, error) {
	return f.latest, nil
}

func (f *fakeFinancialRepo) DeleteStale(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

type fakeSentimentRepo struct {
	latest  *entity.SentimentAnalysis
	created []*entity.SentimentAnalysis
}

func (f *fakeSentimentRepo) Create(ctx context.Context, analysis *entity.SentimentAnalysis) error {
	analysis.ID = uint(len(f.created) + 200)
	f.created = append(f.created, analysis)
	return nil
}

func (f *fakeSentimentRepo) GetLatest(ctx context.Context, stockSymbolID uint) (*entity.SentimentAnalysis, error) {
	return f.latest, nil
}

func (f *fakeSentimentRepo) DeleteStale(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

type fakeQuoteRepo struct {
	quote *dto.Quote
	err   error
	calls int
}

func (f *fakeQuoteRepo) GetQuote(ctx context.Context, symbol string) (*dto.Quote, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.quote, nil
}

type fakeNewsRepo struct {
	configured bool
	items      []dto.NewsItem
	err        error
}

func (f *fakeNewsRepo) Search(ctx context.Context, symbol, companyName string, maxResults int) ([]dto.NewsItem, error) {
	return f.items, f.err
}

func (f *fakeNewsRepo) IsConfigured() bool {
	return f.configured
}

type fakeAIRepo struct {
	insights    *dto.MarketInsights
	insightsErr error
	article     *dto.GeneratedArticle
	articleErr  error
}

func (f *fakeAIRepo) GenerateArticle(ctx context.Context, symbol *entity.StockSymbol, financial *entity.FinancialData, sentiment *entity.SentimentAnalysis) (*dto.GeneratedArticle, error) {
	return f.article, f.articleErr
}

func (f *fakeAIRepo) GenerateMarketInsights(ctx context.Context, symbol *entity.StockSymbol, newsItems []dto.NewsItem) (*dto.MarketInsights, error) {
	return f.insights, f.insightsErr
}

func collectorTestConfig() *config.Config {
	return &config.Config{
		Freshness: config.Freshness{
			FinancialWindow: 30 * time.Minute,
			SentimentWindow: 2 * time.Hour,
		},
		News: config.News{MaxResults: 10},
	}
}

func TestEnsureFinancialDataReusesFreshSnapshot(t *testing.T) {
	symbol := &entity.StockSymbol{ID: 1, Symbol: "PETR4"}
	fresh := &entity.FinancialData{ID: 42, StockSymbolID: 1, CollectedAt: time.Now()}
	financialRepo := &fakeFinancialRepo{latest: fresh}
	quoteRepo := &fakeQuoteRepo{}

	svc := NewCollectorService(collectorTestConfig(), logger.NewNop(), financialRepo, &fakeSentimentRepo{}, quoteRepo, &fakeNewsRepo{}, nil)

	data, reused, err := svc.EnsureFinancialData(context.Background(), symbol)
	require.NoError(t, err)
	assert.True(t, reused)
	assert.Equal(t, uint(42), data.ID)
	assert.Zero(t, quoteRepo.calls)
	assert.Empty(t, financialRepo.created)
}

func TestEnsureFinancialDataFetchesWhenStale(t *testing.T) {
	symbol := &entity.StockSymbol{ID: 1, Symbol: "PETR4"}
	stale := &entity.FinancialData{ID: 42, StockSymbolID: 1, CollectedAt: time.Now().Add(-2 * time.Hour)}
	financialRepo := &fakeFinancialRepo{latest: stale}
	quoteRepo := &fakeQuoteRepo{quote: &dto.Quote{
		Symbol:        "PETR4",
		Price:         38.52,
		PreviousClose: 38.10,
		Change:        0.42,
		Volume:        1_000_000,
		RawPayload:    json.RawMessage(`{"symbol":"PETR4"}`),
	}}

	svc := NewCollectorService(collectorTestConfig(), logger.NewNop(), financialRepo, &fakeSentimentRepo{}, quoteRepo, &fakeNewsRepo{}, nil)

	data, reused, err := svc.EnsureFinancialData(context.Background(), symbol)
	require.NoError(t, err)
	assert.False(t, reused)
	assert.Equal(t, 1, quoteRepo.calls)
	require.Len(t, financialRepo.created, 1)
	assert.Equal(t, 38.52, data.Price)
	assert.Equal(t, int64(1_000_000), data.Volume)
	assert.Equal(t, "brapi", data.Source)
	assert.NotZero(t, data.ID)
	assert.False(t, data.CollectedAt.IsZero())
}

func TestEnsureFinancialDataPropagatesProviderError(t *testing.T) {
	symbol := &entity.StockSymbol{ID: 1, Symbol: "PETR4"}
	providerErr := fmt.Errorf("%w: status 503", dto.ErrSourceUnavailable)
	quoteRepo := &fakeQuoteRepo{err: providerErr}

	svc := NewCollectorService(collectorTestConfig(), logger.NewNop(), &fakeFinancialRepo{}, &fakeSentimentRepo{}, quoteRepo, &fakeNewsRepo{}, nil)

	_, _, err := svc.EnsureFinancialData(context.Background(), symbol)
	assert.ErrorIs(t, err, dto.ErrSourceUnavailable)
}

func TestEnsureSentimentPlaceholderWithoutNewsProvider(t *testing.T) {
	symbol := &entity.StockSymbol{ID: 3, Symbol: "VALE3"}
	sentimentRepo := &fakeSentimentRepo{}

	svc := NewCollectorService(collectorTestConfig(), logger.NewNop(), &fakeFinancialRepo{}, sentimentRepo, &fakeQuoteRepo{}, &fakeNewsRepo{configured: false}, nil)

	analysis, reused, err := svc.EnsureSentiment(context.Background(), symbol)
	require.NoError(t, err)
	assert.False(t, reused)
	require.Len(t, sentimentRepo.created, 1)
	assert.Equal(t, entity.SentimentSourcePlaceholder, analysis.Source)
	assert.Equal(t, entity.SentimentNeutral, analysis.Sentiment)
	assert.Zero(t, analysis.Score)
	assert.NotEmpty(t, analysis.Insights)
}

func TestEnsureSentimentReusesFreshSnapshot(t *testing.T) {
	symbol := &entity.StockSymbol{ID: 3, Symbol: "VALE3"}
	fresh := &entity.SentimentAnalysis{ID: 7, StockSymbolID: 3, AnalyzedAt: time.Now()}
	sentimentRepo := &fakeSentimentRepo{latest: fresh}

	svc := NewCollectorService(collectorTestConfig(), logger.NewNop(), &fakeFinancialRepo{}, sentimentRepo, &fakeQuoteRepo{}, &fakeNewsRepo{configured: true}, nil)

	analysis, reused, err := svc.EnsureSentiment(context.Background(), symbol)
	require.NoError(t, err)
	assert.True(t, reused)
	assert.Equal(t, uint(7), analysis.ID)
	assert.Empty(t, sentimentRepo.created)
}

func TestEnsureSentimentScoresNews(t *testing.T) {
	symbol := &entity.StockSymbol{ID: 3, Symbol: "VALE3", CompanyName: "Vale"}
	newsRepo := &fakeNewsRepo{
		configured: true,
		items: []dto.NewsItem{
			{Title: "Vale sobe com lucro recorde"},
			{Title: "Dividendos crescem e superam expectativa"},
		},
	}
	sentimentRepo := &fakeSentimentRepo{}

	svc := NewCollectorService(collectorTestConfig(), logger.NewNop(), &fakeFinancialRepo{}, sentimentRepo, &fakeQuoteRepo{}, newsRepo, nil)

	analysis, reused, err := svc.EnsureSentiment(context.Background(), symbol)
	require.NoError(t, err)
	assert.False(t, reused)
	require.Len(t, sentimentRepo.created, 1)
	assert.Equal(t, entity.SentimentPositive, analysis.Sentiment)
	assert.Equal(t, 2, analysis.PositiveCount)
	assert.Equal(t, "google_news", analysis.Source)
}

func TestEnsureSentimentInsightsAreBestEffort(t *testing.T) {
	symbol := &entity.StockSymbol{ID: 3, Symbol: "VALE3"}
	newsRepo := &fakeNewsRepo{
		configured: true,
		items:      []dto.NewsItem{{Title: "Vale sobe com lucro recorde"}},
	}

	t.Run("failure keeps deterministic result", func(t *testing.T) {
		sentimentRepo := &fakeSentimentRepo{}
		aiRepo := &fakeAIRepo{insightsErr: fmt.Errorf("quota exhausted")}

		svc := NewCollectorService(collectorTestConfig(), logger.NewNop(), &fakeFinancialRepo{}, sentimentRepo, &fakeQuoteRepo{}, newsRepo, aiRepo)

		analysis, _, err := svc.EnsureSentiment(context.Background(), symbol)
		require.NoError(t, err)
		assert.Equal(t, entity.SentimentPositive, analysis.Sentiment)
		assert.Empty(t, analysis.Insights)
	})

	t.Run("success enriches the snapshot", func(t *testing.T) {
		sentimentRepo := &fakeSentimentRepo{}
		aiRepo := &fakeAIRepo{insights: &dto.MarketInsights{
			MarketAnalysis: "minério em alta",
			Insights:       "fluxo comprador forte",
			Recommendation: "comprar",
		}}

		svc := NewCollectorService(collectorTestConfig(), logger.NewNop(), &fakeFinancialRepo{}, sentimentRepo, &fakeQuoteRepo{}, newsRepo, aiRepo)

		analysis, _, err := svc.EnsureSentiment(context.Background(), symbol)
		require.NoError(t, err)
		assert.Equal(t, "fluxo comprador forte", analysis.Insights)
		assert.Equal(t, "comprar", analysis.Recommendation)
		assert.NotEmpty(t, analysis.MarketContext)
	})
}
