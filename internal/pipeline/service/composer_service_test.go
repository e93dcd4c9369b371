package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go-stock-newsroom/internal/entity"
	"go-stock-newsroom/internal/pipeline/dto"
	"go-stock-newsroom/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeArticleRepo struct {
	latest   *entity.Article
	hasDraft bool
	created  []*entity.Article
}

func (f *fakeArticleRepo) Create(ctx context.Context, article *entity.Article) error {
	article.ID = uint(len(f.created) + 300)
	f.created = append(f.created, article)
	return nil
}

func (f *fakeArticleRepo) FindByID(ctx context.Context, id uint) (*entity.Article, error) {
	return f.latest, nil
}

func (f *fakeArticleRepo) FindByStatus(ctx context.Context, status entity.ArticleStatus) ([]entity.Article, error) {
	return nil, nil
}

func (f *fakeArticleRepo) FindAll(ctx context.Context) ([]entity.Article, error) {
	return nil, nil
}

func (f *fakeArticleRepo) FindPendingUnnotified(ctx context.Context) ([]entity.Article, error) {
	return nil, nil
}

func (f *fakeArticleRepo) MarkNotified(ctx context.Context, ids []uint, notifiedAt time.Time) error {
	return nil
}

func (f *fakeArticleRepo) FindLatestBySymbol(ctx context.Context, stockSymbolID uint) (*entity.Article, error) {
	return f.latest, nil
}

func (f *fakeArticleRepo) HasFreshDraft(ctx context.Context, stockSymbolID uint, since time.Time) (bool, error) {
	return f.hasDraft, nil
}

func (f *fakeArticleRepo) UpdateGuarded(ctx context.Context, article *entity.Article, from entity.ArticleStatus) error {
	return nil
}

func composerFixtures() (*entity.StockSymbol, *entity.FinancialData, *entity.SentimentAnalysis) {
	symbol := &entity.StockSymbol{ID: 1, Symbol: "PETR4", CompanyName: "Petrobras"}
	financial := &entity.FinancialData{
		ID:                 10,
		StockSymbolID:      1,
		Price:              38.52,
		PreviousClose:      38.10,
		PriceChangePercent: 1.1,
		Volume:             1_000_000,
		CollectedAt:        time.Now(),
	}
	sentiment := &entity.SentimentAnalysis{
		ID:            20,
		StockSymbolID: 1,
		Sentiment:     entity.SentimentPositive,
		Score:         0.4,
		PositiveCount: 3,
		AnalyzedAt:    time.Now(),
	}
	return symbol, financial, sentiment
}

func TestComposeArticleReusesFreshDraft(t *testing.T) {
	symbol, financial, sentiment := composerFixtures()
	existing := &entity.Article{ID: 300, StockSymbolID: 1, Status: entity.ArticleStatusPendingReview}
	articleRepo := &fakeArticleRepo{hasDraft: true, latest: existing}

	svc := NewComposerService(collectorTestConfig(), logger.NewNop(), articleRepo,
		&fakeFinancialRepo{latest: financial}, &fakeSentimentRepo{latest: sentiment}, nil)

	article, reused, err := svc.ComposeArticle(context.Background(), symbol)
	require.NoError(t, err)
	assert.True(t, reused)
	assert.Equal(t, uint(300), article.ID)
	assert.Empty(t, articleRepo.created)
}

func TestEnsureArticleReusesFreshDraft(t *testing.T) {
	symbol, financial, sentiment := composerFixtures()
	existing := &entity.Article{ID: 300, StockSymbolID: 1, Status: entity.ArticleStatusPendingReview}
	articleRepo := &fakeArticleRepo{hasDraft: true, latest: existing}
	aiRepo := &fakeAIRepo{article: &dto.GeneratedArticle{Title: "novo", Content: "<p>novo</p>"}}

	svc := NewComposerService(collectorTestConfig(), logger.NewNop(), articleRepo,
		&fakeFinancialRepo{latest: financial}, &fakeSentimentRepo{latest: sentiment}, aiRepo)

	article, reused, err := svc.EnsureArticle(context.Background(), symbol, financial, sentiment)
	require.NoError(t, err)
	assert.True(t, reused)
	assert.Equal(t, uint(300), article.ID)
	// No new row and no generation happened.
	assert.Empty(t, articleRepo.created)
}

func TestEnsureArticleComposesWithoutFreshDraft(t *testing.T) {
	symbol, financial, sentiment := composerFixtures()
	articleRepo := &fakeArticleRepo{}

	svc := NewComposerService(collectorTestConfig(), logger.NewNop(), articleRepo,
		&fakeFinancialRepo{latest: financial}, &fakeSentimentRepo{latest: sentiment}, nil)

	article, reused, err := svc.EnsureArticle(context.Background(), symbol, financial, sentiment)
	require.NoError(t, err)
	assert.False(t, reused)
	require.Len(t, articleRepo.created, 1)
	assert.NotEmpty(t, article.Title)
}

func TestComposeArticleStaleInputs(t *testing.T) {
	symbol, financial, sentiment := composerFixtures()

	t.Run("missing financial data", func(t *testing.T) {
		svc := NewComposerService(collectorTestConfig(), logger.NewNop(), &fakeArticleRepo{},
			&fakeFinancialRepo{}, &fakeSentimentRepo{latest: sentiment}, nil)

		_, _, err := svc.ComposeArticle(context.Background(), symbol)
		assert.ErrorIs(t, err, ErrStaleInputs)
	})

	t.Run("stale sentiment", func(t *testing.T) {
		stale := &entity.SentimentAnalysis{ID: 20, StockSymbolID: 1, AnalyzedAt: time.Now().Add(-3 * time.Hour)}
		svc := NewComposerService(collectorTestConfig(), logger.NewNop(), &fakeArticleRepo{},
			&fakeFinancialRepo{latest: financial}, &fakeSentimentRepo{latest: stale}, nil)

		_, _, err := svc.ComposeArticle(context.Background(), symbol)
		assert.ErrorIs(t, err, ErrStaleInputs)
	})
}

func TestComposeArticleUsesLLMDraft(t *testing.T) {
	symbol, financial, sentiment := composerFixtures()
	articleRepo := &fakeArticleRepo{}
	aiRepo := &fakeAIRepo{article: &dto.GeneratedArticle{
		Title:          "Petrobras avança com resultado forte",
		Content:        "<p>Análise completa do pregão.</p>",
		Recommendation: "comprar",
	}}

	svc := NewComposerService(collectorTestConfig(), logger.NewNop(), articleRepo,
		&fakeFinancialRepo{latest: financial}, &fakeSentimentRepo{latest: sentiment}, aiRepo)

	article, reused, err := svc.ComposeArticle(context.Background(), symbol)
	require.NoError(t, err)
	assert.False(t, reused)
	require.Len(t, articleRepo.created, 1)
	assert.Equal(t, "Petrobras avança com resultado forte", article.Title)
	assert.Equal(t, "comprar", article.Recommendation)
	assert.Equal(t, entity.ArticleStatusPendingReview, article.Status)
	require.NotNil(t, article.FinancialDataID)
	assert.Equal(t, uint(10), *article.FinancialDataID)
	require.NotNil(t, article.SentimentAnalysisID)
	assert.Equal(t, uint(20), *article.SentimentAnalysisID)
	assert.Contains(t, string(article.Metadata), `"generator":"gemini"`)
}

func TestComposeArticleFallsBackToTemplate(t *testing.T) {
	symbol, financial, sentiment := composerFixtures()

	tests := []struct {
		name   string
		aiRepo *fakeAIRepo
	}{
		{"no provider wired", nil},
		{"provider fails", &fakeAIRepo{articleErr: fmt.Errorf("quota exhausted")}},
		{"provider returns empty draft", &fakeAIRepo{article: &dto.GeneratedArticle{Title: "  ", Content: ""}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			articleRepo := &fakeArticleRepo{}
			var svc ComposerService
			if tt.aiRepo == nil {
				svc = NewComposerService(collectorTestConfig(), logger.NewNop(), articleRepo,
					&fakeFinancialRepo{latest: financial}, &fakeSentimentRepo{latest: sentiment}, nil)
			} else {
				svc = NewComposerService(collectorTestConfig(), logger.NewNop(), articleRepo,
					&fakeFinancialRepo{latest: financial}, &fakeSentimentRepo{latest: sentiment}, tt.aiRepo)
			}

			article, reused, err := svc.ComposeArticle(context.Background(), symbol)
			require.NoError(t, err)
			assert.False(t, reused)
			assert.NotEmpty(t, article.Title)
			assert.NotEmpty(t, article.Content)
			assert.Equal(t, "manter", article.Recommendation)
			assert.Contains(t, article.Title, "PETR4")
			assert.Contains(t, string(article.Metadata), `"generator":"template"`)
		})
	}
}
