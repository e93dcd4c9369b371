package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"go-stock-newsroom/internal/entity"
	"go-stock-newsroom/internal/review/config"
	"go-stock-newsroom/internal/review/dto"
	"go-stock-newsroom/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSymbolRepo struct {
	symbols map[string]*entity.StockSymbol
}

func (f *fakeSymbolRepo) Create(ctx context.Context, symbol *entity.StockSymbol) error {
	return nil
}

func (f *fakeSymbolRepo) FindBySymbol(ctx context.Context, symbol string) (*entity.StockSymbol, error) {
	if s, ok := f.symbols[symbol]; ok {
		return s, nil
	}
	return nil, assert.AnError
}

func (f *fakeSymbolRepo) FindAll(ctx context.Context) ([]entity.StockSymbol, error) {
	return nil, nil
}

func TestAnalysisCreateValidatesSymbol(t *testing.T) {
	svc := NewAnalysisService(&config.Config{}, logger.NewNop(), &fakeAnalysisRepo{}, &fakeSymbolRepo{}, nil)

	_, err := svc.Create(context.Background(), &dto.CreateAnalysisRequest{Symbol: "   "}, "api")
	assert.ErrorIs(t, err, dto.ErrValidation)
}

func TestAnalysisCreateUnknownSymbol(t *testing.T) {
	svc := NewAnalysisService(&config.Config{}, logger.NewNop(), &fakeAnalysisRepo{}, &fakeSymbolRepo{symbols: map[string]*entity.StockSymbol{}}, nil)

	_, err := svc.Create(context.Background(), &dto.CreateAnalysisRequest{Symbol: "xxxx9"}, "api")
	assert.Error(t, err)
}

func TestAnalysisCancel(t *testing.T) {
	t.Run("processing analysis cancels", func(t *testing.T) {
		repo := &fakeAnalysisRepo{analysis: &entity.Analysis{
			ID:          5,
			Status:      entity.AnalysisStatusFetchingFinancial,
			StockSymbol: entity.StockSymbol{Symbol: "PETR4"},
		}}
		svc := NewAnalysisService(&config.Config{}, logger.NewNop(), repo, &fakeSymbolRepo{}, nil)

		resp, err := svc.Cancel(context.Background(), 5)
		require.NoError(t, err)
		assert.Equal(t, string(entity.AnalysisStatusCancelled), resp.Status)
		require.Len(t, repo.transitions, 1)
		assert.Equal(t, entity.AnalysisStatusCancelled, repo.transitions[0])
	})

	t.Run("terminal analysis refuses", func(t *testing.T) {
		repo := &fakeAnalysisRepo{analysis: &entity.Analysis{
			ID:     5,
			Status: entity.AnalysisStatusFailed,
		}}
		svc := NewAnalysisService(&config.Config{}, logger.NewNop(), repo, &fakeSymbolRepo{}, nil)

		_, err := svc.Cancel(context.Background(), 5)
		assert.ErrorIs(t, err, entity.ErrInvalidTransition)
		assert.Empty(t, repo.transitions)
	})
}

func TestAnalysisGetByID(t *testing.T) {
	completed := time.Date(2026, 8, 27, 15, 0, 0, 0, time.UTC)
	id := uint(9)
	repo := &fakeAnalysisRepo{analysis: &entity.Analysis{
		ID:                  5,
		Status:              entity.AnalysisStatusCompleted,
		FinancialDataID:     &id,
		SentimentAnalysisID: &id,
		ArticleID:           &id,
		CompletedAt:         sql.NullTime{Time: completed, Valid: true},
		StockSymbol:         entity.StockSymbol{Symbol: "PETR4"},
	}}
	svc := NewAnalysisService(&config.Config{}, logger.NewNop(), repo, &fakeSymbolRepo{}, nil)

	resp, err := svc.GetByID(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "PETR4", resp.Symbol)
	assert.Equal(t, 1.0, resp.Progress)
	require.NotNil(t, resp.CompletedAt)
	assert.Equal(t, completed, *resp.CompletedAt)
}
