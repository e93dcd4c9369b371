package stage

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

type fakeCleanupFinancialRepo struct {
	removed int64
	err     error
	cutoff  time.Time
}

func (f *fakeCleanupFinancialRepo) Create(ctx context.Context, data *entity.FinancialData) error {
	return nil
}

func (f *fakeCleanupFinancialRepo) GetLatest(ctx context.Context, stockSymbolID uint) (*entity.FinancialData, error) {
	return nil, nil
}

func (f *fakeCleanupFinancialRepo) DeleteStale(ctx context.Context, before time.Time) (int64, error) {
	f.cutoff = before
	return f.removed, f.err
}

type fakeCleanupSentimentRepo struct {
	removed int64
	err     error
}

func (f *fakeCleanupSentimentRepo) Create(ctx context.Context, analysis *entity.SentimentAnalysis) error {
	return nil
}

func (f *fakeCleanupSentimentRepo) GetLatest(ctx context.Context, stockSymbolID uint) (*entity.SentimentAnalysis, error) {
	return nil, nil
}

func (f *fakeCleanupSentimentRepo) DeleteStale(ctx context.Context, before time.Time) (int64, error) {
	return f.removed, f.err
}

func TestCleanupStageSweep(t *testing.T) {
	cfg := &config.Config{Retention: config.Retention{SnapshotMaxAge: 30 * 24 * time.Hour}}
	financialRepo := &fakeCleanupFinancialRepo{removed: 12}
	sentimentRepo := &fakeCleanupSentimentRepo{removed: 7}
	s := NewCleanupStage(logger.NewNop(), cfg, financialRepo, sentimentRepo)

	output, err := s.Execute(context.Background(), dto.StageRunRequest{})
	require.NoError(t, err)

	var result dto.CleanupStageResult
	require.NoError(t, json.Unmarshal([]byte(output), &result))
	assert.Equal(t, int64(12), result.FinancialDataRemoved)
	assert.Equal(t, int64(7), result.SentimentRemoved)

	// Cutoff sits one retention window in the past.
	assert.WithinDuration(t, time.Now().Add(-30*24*time.Hour), financialRepo.cutoff, time.Minute)
}

func TestCleanupStageDeleteFailure(t *testing.T) {
	cfg := &config.Config{Retention: config.Retention{SnapshotMaxAge: time.Hour}}
	financialRepo := &fakeCleanupFinancialRepo{err: fmt.Errorf("db gone")}
	s := NewCleanupStage(logger.NewNop(), cfg, financialRepo, &fakeCleanupSentimentRepo{})

	_, err := s.Execute(context.Background(), dto.StageRunRequest{})
	require.Error(t, err)

	stage, ok := dto.StageOf(err)
	require.True(t, ok)
	assert.Equal(t, entity.StageCleanup, stage)
}
