package stage

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"go-stock-newsroom/internal/entity"
	"go-stock-newsroom/internal/pipeline/dto"
	"go-stock-newsroom/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collectOutcome drives the fake collector per symbol.
type collectOutcome struct {
	reused bool
	err    error
}

type fakeStageCollector struct {
	outcomes map[string]collectOutcome
}

func (f *fakeStageCollector) EnsureFinancialData(ctx context.Context, symbol *entity.StockSymbol) (*entity.FinancialData, bool, error) {
	out := f.outcomes[symbol.Symbol]
	if out.err != nil {
		return nil, false, out.err
	}
	return &entity.FinancialData{ID: 10, StockSymbolID: symbol.ID}, out.reused, nil
}

func (f *fakeStageCollector) EnsureSentiment(ctx context.Context, symbol *entity.StockSymbol) (*entity.SentimentAnalysis, bool, error) {
	out := f.outcomes[symbol.Symbol]
	if out.err != nil {
		return nil, false, out.err
	}
	return &entity.SentimentAnalysis{ID: 20, StockSymbolID: symbol.ID}, out.reused, nil
}

func TestFinancialStageMixedOutcomes(t *testing.T) {
	symbolRepo := &fakeSymbolRepo{defaults: defaultSymbols()}
	collector := &fakeStageCollector{outcomes: map[string]collectOutcome{
		"PETR4": {},
		"VALE3": {err: fmt.Errorf("%w: status 503", dto.ErrSourceUnavailable)},
	}}
	s := NewFinancialStage(logger.NewNop(), symbolRepo, collector)

	output, err := s.Execute(context.Background(), dto.StageRunRequest{})
	require.NoError(t, err)

	var results []dto.SymbolStageResult
	require.NoError(t, json.Unmarshal([]byte(output), &results))
	require.Len(t, results, 2)
	assert.Equal(t, "collected", results[0].Status)
	assert.Equal(t, "failed", results[1].Status)
}

func TestFinancialStageAllFailed(t *testing.T) {
	symbolRepo := &fakeSymbolRepo{defaults: defaultSymbols()}
	collector := &fakeStageCollector{outcomes: map[string]collectOutcome{
		"PETR4": {err: fmt.Errorf("provider down")},
		"VALE3": {err: fmt.Errorf("provider down")},
	}}
	s := NewFinancialStage(logger.NewNop(), symbolRepo, collector)

	_, err := s.Execute(context.Background(), dto.StageRunRequest{})
	require.Error(t, err)

	stage, ok := dto.StageOf(err)
	require.True(t, ok)
	assert.Equal(t, entity.StageFetchFinancial, stage)
}

func TestFinancialStageCancelledBeforeFirstSymbol(t *testing.T) {
	symbolRepo := &fakeSymbolRepo{defaults: defaultSymbols()}
	collector := &fakeStageCollector{outcomes: map[string]collectOutcome{}}
	s := NewFinancialStage(logger.NewNop(), symbolRepo, collector)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Zero processed symbols is an interrupted run, not an all-failed one.
	_, err := s.Execute(ctx, dto.StageRunRequest{})
	assert.NoError(t, err)
}
