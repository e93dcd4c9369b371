package stage

import (
	"context"
	"encoding/json"
	"fmt"

	"go-stock-newsroom/internal/entity"
	"go-stock-newsroom/internal/pipeline/dto"
	"go-stock-newsroom/internal/pipeline/repository"
	"go-stock-newsroom/internal/pipeline/service"
	"go-stock-newsroom/pkg/logger"
	"go-stock-newsroom/pkg/utils"
)

// SentimentStage scores market sentiment for the covered symbols.
type SentimentStage struct {
	logger     *logger.Logger
	symbolRepo repository.StockSymbolRepository
	collector  service.CollectorService
}

// NewSentimentStage creates a new sentiment collection stage.
func NewSentimentStage(log *logger.Logger, symbolRepo repository.StockSymbolRepository, collector service.CollectorService) *SentimentStage {
	return &SentimentStage{logger: log, symbolRepo: symbolRepo, collector: collector}
}

// Name returns the stage identifier.
func (s *SentimentStage) Name() entity.StageName {
	return entity.StageAnalyzeSentiment
}

// Execute scores sentiment per symbol, continuing past individual failures.
func (s *SentimentStage) Execute(ctx context.Context, req dto.StageRunRequest) (string, error) {
	symbols, err := resolveSymbols(ctx, s.symbolRepo, req.Symbol)
	if err != nil {
		return "", dto.NewStageError(s.Name(), err)
	}
	if len(symbols) == 0 {
		return "", dto.NewStageError(s.Name(), fmt.Errorf("no symbols to analyze"))
	}

	var (
		results []dto.SymbolStageResult
		failed  int
	)
	for i := range symbols {
		symbol := &symbols[i]
		if !utils.ShouldContinue(ctx, s.logger) {
			break
		}

		_, reused, err := s.collector.EnsureSentiment(ctx, symbol)
		result := dto.SymbolStageResult{Symbol: symbol.Symbol, Status: "analyzed", Skipped: reused}
		if err != nil {
			failed++
			result.Status = "failed"
			result.Error = err.Error()
			s.logger.Error("Sentiment analysis failed",
				logger.StringField("symbol", symbol.Symbol), logger.ErrorField(err))
		}
		results = append(results, result)
	}

	output, _ := json.Marshal(results)
	if failed > 0 && failed == len(results) {
		return string(output), dto.NewStageError(s.Name(), fmt.Errorf("all %d symbols failed", failed))
	}
	return string(output), nil
}
