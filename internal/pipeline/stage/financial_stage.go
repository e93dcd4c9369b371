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

// FinancialStage collects quote snapshots for the covered symbols.
type FinancialStage struct {
	logger     *logger.Logger
	symbolRepo repository.StockSymbolRepository
	collector  service.CollectorService
}

// NewFinancialStage creates a new financial collection stage.
func NewFinancialStage(log *logger.Logger, symbolRepo repository.StockSymbolRepository, collector service.CollectorService) *FinancialStage {
	return &FinancialStage{logger: log, symbolRepo: symbolRepo, collector: collector}
}

// Name returns the stage identifier.
func (s *FinancialStage) Name() entity.StageName {
	return entity.StageFetchFinancial
}

// Execute collects a snapshot per symbol. One symbol failing does not stop
// the rest; the stage fails only when every symbol failed.
func (s *FinancialStage) Execute(ctx context.Context, req dto.StageRunRequest) (string, error) {
	symbols, err := resolveSymbols(ctx, s.symbolRepo, req.Symbol)
	if err != nil {
		return "", dto.NewStageError(s.Name(), err)
	}
	if len(symbols) == 0 {
		return "", dto.NewStageError(s.Name(), fmt.Errorf("no symbols to collect"))
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

		_, reused, err := s.collector.EnsureFinancialData(ctx, symbol)
		result := dto.SymbolStageResult{Symbol: symbol.Symbol, Status: "collected", Skipped: reused}
		if err != nil {
			failed++
			result.Status = "failed"
			result.Error = err.Error()
			s.logger.Error("Financial collection failed",
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
