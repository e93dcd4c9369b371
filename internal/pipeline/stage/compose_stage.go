package stage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go-stock-newsroom/internal/entity"
	"go-stock-newsroom/internal/pipeline/dto"
	"go-stock-newsroom/internal/pipeline/repository"
	"go-stock-newsroom/internal/pipeline/service"
	"go-stock-newsroom/pkg/logger"
	"go-stock-newsroom/pkg/utils"
)

// ComposeStage drafts articles for symbols that have fresh snapshots.
type ComposeStage struct {
	logger     *logger.Logger
	symbolRepo repository.StockSymbolRepository
	composer   service.ComposerService
}

// NewComposeStage creates a new article composition stage.
func NewComposeStage(log *logger.Logger, symbolRepo repository.StockSymbolRepository, composer service.ComposerService) *ComposeStage {
	return &ComposeStage{logger: log, symbolRepo: symbolRepo, composer: composer}
}

// Name returns the stage identifier.
func (s *ComposeStage) Name() entity.StageName {
	return entity.StageComposeArticle
}

// Execute composes a draft per symbol. Symbols without fresh snapshots are
// skipped, not failed: their collectors simply have not run yet this window.
func (s *ComposeStage) Execute(ctx context.Context, req dto.StageRunRequest) (string, error) {
	symbols, err := resolveSymbols(ctx, s.symbolRepo, req.Symbol)
	if err != nil {
		return "", dto.NewStageError(s.Name(), err)
	}
	if len(symbols) == 0 {
		return "", dto.NewStageError(s.Name(), fmt.Errorf("no symbols to compose for"))
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

		article, reused, err := s.composer.ComposeArticle(ctx, symbol)
		result := dto.SymbolStageResult{Symbol: symbol.Symbol, Status: "composed"}
		switch {
		case errors.Is(err, service.ErrStaleInputs):
			result.Status = "skipped"
			result.Skipped = true
			s.logger.Info("Skipping composition, inputs missing or stale",
				logger.StringField("symbol", symbol.Symbol))
		case err != nil:
			failed++
			result.Status = "failed"
			result.Error = err.Error()
			s.logger.Error("Composition failed",
				logger.StringField("symbol", symbol.Symbol), logger.ErrorField(err))
		case reused:
			result.Status = "reused"
			result.Skipped = true
		default:
			s.logger.Info("Draft composed",
				logger.StringField("symbol", symbol.Symbol),
				logger.IntField("article_id", int(article.ID)))
		}
		results = append(results, result)
	}

	output, _ := json.Marshal(results)
	if failed > 0 && failed == len(results) {
		return string(output), dto.NewStageError(s.Name(), fmt.Errorf("all %d symbols failed", failed))
	}
	return string(output), nil
}
