package stage

import (
	"context"
	"fmt"

	"go-stock-newsroom/internal/entity"
	"go-stock-newsroom/internal/pipeline/dto"
	"go-stock-newsroom/internal/pipeline/repository"
)

// Stage is one executable pipeline step. Execute returns a JSON summary of
// what it did, recorded on the stage run row.
type Stage interface {
	Name() entity.StageName
	Execute(ctx context.Context, req dto.StageRunRequest) (string, error)
}

// resolveSymbols expands a request into the symbols the stage covers: the
// pinned symbol when set, otherwise the default set, otherwise every active
// symbol.
func resolveSymbols(ctx context.Context, symbolRepo repository.StockSymbolRepository, requested string) ([]entity.StockSymbol, error) {
	if requested != "" {
		symbol, err := symbolRepo.FindBySymbol(ctx, requested)
		if err != nil {
			return nil, fmt.Errorf("unknown symbol %q: %w", requested, err)
		}
		return []entity.StockSymbol{*symbol}, nil
	}

	symbols, err := symbolRepo.FindDefault(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load default symbols: %w", err)
	}
	if len(symbols) > 0 {
		return symbols, nil
	}

	symbols, err = symbolRepo.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active symbols: %w", err)
	}
	return symbols, nil
}
