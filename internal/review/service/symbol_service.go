package service

import (
	"context"
	"fmt"
	"strings"

	"go-stock-newsroom/internal/entity"
	"go-stock-newsroom/internal/review/dto"
	"go-stock-newsroom/internal/review/repository"
	"go-stock-newsroom/pkg/logger"
)

// SymbolService manages the symbol registry the collectors draw from.
type SymbolService interface {
	Create(ctx context.Context, req *dto.CreateSymbolRequest) (*dto.SymbolResponse, error)
	GetAll(ctx context.Context) ([]dto.SymbolResponse, error)
}

// NewSymbolService creates a new symbol service.
func NewSymbolService(log *logger.Logger, symbolRepo repository.StockSymbolRepository) SymbolService {
	return &symbolService{logger: log, symbolRepo: symbolRepo}
}

type symbolService struct {
	logger     *logger.Logger
	symbolRepo repository.StockSymbolRepository
}

func (s *symbolService) Create(ctx context.Context, req *dto.CreateSymbolRequest) (*dto.SymbolResponse, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if code == "" {
		return nil, fmt.Errorf("%w: symbol is required", dto.ErrValidation)
	}

	symbol := &entity.StockSymbol{
		Symbol:      code,
		CompanyName: strings.TrimSpace(req.CompanyName),
		IsActive:    true,
		IsDefault:   req.IsDefault,
	}
	if err := s.symbolRepo.Create(ctx, symbol); err != nil {
		return nil, fmt.Errorf("failed to create symbol: %w", err)
	}

	s.logger.Info("Symbol registered", logger.StringField("symbol", code))

	resp := dto.NewSymbolResponse(symbol)
	return &resp, nil
}

func (s *symbolService) GetAll(ctx context.Context) ([]dto.SymbolResponse, error) {
	symbols, err := s.symbolRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]dto.SymbolResponse, 0, len(symbols))
	for i := range symbols {
		responses = append(responses, dto.NewSymbolResponse(&symbols[i]))
	}
	return responses, nil
}
