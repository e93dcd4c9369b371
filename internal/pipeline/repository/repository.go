package repository

import (
	"context"

	"go-stock-newsroom/internal/entity"
	"go-stock-newsroom/internal/pipeline/dto"
)

// AIRepository defines the interface for the LLM provider.
type AIRepository interface {
	GenerateArticle(ctx context.Context, symbol *entity.StockSymbol, financial *entity.FinancialData, sentiment *entity.SentimentAnalysis) (*dto.GeneratedArticle, error)
	GenerateMarketInsights(ctx context.Context, symbol *entity.StockSymbol, newsItems []dto.NewsItem) (*dto.MarketInsights, error)
}
