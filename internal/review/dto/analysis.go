package dto

import (
	"time"

	"go-stock-newsroom/internal/entity"
)

// CreateAnalysisRequest is the body for the analysis trigger endpoint.
type CreateAnalysisRequest struct {
	Symbol string `json:"symbol"`
}

// AnalysisResponse is the DTO for API responses containing analysis details.
type AnalysisResponse struct {
	ID                  uint       `json:"id"`
	Symbol              string     `json:"symbol"`
	Status              string     `json:"status"`
	Progress            float64    `json:"progress"`
	FinancialDataID     *uint      `json:"financial_data_id,omitempty"`
	SentimentAnalysisID *uint      `json:"sentiment_analysis_id,omitempty"`
	ArticleID           *uint      `json:"article_id,omitempty"`
	ErrorMessage        string     `json:"error_message,omitempty"`
	RequestedBy         string     `json:"requested_by,omitempty"`
	StartedAt           *time.Time `json:"started_at,omitempty"`
	CompletedAt         *time.Time `json:"completed_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

// NewAnalysisResponse maps an analysis entity to its API shape.
func NewAnalysisResponse(analysis *entity.Analysis) AnalysisResponse {
	resp := AnalysisResponse{
		ID:                  analysis.ID,
		Symbol:              analysis.StockSymbol.Symbol,
		Status:              string(analysis.Status),
		Progress:            analysis.Progress(),
		FinancialDataID:     analysis.FinancialDataID,
		SentimentAnalysisID: analysis.SentimentAnalysisID,
		ArticleID:           analysis.ArticleID,
		RequestedBy:         analysis.RequestedBy,
		StartedAt:           analysis.StartedAt,
		CreatedAt:           analysis.CreatedAt,
	}
	if analysis.ErrorMessage.Valid {
		resp.ErrorMessage = analysis.ErrorMessage.String
	}
	if analysis.CompletedAt.Valid {
		completedAt := analysis.CompletedAt.Time
		resp.CompletedAt = &completedAt
	}
	return resp
}
