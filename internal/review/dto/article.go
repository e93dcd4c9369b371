package dto

import (
	"time"

	"go-stock-newsroom/internal/entity"
)

// RejectArticleRequest is the body for the reject endpoint.
type RejectArticleRequest struct {
	Reason string `json:"reason"`
}

// ArticleResponse is the DTO for API responses containing article details.
type ArticleResponse struct {
	ID              uint       `json:"id"`
	Symbol          string     `json:"symbol"`
	Title           string     `json:"title"`
	Content         string     `json:"content,omitempty"`
	Status          string     `json:"status"`
	RejectionReason string     `json:"motivo_reprovacao,omitempty"`
	Recommendation  string     `json:"recommendation,omitempty"`
	ReviewedBy      string     `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	NotifiedAt      *time.Time `json:"notified_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// NewArticleResponse maps an article entity to its API shape. The body is
// included only when withContent is set, list endpoints stay light.
func NewArticleResponse(article *entity.Article, withContent bool) ArticleResponse {
	resp := ArticleResponse{
		ID:              article.ID,
		Symbol:          article.StockSymbol.Symbol,
		Title:           article.Title,
		Status:          string(article.Status),
		RejectionReason: article.RejectionReason,
		Recommendation:  article.Recommendation,
		ReviewedBy:      article.ReviewedBy,
		ReviewedAt:      article.ReviewedAt,
		PublishedAt:     article.PublishedAt,
		NotifiedAt:      article.NotifiedAt,
		CreatedAt:       article.CreatedAt,
	}
	if withContent {
		resp.Content = article.Content
	}
	return resp
}
