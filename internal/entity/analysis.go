package entity

import (
	"database/sql"
	"time"
)

// AnalysisStatus is the overall state of one orchestrated pipeline run.
type AnalysisStatus string

const (
	AnalysisStatusPending           AnalysisStatus = "pending"
	AnalysisStatusFetchingFinancial AnalysisStatus = "fetching_financial_data"
	AnalysisStatusAnalyzingSent     AnalysisStatus = "analyzing_sentiment"
	AnalysisStatusDraftingArticle   AnalysisStatus = "drafting_article"
	AnalysisStatusPendingReview     AnalysisStatus = "pending_review"
	AnalysisStatusCompleted         AnalysisStatus = "completed"
	AnalysisStatusFailed            AnalysisStatus = "failed"
	AnalysisStatusCancelled         AnalysisStatus = "cancelled"
)

// analysisTransitions is the full transition table for the orchestrator.
// failed and cancelled are reachable from every non-terminal state.
var analysisTransitions = map[AnalysisStatus][]AnalysisStatus{
	AnalysisStatusPending:           {AnalysisStatusFetchingFinancial, AnalysisStatusFailed, AnalysisStatusCancelled},
	AnalysisStatusFetchingFinancial: {AnalysisStatusAnalyzingSent, AnalysisStatusFailed, AnalysisStatusCancelled},
	AnalysisStatusAnalyzingSent:     {AnalysisStatusDraftingArticle, AnalysisStatusFailed, AnalysisStatusCancelled},
	AnalysisStatusDraftingArticle:   {AnalysisStatusPendingReview, AnalysisStatusFailed, AnalysisStatusCancelled},
	AnalysisStatusPendingReview:     {AnalysisStatusCompleted, AnalysisStatusFailed, AnalysisStatusCancelled},
	AnalysisStatusCompleted:         {},
	AnalysisStatusFailed:            {},
	AnalysisStatusCancelled:         {},
}

// CanTransitionTo reports whether the orchestrator permits moving to target.
func (s AnalysisStatus) CanTransitionTo(target AnalysisStatus) bool {
	for _, allowed := range analysisTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the analysis can no longer move.
func (s AnalysisStatus) IsTerminal() bool {
	return len(analysisTransitions[s]) == 0
}

// IsProcessing reports whether the analysis is in one of the three working states.
func (s AnalysisStatus) IsProcessing() bool {
	switch s {
	case AnalysisStatusFetchingFinancial, AnalysisStatusAnalyzingSent, AnalysisStatusDraftingArticle:
		return true
	}
	return false
}

// Analysis binds one orchestrated request to the three artifacts it produces.
// It references the snapshots, it does not own their lifecycle: collectors run
// independently and rows are shared across analyses through the freshness check.
type Analysis struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	StockSymbolID       uint           `gorm:"not null;index" json:"stock_symbol_id"`
	Status              AnalysisStatus `gorm:"type:varchar(30);not null;index" json:"status"`
	FinancialDataID     *uint          `json:"financial_data_id"`
	SentimentAnalysisID *uint          `json:"sentiment_analysis_id"`
	ArticleID           *uint          `json:"article_id"`
	ErrorMessage        sql.NullString `json:"error_message"`
	RequestedBy         string         `gorm:"type:varchar(100)" json:"requested_by"`
	StartedAt           *time.Time     `json:"started_at"`
	CompletedAt         sql.NullTime   `json:"completed_at"`
	CreatedAt           time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time      `gorm:"autoUpdateTime" json:"updated_at"`

	StockSymbol StockSymbol `gorm:"foreignKey:StockSymbolID" json:"-"`
	Article     *Article    `gorm:"foreignKey:ArticleID" json:"-"`
}

// TableName specifies the table name for the Analysis model.
func (Analysis) TableName() string {
	return "analyses"
}

// IsComplete reports whether all three artifact references are populated.
func (a *Analysis) IsComplete() bool {
	return a.FinancialDataID != nil && a.SentimentAnalysisID != nil && a.ArticleID != nil
}

// IsProcessing reports whether the analysis is in one of the working states.
func (a *Analysis) IsProcessing() bool {
	return a.Status.IsProcessing()
}

// Progress is (artifacts present + completed flag) / 4.
func (a *Analysis) Progress() float64 {
	steps := 0
	if a.FinancialDataID != nil {
		steps++
	}
	if a.SentimentAnalysisID != nil {
		steps++
	}
	if a.ArticleID != nil {
		steps++
	}
	if a.Status == AnalysisStatusCompleted {
		steps++
	}
	return float64(steps) / 4.0
}
