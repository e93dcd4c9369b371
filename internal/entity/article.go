package entity

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// ArticleStatus is the review state of an article. The review workflow keeps
// the Portuguese status values the editorial team works with.
type ArticleStatus string

const (
	ArticleStatusPendingReview ArticleStatus = "pendente_revisao"
	ArticleStatusApproved      ArticleStatus = "aprovado"
	ArticleStatusRejected      ArticleStatus = "reprovado"
	ArticleStatusPublished     ArticleStatus = "publicado"
)

// articleTransitions is the full transition table for the review gate.
// Rejection and publication are terminal.
var articleTransitions = map[ArticleStatus][]ArticleStatus{
	ArticleStatusPendingReview: {ArticleStatusApproved, ArticleStatusRejected},
	ArticleStatusApproved:      {ArticleStatusPublished},
	ArticleStatusRejected:      {},
	ArticleStatusPublished:     {},
}

// CanTransitionTo reports whether the review gate permits moving to target.
func (s ArticleStatus) CanTransitionTo(target ArticleStatus) bool {
	for _, allowed := range articleTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further review transitions exist.
func (s ArticleStatus) IsTerminal() bool {
	return len(articleTransitions[s]) == 0
}

// Article is a draft or published piece tied to one symbol and, optionally,
// the financial and sentiment snapshots it was composed from.
type Article struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	StockSymbolID       uint           `gorm:"not null;index" json:"stock_symbol_id"`
	FinancialDataID     *uint          `json:"financial_data_id"`
	SentimentAnalysisID *uint          `json:"sentiment_analysis_id"`
	Title               string         `gorm:"not null" json:"title"`
	Content             string         `gorm:"type:text;not null" json:"content"`
	Status              ArticleStatus  `gorm:"type:varchar(30);not null;index" json:"status"`
	RejectionReason     string         `gorm:"column:motivo_reprovacao;type:text" json:"motivo_reprovacao"`
	Recommendation      string         `gorm:"type:text" json:"recommendation"`
	Metadata            datatypes.JSON `gorm:"type:jsonb" json:"metadata"`
	NotifiedAt          *time.Time     `json:"notified_at"`
	ReviewedAt          *time.Time     `json:"reviewed_at"`
	ReviewedBy          string         `gorm:"type:varchar(100)" json:"reviewed_by"`
	PublishedAt         *time.Time     `json:"published_at"`
	CreatedAt           time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time      `gorm:"autoUpdateTime" json:"updated_at"`

	StockSymbol       StockSymbol        `gorm:"foreignKey:StockSymbolID" json:"-"`
	FinancialData     *FinancialData     `gorm:"foreignKey:FinancialDataID" json:"-"`
	SentimentAnalysis *SentimentAnalysis `gorm:"foreignKey:SentimentAnalysisID" json:"-"`
}

// TableName specifies the table name for the Article model.
func (Article) TableName() string {
	return "articles"
}

// Approve applies the approve transition in memory. The repository persists
// it with a guarded update on the previous status.
func (a *Article) Approve(reviewer string, now time.Time) error {
	if !a.Status.CanTransitionTo(ArticleStatusApproved) {
		return ErrInvalidTransition
	}
	a.Status = ArticleStatusApproved
	a.ReviewedAt = &now
	a.ReviewedBy = reviewer
	return nil
}

// Reject applies the reject transition in memory. A non-empty reason is required.
func (a *Article) Reject(reviewer, reason string, now time.Time) error {
	if strings.TrimSpace(reason) == "" {
		return ErrRejectionReasonRequired
	}
	if !a.Status.CanTransitionTo(ArticleStatusRejected) {
		return ErrInvalidTransition
	}
	a.Status = ArticleStatusRejected
	a.RejectionReason = reason
	a.ReviewedAt = &now
	a.ReviewedBy = reviewer
	return nil
}

// Publish applies the publish transition in memory. Only approved articles
// can be published.
func (a *Article) Publish(now time.Time) error {
	if !a.Status.CanTransitionTo(ArticleStatusPublished) {
		return ErrInvalidTransition
	}
	a.Status = ArticleStatusPublished
	a.PublishedAt = &now
	return nil
}
