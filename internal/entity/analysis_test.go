package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalysisStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    AnalysisStatus
		to      AnalysisStatus
		allowed bool
	}{
		{"pending to fetching", AnalysisStatusPending, AnalysisStatusFetchingFinancial, true},
		{"fetching to analyzing", AnalysisStatusFetchingFinancial, AnalysisStatusAnalyzingSent, true},
		{"analyzing to drafting", AnalysisStatusAnalyzingSent, AnalysisStatusDraftingArticle, true},
		{"drafting to pending review", AnalysisStatusDraftingArticle, AnalysisStatusPendingReview, true},
		{"pending review to completed", AnalysisStatusPendingReview, AnalysisStatusCompleted, true},
		{"no skipping stages", AnalysisStatusPending, AnalysisStatusAnalyzingSent, false},
		{"no skipping to review", AnalysisStatusFetchingFinancial, AnalysisStatusPendingReview, false},
		{"no going back", AnalysisStatusAnalyzingSent, AnalysisStatusFetchingFinancial, false},
		{"completed is terminal", AnalysisStatusCompleted, AnalysisStatusFailed, false},
		{"failed is terminal", AnalysisStatusFailed, AnalysisStatusPending, false},
		{"cancelled is terminal", AnalysisStatusCancelled, AnalysisStatusCompleted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestAnalysisFailedAndCancelledReachableFromEveryNonTerminalState(t *testing.T) {
	nonTerminal := []AnalysisStatus{
		AnalysisStatusPending,
		AnalysisStatusFetchingFinancial,
		AnalysisStatusAnalyzingSent,
		AnalysisStatusDraftingArticle,
		AnalysisStatusPendingReview,
	}
	for _, from := range nonTerminal {
		assert.True(t, from.CanTransitionTo(AnalysisStatusFailed), "failed from %s", from)
		assert.True(t, from.CanTransitionTo(AnalysisStatusCancelled), "cancelled from %s", from)
	}
}

func TestAnalysisProgress(t *testing.T) {
	id := uint(1)

	analysis := &Analysis{Status: AnalysisStatusPending}
	assert.Equal(t, 0.0, analysis.Progress())
	assert.False(t, analysis.IsComplete())

	analysis.FinancialDataID = &id
	assert.Equal(t, 0.25, analysis.Progress())

	analysis.SentimentAnalysisID = &id
	assert.Equal(t, 0.5, analysis.Progress())

	analysis.ArticleID = &id
	assert.Equal(t, 0.75, analysis.Progress())
	assert.True(t, analysis.IsComplete())

	analysis.Status = AnalysisStatusCompleted
	assert.Equal(t, 1.0, analysis.Progress())
}

func TestAnalysisIsProcessing(t *testing.T) {
	assert.False(t, AnalysisStatusPending.IsProcessing())
	assert.True(t, AnalysisStatusFetchingFinancial.IsProcessing())
	assert.True(t, AnalysisStatusAnalyzingSent.IsProcessing())
	assert.True(t, AnalysisStatusDraftingArticle.IsProcessing())
	assert.False(t, AnalysisStatusPendingReview.IsProcessing())
	assert.False(t, AnalysisStatusCompleted.IsProcessing())
}
