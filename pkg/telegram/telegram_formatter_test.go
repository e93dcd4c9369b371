package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatPendingReviewDigestEmpty(t *testing.T) {
	assert.Empty(t, FormatPendingReviewDigest(nil))
}

func TestFormatPendingReviewDigest(t *testing.T) {
	digest := FormatPendingReviewDigest([]PendingReviewItem{
		{ArticleID: 1, Symbol: "PETR4", Title: "Petrobras registrou alta", Recommendation: "manter"},
		{ArticleID: 2, Symbol: "VALE3", Title: "Vale fechou estável"},
	})

	assert.Contains(t, digest, "2 article(s) awaiting review")
	assert.Contains(t, digest, "PETR4")
	assert.Contains(t, digest, "(#1)")
	assert.Contains(t, digest, "_manter_")
	assert.Contains(t, digest, "VALE3")
	assert.Contains(t, digest, "(#2)")
}

func TestFormatPendingReviewDigestEscapesMarkdown(t *testing.T) {
	digest := FormatPendingReviewDigest([]PendingReviewItem{
		{ArticleID: 3, Symbol: "PETR4", Title: "Relatório *confidencial* da [empresa]_interna"},
	})

	assert.Contains(t, digest, `\*confidencial\*`)
	assert.Contains(t, digest, `\[empresa]`)
	assert.Contains(t, digest, `\_interna`)
}
