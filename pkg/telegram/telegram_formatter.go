package telegram

import (
	"fmt"
	"strings"
)

// PendingReviewItem is one article awaiting review, as shown in the digest.
type PendingReviewItem struct {
	ArticleID      uint
	Symbol         string
	Title          string
	Recommendation string
}

// FormatPendingReviewDigest builds the single batched message the notifier
// sends for a run. Returns "" when there is nothing to report.
func FormatPendingReviewDigest(items []PendingReviewItem) string {
	if len(items) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("📝 *%d article(s) awaiting review*\n\n", len(items)))
	for _, item := range items {
		b.WriteString(fmt.Sprintf("• *%s*: %s (#%d)\n", escapeMarkdown(item.Symbol), escapeMarkdown(item.Title), item.ArticleID))
		if item.Recommendation != "" {
			b.WriteString(fmt.Sprintf("  _%s_\n", escapeMarkdown(item.Recommendation)))
		}
	}
	b.WriteString("\nOpen the review dashboard to approve or reject.")
	return b.String()
}

func escapeMarkdown(s string) string {
	replacer := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"`", "\\`",
	)
	return replacer.Replace(s)
}
