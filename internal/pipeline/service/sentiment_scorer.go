package service

import (
	"sort"
	"strings"

	"go-stock-newsroom/internal/entity"
	"go-stock-newsroom/internal/pipeline/dto"
)

// positiveLexicon and negativeLexicon cover the vocabulary of Brazilian
// financial headlines plus the English terms wire services mix in.
var positiveLexicon = []string{
	"alta", "sobe", "subiu", "lucro", "recorde", "cresce", "crescimento",
	"dividendos", "valorização", "supera", "avanço", "avança", "otimista",
	"compra", "positivo", "ganho", "ganhos", "melhora", "expansão",
	"up", "gain", "profit", "growth", "record", "beat", "upgrade", "bullish",
}

var negativeLexicon = []string{
	"queda", "cai", "caiu", "prejuízo", "perda", "perdas", "despenca",
	"recuo", "recua", "pessimista", "venda", "negativo", "tombo", "crise",
	"dívida", "inadimplência", "piora", "retração", "corte",
	"down", "loss", "drop", "miss", "downgrade", "bearish", "decline",
}

var topicStopwords = map[string]struct{}{
	"para": {}, "com": {}, "que": {}, "das": {}, "dos": {}, "uma": {},
	"por": {}, "mais": {}, "ação": {}, "ações": {}, "sobre": {}, "após": {},
	"the": {}, "and": {}, "for": {}, "with": {}, "from": {}, "this": {},
	"stock": {}, "market": {}, "mercado": {}, "empresa": {},
}

// SentimentScore is the deterministic aggregate over a batch of news items.
type SentimentScore struct {
	Label          string
	Score          float64
	PositiveCount  int
	NegativeCount  int
	NeutralCount   int
	TrendingTopics []string
}

// ScoreNewsItems classifies each item against the lexicons and aggregates:
// score = (positive - negative) / total, clamped to [-1, 1] by construction.
// An empty batch scores neutral with zero score.
func ScoreNewsItems(items []dto.NewsItem) SentimentScore {
	score := SentimentScore{Label: entity.SentimentNeutral}
	if len(items) == 0 {
		return score
	}

	wordCounts := map[string]int{}

	for _, item := range items {
		text := strings.ToLower(item.Title + " " + item.Description + " " + item.Content)

		positiveHits := countHits(text, positiveLexicon)
		negativeHits := countHits(text, negativeLexicon)

		switch {
		case positiveHits > negativeHits:
			score.PositiveCount++
		case negativeHits > positiveHits:
			score.NegativeCount++
		default:
			score.NeutralCount++
		}

		for _, word := range strings.FieldsFunc(strings.ToLower(item.Title), func(r rune) bool {
			return !isWordRune(r)
		}) {
			if len([]rune(word)) < 5 {
				continue
			}
			if _, stop := topicStopwords[word]; stop {
				continue
			}
			wordCounts[word]++
		}
	}

	total := len(items)
	score.Score = float64(score.PositiveCount-score.NegativeCount) / float64(total)

	switch {
	case score.Score > 0.15:
		score.Label = entity.SentimentPositive
	case score.Score < -0.15:
		score.Label = entity.SentimentNegative
	default:
		score.Label = entity.SentimentNeutral
	}

	score.TrendingTopics = topWords(wordCounts, 5)
	return score
}

func countHits(text string, lexicon []string) int {
	hits := 0
	for _, word := range lexicon {
		if strings.Contains(text, word) {
			hits++
		}
	}
	return hits
}

func isWordRune(r rune) bool {
	return r == '-' || r == '_' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') || r > 127
}

func topWords(counts map[string]int, limit int) []string {
	type wordCount struct {
		word  string
		count int
	}
	ranked := make([]wordCount, 0, len(counts))
	for word, count := range counts {
		if count < 2 {
			continue
		}
		ranked = append(ranked, wordCount{word, count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count == ranked[j].count {
			return ranked[i].word < ranked[j].word
		}
		return ranked[i].count > ranked[j].count
	})

	var topics []string
	for i := 0; i < len(ranked) && i < limit; i++ {
		topics = append(topics, ranked[i].word)
	}
	return topics
}
