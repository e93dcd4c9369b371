package repository

import (
	"fmt"
	"strings"

	"go-stock-newsroom/internal/entity"
	"go-stock-newsroom/internal/pipeline/dto"
)

// BuildArticlePrompt builds the prompt for a draft article from the latest
// financial and sentiment snapshots.
func BuildArticlePrompt(symbol *entity.StockSymbol, financial *entity.FinancialData, sentiment *entity.SentimentAnalysis) string {
	topics := strings.Join(sentiment.TrendingTopics, ", ")

	promptTemplate := `Você é um redator financeiro experiente. Escreva um artigo de análise sobre a ação %s (%s) da bolsa brasileira.

Dados financeiros (coletados em %s):
- Preço atual: R$ %.2f
- Fechamento anterior: R$ %.2f
- Variação: %.2f (%.2f%%)
- Volume: %d
- Valor de mercado: %.0f
- P/L: %.2f
- Dividend yield: %.2f
- Máxima 52 semanas: %.2f
- Mínima 52 semanas: %.2f

Sentimento de mercado (analisado em %s):
- Sentimento agregado: %s (score %.2f)
- Notícias positivas: %d, negativas: %d, neutras: %d
- Tópicos em destaque: %s
- Insights: %s

Responda somente com JSON no formato:

{
  "title": "{título do artigo em português}",
  "content": "{corpo do artigo em HTML, com parágrafos <p>, mínimo 4 parágrafos}",
  "recommendation": "comprar | manter | vender, com justificativa curta"
}`

	return fmt.Sprintf(promptTemplate,
		symbol.Symbol, symbol.CompanyName,
		financial.CollectedAt.Format("2006-01-02 15:04"),
		financial.Price, financial.PreviousClose,
		financial.PriceChange, financial.PriceChangePercent,
		financial.Volume, financial.MarketCap,
		financial.PERatio, financial.DividendYield,
		financial.Week52High, financial.Week52Low,
		sentiment.AnalyzedAt.Format("2006-01-02 15:04"),
		sentiment.Sentiment, sentiment.Score,
		sentiment.PositiveCount, sentiment.NegativeCount, sentiment.NeutralCount,
		topics, sentiment.Insights,
	)
}

// BuildMarketInsightsPrompt builds the prompt for the market-context read
// over fetched headlines.
func BuildMarketInsightsPrompt(symbol *entity.StockSymbol, newsItems []dto.NewsItem) string {
	var newsBuilder strings.Builder
	for i, item := range newsItems {
		publishedAtStr := "N/A"
		if item.PublishedAt != nil {
			publishedAtStr = item.PublishedAt.Format("2006-01-02 15:04:05")
		}
		newsBuilder.WriteString(fmt.Sprintf(
			"%d. Título: \"%s\"\n   Publicado em: %s\n   Fonte: %s\n   Resumo: %s\n\n",
			i+1, item.Title, publishedAtStr, item.Source, item.Description,
		))
	}

	promptTemplate := `Você é um analista do mercado de capitais brasileiro. A seguir estão notícias recentes sobre a ação %s (%s):

%s
Com base nessas notícias, responda somente com JSON no formato:

{
  "market_analysis": "{análise do contexto de mercado para a ação, em português}",
  "macro_analysis": "{análise do contexto macroeconômico relevante, em português}",
  "insights": "{principais insights para investidores, em português}",
  "recommendation": "comprar | manter | vender, com justificativa curta"
}`

	return fmt.Sprintf(promptTemplate, symbol.Symbol, symbol.CompanyName, newsBuilder.String())
}
