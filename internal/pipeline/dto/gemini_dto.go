package dto

// GeminiAPIRequest is the request body for the Gemini generateContent endpoint.
type GeminiAPIRequest struct {
	Contents []Content `json:"contents"`
}

// Content is a single content block in a Gemini request/response.
type Content struct {
	Parts []Part `json:"parts"`
	Role  string `json:"role,omitempty"`
}

// Part is a single part of a content block.
type Part struct {
	Text string `json:"text"`
}

// GeminiAPIResponse is the response body from the Gemini generateContent endpoint.
type GeminiAPIResponse struct {
	Candidates []Candidate `json:"candidates"`
}

// Candidate is one generation candidate.
type Candidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

// GeneratedArticle is the structured article the LLM returns.
type GeneratedArticle struct {
	Title          string `json:"title"`
	Content        string `json:"content"`
	Recommendation string `json:"recommendation"`
}

// MarketInsights is the structured market-context blob the LLM returns for
// a sentiment analysis.
type MarketInsights struct {
	MarketAnalysis string `json:"market_analysis"`
	MacroAnalysis  string `json:"macro_analysis"`
	Insights       string `json:"insights"`
	Recommendation string `json:"recommendation"`
}
