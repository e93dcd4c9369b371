package repository

import (
	"testing"

	"go-stock-newsroom/internal/pipeline/config"
	"go-stock-newsroom/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeminiAIRepositoryDefaultsZeroRateLimit(t *testing.T) {
	cfg := &config.Config{Gemini: config.Gemini{
		BaseURL: "https://example.invalid/v1",
		Model:   "gemini-2.0-flash",
	}}

	repo, err := NewGeminiAIRepository(cfg, logger.NewNop(), nil)
	require.NoError(t, err)
	assert.NotNil(t, repo)
}
