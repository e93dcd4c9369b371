package utils

import (
	"context"
	"testing"

	"go-stock-newsroom/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func TestShouldContinue(t *testing.T) {
	assert.True(t, ShouldContinue(context.Background(), logger.NewNop()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, ShouldContinue(ctx, logger.NewNop()))
}

func TestToPointer(t *testing.T) {
	p := ToPointer(uint(7))
	assert.Equal(t, uint(7), *p)
}

func TestContainsString(t *testing.T) {
	assert.True(t, ContainsString([]string{"ana", "bruno"}, "ana"))
	assert.False(t, ContainsString([]string{"ana", "bruno"}, "carla"))
	assert.False(t, ContainsString(nil, "ana"))
}

func TestCleanToValidUTF8(t *testing.T) {
	assert.Equal(t, "ação", CleanToValidUTF8("ação"))
	assert.Equal(t, "ab", CleanToValidUTF8("a\x00b"))
	assert.Equal(t, "ab", CleanToValidUTF8("a\xffb"))
}
