package consumer

import (
	"context"
	"sync"
	"time"

	"go-stock-newsroom/internal/pipeline/config"
	"go-stock-newsroom/internal/pipeline/runner"
	"go-stock-newsroom/pkg/common"
	"go-stock-newsroom/pkg/logger"
	"go-stock-newsroom/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// RedisConsumer manages the consumption of run requests from the Redis streams.
type RedisConsumer struct {
	cfg         *config.Config
	redisClient *redis.Client
	runner      runner.Service
	logger      *logger.Logger
	stopChan    chan struct{}
	wg          sync.WaitGroup
}

// NewRedisConsumer creates a new RedisConsumer.
func NewRedisConsumer(cfg *config.Config, redisClient *redis.Client, runnerSvc runner.Service, log *logger.Logger) *RedisConsumer {
	return &RedisConsumer{
		cfg:         cfg,
		redisClient: redisClient,
		runner:      runnerSvc,
		logger:      log,
		stopChan:    make(chan struct{}),
	}
}

// Start begins the consumer loops for both streams.
func (c *RedisConsumer) Start(ctx context.Context) {
	c.logger.Info("Redis consumer started")
	c.RegisterStreamHandler(ctx, c.runner.ProcessStageRun, common.RedisStreamStageRun, c.cfg.Runner.StreamTimeout)
	c.RegisterStreamHandler(ctx, c.runner.ProcessAnalysisRun, common.RedisStreamAnalysisRun, c.cfg.Runner.StreamTimeout)
}

// RegisterStreamHandler runs fn in a loop until the consumer stops. Each
// iteration gets its own timeout-bounded context.
func (c *RedisConsumer) RegisterStreamHandler(ctx context.Context, fn func(ctx context.Context), streamName string, timeout time.Duration) {
	c.logger.Info("Registering stream handler", logger.Field("stream", streamName))
	c.wg.Add(1)
	utils.GoSafe(func() {
		defer c.wg.Done()
		for {
			select {
			case <-ctx.Done():
				c.logger.Info("Redis consumer stopping due to context cancellation")
				return
			case <-c.stopChan:
				c.logger.Info("Redis consumer stopping")
				return
			default:
				ctxTimeout, cancel := context.WithTimeout(ctx, timeout)
				fn(ctxTimeout)
				cancel()
			}
		}
	})
}

// Stop gracefully shuts down the consumer.
func (c *RedisConsumer) Stop() {
	close(c.stopChan)
	c.wg.Wait()
	c.logger.Info("Redis consumer stopped")
}
