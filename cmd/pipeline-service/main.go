package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-stock-newsroom/internal/pipeline/config"
	"go-stock-newsroom/internal/pipeline/delivery/consumer"
	"go-stock-newsroom/internal/pipeline/dto"
	"go-stock-newsroom/internal/pipeline/repository"
	"go-stock-newsroom/internal/pipeline/runner"
	"go-stock-newsroom/internal/pipeline/service"
	"go-stock-newsroom/internal/pipeline/stage"
	"go-stock-newsroom/pkg/common"
	"go-stock-newsroom/pkg/distlock"
	"go-stock-newsroom/pkg/logger"
	"go-stock-newsroom/pkg/postgres"
	redisPkg "go-stock-newsroom/pkg/redis"
	"go-stock-newsroom/pkg/telegram"

	"google.golang.org/genai"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	runSymbol  string
	runDryRun  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the pipeline worker (scheduler + stream consumer)",
	Run:   runServe,
}

var runCmd = &cobra.Command{
	Use:   "run [stage]",
	Short: "Executes a single stage synchronously and exits",
	Long:  "Stages: fetch_financial, analyze_sentiment, compose_article, notify_pending, cleanup",
	Args:  cobra.ExactArgs(1),
	Run:   runStage,
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, appLogger, db, redisClient, teardown := bootstrap()
	defer teardown()

	appLogger.Info("Starting Pipeline Service", zap.String("name", cfg.App.Name))

	// MKSTREAM creates the stream if it doesn't exist
	for _, streamName := range []string{common.RedisStreamStageRun, common.RedisStreamAnalysisRun} {
		if err := redisClient.XGroupCreateMkStream(context.Background(), streamName, common.RedisStreamGroup, "0").Err(); err != nil {
			if err.Error() != "BUSYGROUP Consumer Group name already exists" {
				appLogger.Fatal("Failed to create consumer group", logger.ErrorField(err))
			}
		}
	}

	runnerSvc, scheduleRepo, runRepo := buildRunner(cfg, appLogger, db, redisClient)

	pollingInterval, err := time.ParseDuration(cfg.Scheduler.PollingInterval)
	if err != nil {
		appLogger.Fatal("Invalid polling interval", logger.ErrorField(err))
	}
	schedulerSvc := service.NewSchedulerService(scheduleRepo, runRepo, redisClient.Client, appLogger, pollingInterval, cfg)
	go schedulerSvc.Start(ctx)

	redisConsumer := consumer.NewRedisConsumer(cfg, redisClient.Client, runnerSvc, appLogger)
	redisConsumer.Start(ctx)

	appLogger.Info("Pipeline service started. Waiting for runs...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down pipeline service...")
	cancel()
	redisConsumer.Stop()
	appLogger.Info("Pipeline service stopped.")
}

func runStage(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, appLogger, db, redisClient, teardown := bootstrap()
	defer teardown()

	runnerSvc, _, _ := buildRunner(cfg, appLogger, db, redisClient)

	execCtx, cancel := context.WithTimeout(ctx, cfg.Runner.StageTimeout)
	defer cancel()

	output, err := runnerSvc.ExecuteStage(execCtx, dto.StageRunRequest{
		Stage:       args[0],
		Symbol:      runSymbol,
		DryRun:      runDryRun,
		RequestedBy: "cli",
	})
	if output != "" {
		fmt.Println(output)
	}
	if err != nil {
		appLogger.Error("Stage run failed", logger.StringField("stage", args[0]), logger.ErrorField(err))
		teardown()
		os.Exit(1)
	}
}

// bootstrap loads config and opens the shared backends. The returned teardown
// closes them in reverse order.
func bootstrap() (*config.Config, *logger.Logger, *postgres.DB, *redisPkg.Client, func()) {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	postgresCfg := postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}
	db, err := postgres.NewDB(postgresCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize database", zap.Error(err))
	}

	redisCfg := redisPkg.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	}
	redisClient, err := redisPkg.NewClient(redisCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize Redis", zap.Error(err))
	}

	teardown := func() {
		redisClient.Close()
		if sqlDB, err := db.DB.DB(); err == nil {
			sqlDB.Close()
		}
		_ = appLogger.Sync()
	}
	return cfg, appLogger, db, redisClient, teardown
}

// buildRunner wires the repositories, providers, stages and services behind
// the runner. Schedule and run repositories are returned for the scheduler.
func buildRunner(cfg *config.Config, appLogger *logger.Logger, db *postgres.DB, redisClient *redisPkg.Client) (runner.Service, repository.StageScheduleRepository, repository.StageRunRepository) {
	symbolRepo := repository.NewStockSymbolRepository(db.DB)
	financialRepo := repository.NewFinancialDataRepository(db.DB)
	sentimentRepo := repository.NewSentimentAnalysisRepository(db.DB)
	articleRepo := repository.NewArticleRepository(db.DB)
	analysisRepo := repository.NewAnalysisRepository(db.DB)
	scheduleRepo := repository.NewStageScheduleRepository(db.DB)
	runRepo := repository.NewStageRunRepository(db.DB)

	quoteRepo, err := repository.NewQuoteRepository(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize quote repository", zap.Error(err))
	}
	newsRepo := repository.NewNewsRepository(cfg, appLogger)

	var aiRepo repository.AIRepository
	switch cfg.AI.Provider {
	case "gemini":
		genAiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
			APIKey: cfg.Gemini.APIKey,
		})
		if err != nil {
			appLogger.Fatal("Failed to initialize Gemini AI client", zap.Error(err))
		}
		aiRepo, err = repository.NewGeminiAIRepository(cfg, appLogger, genAiClient)
		if err != nil {
			appLogger.Fatal("Failed to initialize Gemini AI repository", zap.Error(err))
		}
	default:
		appLogger.Warn("No AI provider configured, drafts will use the deterministic template")
	}

	var telegramNotifier telegram.Notifier
	if cfg.Telegram.BotToken != "" {
		telegramNotifier, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			appLogger.Fatal("Failed to initialize Telegram notifier", zap.Error(err))
		}
	} else {
		appLogger.Warn("Telegram not configured, notify_pending will fail unless dry-run")
	}

	collector := service.NewCollectorService(cfg, appLogger, financialRepo, sentimentRepo, quoteRepo, newsRepo, aiRepo)
	composer := service.NewComposerService(cfg, appLogger, articleRepo, financialRepo, sentimentRepo, aiRepo)
	orchestrator := service.NewOrchestratorService(appLogger, analysisRepo, collector, composer)

	stages := []stage.Stage{
		stage.NewFinancialStage(appLogger, symbolRepo, collector),
		stage.NewSentimentStage(appLogger, symbolRepo, collector),
		stage.NewComposeStage(appLogger, symbolRepo, composer),
		stage.NewNotifyStage(appLogger, articleRepo, telegramNotifier),
		stage.NewCleanupStage(appLogger, cfg, financialRepo, sentimentRepo),
	}

	locker := distlock.NewLocker(redisClient.Client)
	runnerSvc := runner.NewService(cfg, redisClient.Client, locker, runRepo, orchestrator, appLogger, stages)
	return runnerSvc, scheduleRepo, runRepo
}

func main() {
	rootCmd := &cobra.Command{Use: "pipeline-service"}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config-pipeline.yaml", "Path to the configuration file")
	runCmd.Flags().StringVarP(&runSymbol, "symbol", "s", "", "Restrict the stage to one symbol")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Report what would happen without sending or stamping")

	rootCmd.AddCommand(serveCmd, runCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing pipeline-service CLI: %s\n", err)
		os.Exit(1)
	}
}
