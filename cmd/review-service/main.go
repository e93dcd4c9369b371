package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-stock-newsroom/internal/review/config"
	delivery "go-stock-newsroom/internal/review/delivery/http"
	"go-stock-newsroom/internal/review/repository"
	"go-stock-newsroom/internal/review/service"
	"go-stock-newsroom/pkg/logger"
	"go-stock-newsroom/pkg/postgres"
	redisPkg "go-stock-newsroom/pkg/redis"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the review service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Review Service", logger.Field("name", cfg.App.Name))

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
		appLogger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		defer sqlDB.Close()
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
		appLogger.Fatal("Failed to initialize Redis", logger.ErrorField(err))
	}
	defer redisClient.Close()

	// Initialize repositories
	articleRepo := repository.NewArticleRepository(db.DB)
	analysisRepo := repository.NewAnalysisRepository(db.DB)
	symbolRepo := repository.NewStockSymbolRepository(db.DB)

	// Initialize services
	checker := service.NewConfigCapabilityChecker(cfg.Review)
	reviewSvc := service.NewReviewService(appLogger, articleRepo, analysisRepo, checker)
	analysisSvc := service.NewAnalysisService(cfg, appLogger, analysisRepo, symbolRepo, redisClient.Client)
	symbolSvc := service.NewSymbolService(appLogger, symbolRepo)

	// Initialize Echo server
	e := echo.New()
	e.HideBanner = true

	apiV1 := e.Group("/api/v1")

	articleHandler := delivery.NewArticleHandler(reviewSvc, appLogger)
	articleHandler.RegisterRoutes(apiV1.Group("/articles"))

	analysisHandler := delivery.NewAnalysisHandler(analysisSvc, appLogger)
	analysisHandler.RegisterRoutes(apiV1.Group("/analyses"))

	symbolHandler := delivery.NewSymbolHandler(symbolSvc, appLogger)
	symbolHandler.RegisterRoutes(apiV1.Group("/symbols"))

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop() // trigger shutdown
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Server exiting")
}

func main() {
	rootCmd := &cobra.Command{Use: "review-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-review.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing review-service CLI: %s\n", err)
		os.Exit(1)
	}
}
