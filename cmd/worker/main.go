package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	pgRepo "balanced-news/internal/infra/adapter/persistence/postgres"
	"balanced-news/internal/infra/db"
	"balanced-news/internal/infra/fetcher"
	"balanced-news/internal/infra/paywall"
	"balanced-news/internal/infra/scheduler"
	"balanced-news/internal/infra/scraper"
	workerPkg "balanced-news/internal/infra/worker"
	"balanced-news/internal/observability/logging"
	"balanced-news/internal/usecase/ingest"
)

// waitForMigrations blocks until the schema exists. The API process owns the
// migrations; the worker only polls for their effect.
func waitForMigrations(logger *slog.Logger, db *sql.DB) {
	const probe = "SELECT 1 FROM sources LIMIT 1"
	for i := 0; i < 10; i++ {
		if _, err := db.Exec(probe); err == nil {
			return
		}
		logger.Info("waiting for migrations, retrying in 3s", slog.Int("attempt", i+1))
		time.Sleep(3 * time.Second)
	}
	logger.Error("migrations did not complete in time")
	os.Exit(1)
}

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load worker configuration (fail-open strategy)
	workerMetrics := workerPkg.NewWorkerMetrics()
	workerMetrics.MustRegister()
	workerConfig, err := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Duration("pass_timeout", workerConfig.PassTimeout),
		slog.Int("feed_workers", workerConfig.FeedWorkers),
		slog.Int("entry_workers", workerConfig.EntryWorkers),
		slog.Int("health_port", workerConfig.HealthPort))

	// Health, readiness, and metrics share one listener.
	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()
	logger.Info("health server started", slog.String("addr", healthAddr))

	svc := setupIngestService(logger, database, workerConfig)

	loc, err := time.LoadLocation(workerConfig.Timezone)
	if err != nil {
		// Validation already fell back on bad input, so this should not happen.
		logger.Error("invalid timezone, using UTC",
			slog.String("timezone", workerConfig.Timezone),
			slog.Any("error", err))
		loc = time.UTC
	}

	sched := scheduler.New(&svc, workerMetrics, scheduler.Config{
		CronSpec:    workerConfig.CronSchedule,
		Location:    loc,
		PassTimeout: workerConfig.PassTimeout,
	})
	if err := sched.Start(); err != nil {
		logger.Error("failed to start scheduler", slog.Any("error", err))
		os.Exit(1)
	}

	healthServer.SetReady(true)
	logger.Info("worker started",
		slog.String("schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down worker...")

	healthServer.SetReady(false)
	cancel()

	// Let an in-flight pass finish, but not indefinitely.
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	if err := sched.Stop(stopCtx); err != nil {
		logger.Error("scheduler shutdown failed", slog.Any("error", err))
	}
	logger.Info("worker stopped")
}

// initDatabase opens the connection pool and waits for migrations to land.
func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	waitForMigrations(logger, database)
	return database
}

// setupIngestService wires the feed fetcher, paywall probe, and content
// extraction strategy into the ingestion pipeline.
func setupIngestService(logger *slog.Logger, database *sql.DB, cfg *workerPkg.WorkerConfig) ingest.Service {
	srcRepo := pgRepo.NewSourceRepo(database)
	artRepo := pgRepo.NewArticleRepo(database)

	feedFetcher := scraper.NewRSSFetcher(createHTTPClient())

	fetchConfig, err := fetcher.LoadConfigFromEnv()
	if err != nil {
		logger.Error("failed to load content fetch configuration, using defaults",
			slog.Any("error", err))
		fetchConfig = fetcher.DefaultConfig()
	}

	// ペイウォール判定と本文抽出は同じ送信レート予算を分け合う
	limiter := fetcher.NewLimiter(fetchConfig)
	detector := paywall.NewDetector(fetchConfig, limiter)
	extractor := fetcher.StrategyFromEnv(fetchConfig, limiter)

	logger.Info("content fetching configured",
		slog.Duration("timeout", fetchConfig.Timeout),
		slog.Int64("max_body_size", fetchConfig.MaxBodySize),
		slog.Float64("rate_limit", fetchConfig.RateLimit))

	return ingest.NewService(srcRepo, artRepo, feedFetcher, detector, extractor, ingest.Config{
		FeedWorkers:  cfg.FeedWorkers,
		EntryWorkers: cfg.EntryWorkers,
	})
}

// createHTTPClient builds the feed polling client with connection pooling.
// TLS 1.2+ is enforced.
func createHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
}
