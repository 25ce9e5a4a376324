package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"errors"
	"log/slog"
	"net"
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
	"balanced-news/internal/observability/tracing"
	"balanced-news/internal/repository"

	artUC "balanced-news/internal/usecase/article"
	"balanced-news/internal/usecase/ingest"
	prefUC "balanced-news/internal/usecase/preference"
	srcUC "balanced-news/internal/usecase/source"

	"balanced-news/pkg/config"

	hhttp "balanced-news/internal/handler/http"
	harticle "balanced-news/internal/handler/http/article"
	hauth "balanced-news/internal/handler/http/auth"
	hpref "balanced-news/internal/handler/http/preference"
	"balanced-news/internal/handler/http/requestid"
	hsrc "balanced-news/internal/handler/http/source"
)

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	jwtSecret := loadJWTSecret(logger)
	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	version := getVersion()
	handler, sched := setupServer(logger, database, jwtSecret, version)

	runServer(logger, handler, sched, version)
}

// loadJWTSecret validates the token verification key at startup. Tokens are
// minted by an external identity service; this process only verifies them,
// so the two sides must share this secret.
func loadJWTSecret(logger *slog.Logger) []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		logger.Error("JWT_SECRET must be set")
		os.Exit(1)
	}
	// セキュリティ: 最小32文字（256ビット）を強制
	if len(secret) < 32 {
		logger.Error("JWT_SECRET must be at least 32 characters (256 bits)")
		os.Exit(1)
	}
	// セキュリティ: よくある弱い秘密鍵を拒否
	weakSecrets := []string{"secret", "password", "test", "admin", "default"}
	for _, weak := range weakSecrets {
		if secret == weak || secret == weak+"123" {
			logger.Error("JWT_SECRET must not be a common weak value", slog.String("weak_value", weak))
			os.Exit(1)
		}
	}
	return []byte(secret)
}

// initDatabase opens the database connection and runs migrations. The API
// process owns the schema; the worker waits for it.
func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

// getVersion returns the application version from environment or default.
func getVersion() string {
	return config.GetEnvString("VERSION", "dev")
}

// setupServer wires repositories, use cases, the trigger-only scheduler, and
// the middleware chain into the root handler.
func setupServer(logger *slog.Logger, database *sql.DB, jwtSecret []byte, version string) (http.Handler, *scheduler.Scheduler) {
	srcRepo := pgRepo.NewSourceRepo(database)
	artRepo := pgRepo.NewArticleRepo(database)

	srcSvc := &srcUC.Service{Repo: srcRepo}
	artSvc := &artUC.Service{Repo: artRepo, SourceRepo: srcRepo}
	prefSvc := &prefUC.Service{Repo: pgRepo.NewPreferenceRepo(database)}

	verifier := hauth.NewVerifier(jwtSecret, prefSvc, logger)

	// 手動トリガーで起動したパスはこのプロセス内で走る。ワーカーと同じ
	// 設定を読み、挙動を揃える。
	passMetrics := workerPkg.NewWorkerMetrics()
	passMetrics.MustRegister()
	workerConfig, err := workerPkg.LoadConfigFromEnv(logger, passMetrics)
	if err != nil {
		logger.Error("failed to load ingestion configuration", slog.Any("error", err))
		os.Exit(1)
	}

	ingestSvc := setupIngestService(logger, srcRepo, artRepo, workerConfig)

	// Start は呼ばない。API プロセスではトリガー専用。
	sched := scheduler.New(&ingestSvc, passMetrics, scheduler.Config{
		PassTimeout: workerConfig.PassTimeout,
	})

	// レート制限: 手動トリガーは1分間に10リクエストまで
	triggerLimiter := hhttp.NewRateLimiter(10, 1*time.Minute)

	mux := http.NewServeMux()
	harticle.Register(mux, artSvc, verifier, logger)
	hsrc.Register(mux, srcSvc, artSvc, sched, triggerLimiter)
	hpref.Register(mux, prefSvc, verifier)

	// ヘルスチェックとメトリクスは認証不要
	mux.Handle("GET /health", &hhttp.HealthHandler{DB: database, Version: version})
	mux.Handle("GET /ready", &hhttp.ReadyHandler{DB: database})
	mux.Handle("GET /live", &hhttp.LiveHandler{})
	mux.Handle("GET /metrics", hhttp.MetricsHandler())

	return applyMiddleware(logger, mux), sched
}

// setupIngestService wires the feed fetcher, paywall probe, and content
// extraction strategy into the ingestion pipeline, mirroring the worker.
func setupIngestService(logger *slog.Logger, srcRepo repository.SourceRepository, artRepo repository.ArticleRepository, cfg *workerPkg.WorkerConfig) ingest.Service {
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

	return ingest.NewService(srcRepo, artRepo, feedFetcher, detector, extractor, ingest.Config{
		FeedWorkers:  cfg.FeedWorkers,
		EntryWorkers: cfg.EntryWorkers,
	})
}

// applyMiddleware wraps the handler with the middleware chain.
// Order: CORS → Request ID → Tracing → Recovery → Logging → Body Limit →
// Input Validation → Timeout → Metrics → routes.
func applyMiddleware(logger *slog.Logger, handler http.Handler) http.Handler {
	corsConfig := hhttp.LoadCORSConfig()
	logger.Info("CORS enabled",
		slog.Any("allowed_origins", corsConfig.AllowedOrigins),
		slog.Any("allowed_methods", corsConfig.AllowedMethods),
		slog.Int("max_age", corsConfig.MaxAge))

	// Apply in reverse order (innermost to outermost)
	chain := handler
	chain = hhttp.MetricsMiddleware(chain)
	chain = hhttp.Timeout(config.GetEnvDuration("HTTP_TIMEOUT", 30*time.Second))(chain)
	chain = hhttp.InputValidation()(chain)
	chain = hhttp.LimitRequestBody(1 << 20)(chain) // 1MB limit
	chain = hhttp.Logging(logger)(chain)
	chain = hhttp.Recover(logger)(chain)
	chain = tracing.Middleware(chain)
	chain = requestid.Middleware(chain)
	chain = hhttp.CORS(corsConfig)(chain)

	return chain
}

// runServer starts the HTTP server and handles graceful shutdown. Triggered
// ingestion passes run inside this process, so shutdown also drains the
// scheduler.
func runServer(logger *slog.Logger, handler http.Handler, sched *scheduler.Scheduler, version string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := &http.Server{
		Addr:              ":8080",
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", ":8080"),
			slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}

	// 処理中のパスには猶予を与えるが、無期限には待たない
	drainCtx, drainCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer drainCancel()
	if err := sched.Stop(drainCtx); err != nil {
		logger.Error("scheduler shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
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
