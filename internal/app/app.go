// Package app はアプリケーションの起動と依存関係のワイヤリングを提供する。
package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/ashokvarma/ashokworld/internal/config"
	"github.com/ashokvarma/ashokworld/internal/content"
	"github.com/ashokvarma/ashokworld/internal/database"
	"github.com/ashokvarma/ashokworld/internal/handler"
	"github.com/ashokvarma/ashokworld/internal/logger"
	"github.com/ashokvarma/ashokworld/internal/metrics"
	"github.com/ashokvarma/ashokworld/internal/middleware"
	"github.com/ashokvarma/ashokworld/internal/newsletter"
	"github.com/ashokvarma/ashokworld/internal/repository"
	"github.com/ashokvarma/ashokworld/internal/view"
)

// Init はアプリケーションの初期化を行う。
// JSON構造化ログをセットアップし、環境変数からConfigを読み込む。
func Init(w io.Writer) (*config.Config, *slog.Logger) {
	log := logger.SetupDefault(w)
	return config.Load(), log
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, log := Init(w)

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("content_dir", cfg.ContentDir),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	case CommandCheck:
		return runCheck(cfg, log)
	default:
		return runServe(cfg, log)
	}
}

// runServe はAPIサーバーモードで起動する。
// コンテンツコーパスを構築し、全依存関係をワイヤリングしてHTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config, log *slog.Logger) error {
	// 1. DB接続（DATABASE_URL未設定の場合はインメモリモード）
	var db *sql.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		// 起動時に到達できなくてもサーバーは起動する。
		// 各リクエストはインメモリフォールバックで処理される。
		if err := db.Ping(); err != nil {
			slog.Warn("database unreachable at startup, requests will fall back to memory",
				slog.String("error", err.Error()),
			)
		} else {
			slog.Info("database connection established")
		}
	} else {
		slog.Warn("DATABASE_URL not set, running with in-memory stores only")
	}

	// 2. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 3. コンテンツコーパスの構築（以降不変）
	corpus := content.Load(cfg.ContentDir, log)
	collector.RecordCorpusLoad(corpus.Len(), corpus.Skipped())

	renderer := content.NewRenderer()

	// 4. リポジトリの初期化
	var viewRepo repository.ViewRepository
	var subRepo repository.SubscriberRepository
	var auditRepo repository.AuditLogRepository
	if db != nil {
		viewRepo = repository.NewPostgresViewRepo(db)
		subRepo = repository.NewPostgresSubscriberRepo(db)
		auditRepo = repository.NewPostgresAuditRepo(db)
	}

	// 5. サービス層の初期化
	viewService := view.NewService(viewRepo, repository.NewMemoryViewRepo(), cfg.StoreTimeout, collector)
	newsletterService := newsletter.NewService(
		subRepo, repository.NewMemorySubscriberRepo(), auditRepo,
		cfg.StoreTimeout, collector,
	)

	// 6. ルーターの構築
	rateLimiter := middleware.NewRateLimiter(rateLimiterConfig(cfg))
	defer rateLimiter.Stop()

	var checker handler.HealthChecker
	if db != nil {
		checker = db
	}

	router := handler.NewRouter(&handler.RouterDeps{
		Logger:            log,
		StatusRecorder:    collector,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		HealthChecker:     checker,

		ViewService:       viewService,
		NewsletterService: newsletterService,
		Corpus:            corpus,
		Renderer:          renderer,
	})

	// 7. /metricsを同一サーバーに公開
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(registry))
	mux.Handle("/", router)

	// 8. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// rateLimiterConfig はConfigのreq/min設定をRateLimiterConfigに変換する。
func rateLimiterConfig(cfg *config.Config) middleware.RateLimiterConfig {
	rlCfg := middleware.DefaultRateLimiterConfig()
	if cfg.RateLimitGeneral > 0 {
		rlCfg.GeneralRate = rateFromPerMinute(cfg.RateLimitGeneral)
		rlCfg.GeneralBurst = cfg.RateLimitGeneral
	}
	if cfg.RateLimitSubscribe > 0 {
		rlCfg.SubscribeRate = rateFromPerMinute(cfg.RateLimitSubscribe)
		rlCfg.SubscribeBurst = cfg.RateLimitSubscribe
	}
	return rlCfg
}

// rateFromPerMinute はreq/minをreq/secのレートに変換する。
func rateFromPerMinute(perMinute int) rate.Limit {
	return rate.Limit(float64(perMinute) / 60.0)
}

// runMigrate はデータベースマイグレーションを実行する。
func runMigrate(cfg *config.Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required for migrate")
	}

	slog.Info("running migrations")
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return err
	}
	slog.Info("migrations applied")
	return nil
}

// runCheck はコンテンツコーパスを構築し、検証結果を報告する。
// スキップされたファイルがある場合はエラーを返す（CIでの事前検証用）。
func runCheck(cfg *config.Config, log *slog.Logger) error {
	corpus := content.Load(cfg.ContentDir, log)

	for category, count := range corpus.GetPostCountByCategory() {
		slog.Info("category summary",
			slog.String("category", string(category)),
			slog.Int("posts", count),
		)
	}

	if corpus.Skipped() > 0 {
		return fmt.Errorf("content check failed: %d file(s) skipped", corpus.Skipped())
	}

	slog.Info("content check passed", slog.Int("posts", corpus.Len()))
	return nil
}

// runHealthcheck はローカルのAPIサーバーに対してヘルスチェックを実行する。
func runHealthcheck(port string) error {
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get("http://localhost:" + port + "/healthz")
	if err != nil {
		return fmt.Errorf("healthcheck failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("healthcheck failed: status %d", resp.StatusCode)
	}

	return nil
}
