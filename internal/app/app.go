package app

import (
	"context"
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

	"github.com/hitoshi/prepview/internal/auth"
	"github.com/hitoshi/prepview/internal/call"
	"github.com/hitoshi/prepview/internal/config"
	"github.com/hitoshi/prepview/internal/database"
	"github.com/hitoshi/prepview/internal/handler"
	"github.com/hitoshi/prepview/internal/identity"
	"github.com/hitoshi/prepview/internal/interview"
	"github.com/hitoshi/prepview/internal/logger"
	"github.com/hitoshi/prepview/internal/metrics"
	"github.com/hitoshi/prepview/internal/middleware"
	"github.com/hitoshi/prepview/internal/repository"
	"github.com/hitoshi/prepview/internal/voice"
	"github.com/hitoshi/prepview/internal/worker/cleanup"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
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

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	switch cmd {
	case CommandServe:
		return runServe(cfg)
	case CommandWorker:
		return runWorker(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 3. リポジトリの初期化
	profileRepo := repository.NewPostgresProfileRepo(db)
	interviewRepo := repository.NewPostgresInterviewRepo(db)
	transcriptRepo := repository.NewPostgresTranscriptRepo(db)

	// 4. IDプロバイダークライアントの初期化
	identityClient := identityClientFromConfig(cfg)
	identityClient.SetLatencyRecorder(collector)

	// 5. ドメインサービスの初期化
	authService := auth.NewService(identityClient, profileRepo, auth.ServiceConfig{
		SessionMaxAge: cfg.SessionMaxAge,
	})
	interviewService := interview.NewService(interviewRepo)

	// 6. 通話セッションホストの初期化
	callHost := call.NewHost(call.HostConfig{
		Voice: voice.ClientConfig{
			URL:         cfg.VoiceAPIURL,
			APIKey:      cfg.VoiceAPIKey,
			DialTimeout: cfg.VoiceDialTimeout,
		},
		WorkflowID:        cfg.VoiceWorkflowID,
		SpeakingThreshold: cfg.SpeakingThreshold,
	}, transcriptRepo, slog.Default())

	// 7. ルーターの構築
	rateLimiterCfg := middleware.RateLimiterConfig{
		GeneralRate:     rate.Limit(float64(cfg.RateLimitGeneral) / 60.0),
		GeneralBurst:    cfg.RateLimitGeneral,
		AuthRate:        rate.Limit(float64(cfg.RateLimitAuth) / 60.0),
		AuthBurst:       cfg.RateLimitAuth,
		CleanupInterval: 5 * time.Minute,
	}

	deps := &handler.RouterDeps{
		SessionVerifier:   authService,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       middleware.NewRateLimiter(rateLimiterCfg),
		CSRFConfig: middleware.CSRFConfig{
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
		},

		AuthService: authService,
		AuthConfig: handler.AuthHandlerConfig{
			CookieDomain:  cfg.CookieDomain,
			CookieSecure:  cfg.CookieSecure,
			SessionMaxAge: int(cfg.SessionMaxAge.Seconds()),
		},

		InterviewService: interviewService,

		CallHost: callHost,

		HealthChecker: db,
		Gatherer:      registry,
		Collector:     collector,
		Logger:        slog.Default(),
	}

	router := handler.NewRouter(deps)

	// 8. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
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

// runWorker はワーカーモードで起動する。
// DB接続を開き、保持期限切れデータのクリーンアップジョブを日次で実行する。
// SIGINTまたはSIGTERMシグナルを受信するとシャットダウンする。
func runWorker(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established (worker)")

	// 2. クリーンアップジョブの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	cleanupJob := cleanup.NewCleanupJob(db, slog.Default())
	cleanupJob.TranscriptRetentionDays = cfg.TranscriptRetentionDays
	cleanupJob.DraftRetentionDays = cfg.DraftRetentionDays
	cleanupJob.SetMetrics(collector)

	// グレースフルシャットダウンのためのシグナルハンドリング
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		slog.Info("shutting down worker...")
		cancel()
	}()

	slog.Info("worker starting",
		slog.Int("transcript_retention_days", cfg.TranscriptRetentionDays),
		slog.Int("draft_retention_days", cfg.DraftRetentionDays),
	)

	// クリーンアップジョブを日次で実行（起動直後に1回実行）
	if err := cleanupJob.Run(ctx); err != nil {
		slog.Error("cleanup job failed", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("worker stopped gracefully")
			return nil
		case <-ticker.C:
			if err := cleanupJob.Run(ctx); err != nil {
				slog.Error("cleanup job failed", slog.String("error", err.Error()))
			}
		}
	}
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// identityClientFromConfig はIDプロバイダーのRESTクライアントを構築する。
func identityClientFromConfig(cfg *config.Config) *identity.Client {
	httpClient := &http.Client{Timeout: 10 * time.Second}
	return identity.NewClient(httpClient, slog.Default(), cfg.IdentityAPIURL, cfg.IdentityAPIKey)
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
