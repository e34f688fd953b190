package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/prepview/internal/metrics"
	"github.com/hitoshi/prepview/internal/middleware"
)

// HealthChecker は/healthエンドポイントが必要とする疎通確認インターフェース。
// *sql.DBがそのまま満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionVerifier   middleware.SessionVerifier
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	CSRFConfig        middleware.CSRFConfig

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// 面接レコード
	InterviewService InterviewServiceInterface

	// 通話セッション
	CallHost CallHostInterface

	// 運用系
	HealthChecker HealthChecker
	Gatherer      prometheus.Gatherer
	Collector     metrics.MetricsCollector
	Logger        *slog.Logger
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成した
// chi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → SecurityHeaders → CORS → (ルート群ごとの個別ミドルウェア)
//
// ページルートにはルートガード、保護APIルートにはセッション検証と
// 一般レート制限、資格情報エンドポイントには認証レート制限を適用する。
// 認証エンドポイントの応答契約を保つため、CSRF検証は保護APIグループに
// のみ適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	if deps.Collector != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Collector))
	}
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	interviewHandler := NewInterviewHandler(deps.InterviewService)
	pageHandler := NewPageHandler()

	// --- 運用エンドポイント ---

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if deps.HealthChecker != nil {
			if err := deps.HealthChecker.PingContext(r.Context()); err != nil {
				middleware.WriteError(w, http.StatusServiceUnavailable, "database unreachable")
				return
			}
		}
		middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	// --- 認証エンドポイント ---
	// セッション未確立でも到達可能。資格情報の総当たりを防ぐため
	// クライアントIP単位のレート制限を適用する。
	r.Route("/api/auth", func(r chi.Router) {
		r.Use(deps.RateLimiter.AuthMiddleware())

		r.Post("/signup", authHandler.Signup)
		r.Post("/signin", authHandler.Signin)
		r.Post("/session", authHandler.CreateSession)
		r.Delete("/session", authHandler.DeleteSession)
	})

	// CSRFトークン配布
	r.Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

	// --- 公開API ---
	// 面接レコードの取得はこの層では所有者チェックを行わない
	r.Get("/api/interview/{id}", interviewHandler.GetInterview)

	// --- 保護API ---
	// ミドルウェアスタック: Session → RateLimit(General) → CSRF
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionVerifier))
		r.Use(deps.RateLimiter.GeneralMiddleware())
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))

		r.Get("/api/interviews", interviewHandler.ListInterviews)

		if deps.CallHost != nil {
			callHandler := NewCallHandler(deps.CallHost)
			r.Get("/api/call/config", callHandler.GetCallConfig)
		}
	})

	// --- ページルート ---
	// セッションCookieの有無によるリダイレクト判定のみ行う
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewRouteGuardMiddleware())

		r.Get("/", pageHandler.Home)
		r.Get("/interview", pageHandler.InterviewSetup)
		r.Get("/interview/{id}", pageHandler.InterviewSession)
		r.Get("/profile", pageHandler.Profile)
		r.Get("/feedback", pageHandler.Feedback)
		r.Get("/signin", pageHandler.Signin)
		r.Get("/signup", pageHandler.Signup)
	})

	return r
}
