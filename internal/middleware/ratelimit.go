package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterConfig はレート制限の設定を保持する。
type RateLimiterConfig struct {
	GeneralRate     rate.Limit    // API全般のレート（req/sec）。120/60 = 2 req/sec
	GeneralBurst    int           // API全般のバーストサイズ
	AuthRate        rate.Limit    // 認証エンドポイントのレート（req/sec）。10/60
	AuthBurst       int           // 認証エンドポイントのバーストサイズ
	CleanupInterval time.Duration // 期限切れエントリのクリーンアップ間隔
}

// DefaultRateLimiterConfig はデフォルトのレート制限設定を返す。
// 要件: API全般 120 req/min/user、認証エンドポイント 10 req/min/IP
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     rate.Limit(120.0 / 60.0), // 2 req/sec
		GeneralBurst:    120,
		AuthRate:        rate.Limit(10.0 / 60.0), // ~0.167 req/sec
		AuthBurst:       10,
		CleanupInterval: 5 * time.Minute,
	}
}

// keyedLimiter はキーごとのレートリミッターとアクセス時刻を保持する。
type keyedLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter はキーごとのレート制限を管理する。
// 認証済みAPIはユーザーID単位、認証エンドポイントは接続元IP単位で制限する。
type RateLimiter struct {
	config RateLimiterConfig

	generalMu       sync.RWMutex
	generalLimiters map[string]*keyedLimiter

	authMu       sync.RWMutex
	authLimiters map[string]*keyedLimiter

	stopCh chan struct{}
}

// NewRateLimiter は新しいRateLimiterを生成する。
// バックグラウンドで期限切れエントリのクリーンアップを開始する。
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	rl := &RateLimiter{
		config:          config,
		generalLimiters: make(map[string]*keyedLimiter),
		authLimiters:    make(map[string]*keyedLimiter),
		stopCh:          make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop はクリーンアップのバックグラウンドゴルーチンを停止する。
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

// GeneralMiddleware はAPI全般のレート制限ミドルウェアを返す。
// リクエストコンテキストにユーザーIDが含まれている必要がある（SessionMiddlewareの後に配置）。
func (rl *RateLimiter) GeneralMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := UserIDFromContext(r.Context())
			if err != nil {
				WriteError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			limiter := rl.getOrCreate(&rl.generalMu, rl.generalLimiters, userID, rl.config.GeneralRate, rl.config.GeneralBurst)

			if !limiter.Allow() {
				WriteError(w, http.StatusTooManyRequests, "Too many requests")
				slog.Warn("rate limit exceeded",
					slog.String("user_id", userID),
					slog.String("limit_type", "general"),
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AuthMiddleware は認証エンドポイント専用のレート制限ミドルウェアを返す。
// セッション確立前のリクエストを扱うため、接続元IPをキーにする。
func (rl *RateLimiter) AuthMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)

			limiter := rl.getOrCreate(&rl.authMu, rl.authLimiters, ip, rl.config.AuthRate, rl.config.AuthBurst)

			if !limiter.Allow() {
				WriteError(w, http.StatusTooManyRequests, "Too many requests")
				slog.Warn("rate limit exceeded",
					slog.String("ip", ip),
					slog.String("limit_type", "auth"),
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GeneralLimiterCount は現在管理されているAPI全般リミッターのエントリ数を返す。
// テストおよびメトリクス用。
func (rl *RateLimiter) GeneralLimiterCount() int {
	rl.generalMu.RLock()
	defer rl.generalMu.RUnlock()
	return len(rl.generalLimiters)
}

// AuthLimiterCount は現在管理されている認証リミッターのエントリ数を返す。
// テストおよびメトリクス用。
func (rl *RateLimiter) AuthLimiterCount() int {
	rl.authMu.RLock()
	defer rl.authMu.RUnlock()
	return len(rl.authLimiters)
}

// getOrCreate はキーのリミッターを取得または作成する。
func (rl *RateLimiter) getOrCreate(mu *sync.RWMutex, limiters map[string]*keyedLimiter, key string, r rate.Limit, burst int) *rate.Limiter {
	mu.RLock()
	kl, exists := limiters[key]
	mu.RUnlock()

	if exists {
		mu.Lock()
		kl.lastAccess = time.Now()
		mu.Unlock()
		return kl.limiter
	}

	mu.Lock()
	defer mu.Unlock()

	// ダブルチェック
	if kl, exists := limiters[key]; exists {
		kl.lastAccess = time.Now()
		return kl.limiter
	}

	limiter := rate.NewLimiter(r, burst)
	limiters[key] = &keyedLimiter{
		limiter:    limiter,
		lastAccess: time.Now(),
	}

	return limiter
}

// clientIP は接続元IPアドレスを返す。ポート部は取り除く。
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// cleanupLoop はバックグラウンドで期限切れエントリを定期的にクリーンアップする。
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup は最終アクセス時刻がCleanupIntervalの2倍を超えたエントリを削除する。
func (rl *RateLimiter) cleanup() {
	ttl := rl.config.CleanupInterval * 2
	now := time.Now()

	rl.generalMu.Lock()
	for key, kl := range rl.generalLimiters {
		if now.Sub(kl.lastAccess) > ttl {
			delete(rl.generalLimiters, key)
		}
	}
	rl.generalMu.Unlock()

	rl.authMu.Lock()
	for key, kl := range rl.authLimiters {
		if now.Sub(kl.lastAccess) > ttl {
			delete(rl.authLimiters, key)
		}
	}
	rl.authMu.Unlock()
}
