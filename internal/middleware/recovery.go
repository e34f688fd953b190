package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// NewRecoveryMiddleware はハンドラー内のpanicを捕捉して500を返す
// ミドルウェアを生成する。スタックトレースは構造化ログに残す。
// ミドルウェアチェーンの最外周に置く。
func NewRecoveryMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					slog.Error("panic recovered",
						slog.Any("panic", rec),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
						slog.String("stack", string(debug.Stack())),
					)
					http.Error(w, "internal server error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
