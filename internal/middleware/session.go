// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
)

// SessionCookieName はセッションCookieの名前。
// 値はIDプロバイダーが発行した不透明な文字列で、本システムは内容を解釈しない。
const SessionCookieName = "session"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// userIDContextKey はリクエストコンテキストにユーザーIDを格納するためのキー。
var userIDContextKey = contextKey("user_id")

// SessionVerifier はセッションCookie値の検証に必要なインターフェース。
// 検証はIDプロバイダーのみが行い、本システムはCookieの内容を解釈しない。
type SessionVerifier interface {
	VerifySession(ctx context.Context, cookie string) (string, error)
}

// NewSessionMiddleware はセッションCookieをIDプロバイダーで検証し、
// 認証済みユーザーIDをリクエストコンテキストに注入するミドルウェアを返す。
// 未認証リクエストには401 Unauthorizedを返す。
// リクエストごとに独立して検証する（プロセス内キャッシュは持たない）。
func NewSessionMiddleware(verifier SessionVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. CookieからセッションCookie値を取得
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				WriteError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			// 2. プロバイダーでセッションの有効性を検証
			userID, err := verifier.VerifySession(r.Context(), cookie.Value)
			if err != nil {
				slog.Warn("session verification failed",
					slog.String("error", err.Error()),
				)
				WriteError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			// 3. 認証済みユーザーIDをコンテキストに注入
			ctx := context.WithValue(r.Context(), userIDContextKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
// セッションミドルウェアを通過したリクエストでのみ有効。
func UserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// ContextWithUserID はコンテキストにユーザーIDを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}
