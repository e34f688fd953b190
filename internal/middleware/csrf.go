package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
)

const (
	// csrfCookieName はCSRFトークンを保持するCookieの名前。
	// フロントエンドがヘッダーへ載せ替えるため、HttpOnlyではない。
	csrfCookieName = "csrf_token"

	// csrfHeaderName は状態変更リクエストでトークンを運ぶヘッダー名。
	csrfHeaderName = "X-CSRF-Token"

	// csrfCookieMaxAge はトークンCookieの寿命（24時間）。
	// セッションCookie（5日）より短く、取得エンドポイントで再発行される。
	csrfCookieMaxAge = 86400
)

// CSRFConfig はCSRFミドルウェアの設定。
type CSRFConfig struct {
	CookieSecure bool
	CookieDomain string
}

// NewCSRFMiddleware はダブルサブミットCookie方式のCSRF検証ミドルウェアを返す。
// 安全なメソッド（GET, HEAD, OPTIONS）は検証せず、未設定ならトークンCookieを
// 配布する。状態変更メソッドはCookieとヘッダーのトークン一致を必須とする。
// 保護APIグループにのみ適用し、認証エンドポイントには適用しない。
func NewCSRFMiddleware(config CSRFConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isSafeMethod(r.Method) {
				ensureCSRFCookie(w, r, config)
				next.ServeHTTP(w, r)
				return
			}

			cookieToken, err := r.Cookie(csrfCookieName)
			if err != nil || cookieToken.Value == "" {
				rejectCSRF(w, r, "missing cookie token")
				return
			}

			headerToken := r.Header.Get(csrfHeaderName)
			if headerToken == "" {
				rejectCSRF(w, r, "missing header token")
				return
			}

			if cookieToken.Value != headerToken {
				rejectCSRF(w, r, "token mismatch")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// NewCSRFTokenHandler はCSRFトークン取得エンドポイントのハンドラーを返す。
// GET /api/csrf-token
// 既存のトークンCookieがあればその値を返し、なければ生成して配布する。
func NewCSRFTokenHandler(config CSRFConfig) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var token string

		cookie, err := r.Cookie(csrfCookieName)
		if err == nil && cookie.Value != "" {
			token = cookie.Value
		} else {
			token, err = generateCSRFToken()
			if err != nil {
				slog.Error("failed to generate CSRF token", slog.String("error", err.Error()))
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}
			setCSRFCookie(w, config, token)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"token": token,
		})
	})
}

// rejectCSRF は検証失敗を記録し403を返す。失敗理由はログにのみ残し、
// レスポンス本文では区別しない。
func rejectCSRF(w http.ResponseWriter, r *http.Request, reason string) {
	slog.Warn("CSRF validation failed: "+reason,
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)
	http.Error(w, "CSRF token validation failed", http.StatusForbidden)
}

// isSafeMethod はHTTPメソッドが読み取り専用かどうかを判定する。
func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}

// ensureCSRFCookie はトークンCookie未設定のリクエストに対して配布する。
// 生成に失敗してもリクエスト自体は通す。
func ensureCSRFCookie(w http.ResponseWriter, r *http.Request, config CSRFConfig) {
	if _, err := r.Cookie(csrfCookieName); err == nil {
		return
	}

	token, err := generateCSRFToken()
	if err != nil {
		slog.Error("failed to generate CSRF token", slog.String("error", err.Error()))
		return
	}
	setCSRFCookie(w, config, token)
}

// setCSRFCookie はトークンCookieを設定する。セッションCookieと異なり
// JavaScriptから読み取れる必要があるためHttpOnlyにしない。
func setCSRFCookie(w http.ResponseWriter, config CSRFConfig, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		Domain:   config.CookieDomain,
		MaxAge:   csrfCookieMaxAge,
		HttpOnly: false,
		Secure:   config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// generateCSRFToken は32バイトの乱数から64桁の16進トークンを生成する。
func generateCSRFToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
