package middleware

import (
	"net/http"
	"net/url"
	"strings"
)

// 認証が必要なページパス。"/"は完全一致、それ以外はプレフィックス一致。
var protectedPaths = []string{"/", "/interview", "/profile", "/feedback"}

// 未認証ユーザー専用のページパス。完全一致のみ。
var authPaths = []string{"/signin", "/signup"}

// NewRouteGuardMiddleware はページナビゲーションのルートガードを返す。
// パスの静的分類とセッションCookieの有無のみで判定する純粋な関数で、
// Cookie値の検証は行わない（検証はAPI層でIDプロバイダーが行う）。
//
// 判定表:
//   - セッションなし × 保護パス     → サインインへリダイレクト（元パスをcallbackUrlに保持）
//   - セッションなし × その他       → 通過
//   - セッションあり × 認証専用パス → ホームへリダイレクト
//   - セッションあり × その他       → 通過
func NewRouteGuardMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			pathname := r.URL.Path

			hasSession := false
			if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
				hasSession = true
			}

			if !hasSession && isProtectedPath(pathname) {
				redirectURL := "/signin?callbackUrl=" + url.QueryEscape(pathname)
				http.Redirect(w, r, redirectURL, http.StatusTemporaryRedirect)
				return
			}

			if hasSession && isAuthPath(pathname) {
				http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// isProtectedPath はパスが保護パスに分類されるかを返す。
func isProtectedPath(pathname string) bool {
	for _, p := range protectedPaths {
		if pathname == p || strings.HasPrefix(pathname, p+"/") {
			return true
		}
	}
	return false
}

// isAuthPath はパスが未認証ユーザー専用パスに分類されるかを返す。
func isAuthPath(pathname string) bool {
	for _, p := range authPaths {
		if pathname == p {
			return true
		}
	}
	return false
}
