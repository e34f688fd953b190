package middleware

import (
	"net/http"
	"strings"
)

// HTTPMetricsRecorder はHTTPレスポンスの観測に必要なインターフェース。
type HTTPMetricsRecorder interface {
	RecordHTTPStatus(statusCode int)
	RecordAuthAttempt(operation string, success bool)
}

// NewMetricsMiddleware はレスポンスのステータスコードを記録するミドルウェアを返す。
// 認証エンドポイントへのPOSTは操作別の試行結果としても記録する。
func NewMetricsMiddleware(recorder HTTPMetricsRecorder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rec, r)

			recorder.RecordHTTPStatus(rec.statusCode)

			if operation, ok := authOperation(r); ok {
				recorder.RecordAuthAttempt(operation, rec.statusCode < 400)
			}
		})
	}
}

// authOperation はリクエストが認証操作の場合にその操作名を返す。
func authOperation(r *http.Request) (string, bool) {
	if r.Method != http.MethodPost {
		return "", false
	}
	operation, ok := strings.CutPrefix(r.URL.Path, "/api/auth/")
	if !ok || strings.Contains(operation, "/") {
		return "", false
	}
	switch operation {
	case "signup", "signin", "session":
		return operation, true
	}
	return "", false
}
