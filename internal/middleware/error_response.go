package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/hitoshi/prepview/internal/model"
)

// WriteJSON はJSONレスポンスを書き込む。
func WriteJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// WriteError は統一エラーフォーマット {"error": message} でレスポンスを書き込む。
// すべてのAPIエンドポイントで一貫したエラーレスポンスを提供する。
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, map[string]string{"error": message})
}

// WriteAPIError はAPIErrorのステータスとメッセージでレスポンスを書き込む。
func WriteAPIError(w http.ResponseWriter, apiErr *model.APIError) {
	WriteError(w, apiErr.Status, apiErr.Message)
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteError(w, http.StatusInternalServerError, "Internal server error")
}
