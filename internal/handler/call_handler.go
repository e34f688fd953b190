package handler

import (
	"net/http"

	"github.com/hitoshi/prepview/internal/middleware"
)

// CallHostInterface は通話ハンドラーが必要とするセッションホストの操作。
type CallHostInterface interface {
	SetupWorkflowConfigured() bool
}

// CallHandler は通話セッション関連のHTTPハンドラー。
type CallHandler struct {
	host CallHostInterface
}

// NewCallHandler はCallHandlerを生成する。
func NewCallHandler(host CallHostInterface) *CallHandler {
	return &CallHandler{host: host}
}

// GetCallConfig は通話機能の提供状況を返す。フロントエンドは
// setupWorkflowConfigured が false の環境ではセットアップ通話の
// 導線を表示しない。
// GET /api/call/config
func (h *CallHandler) GetCallConfig(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"success":                 true,
		"setupWorkflowConfigured": h.host.SetupWorkflowConfigured(),
	})
}
