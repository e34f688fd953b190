package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/prepview/internal/interview"
	"github.com/hitoshi/prepview/internal/middleware"
	"github.com/hitoshi/prepview/internal/model"
)

// InterviewServiceInterface は面接ハンドラーが必要とするサービスインターフェース。
type InterviewServiceInterface interface {
	GetInterview(ctx context.Context, id string) (*model.Interview, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Interview, error)
}

// InterviewHandler は面接レコード関連のHTTPハンドラー。
type InterviewHandler struct {
	service InterviewServiceInterface
}

// NewInterviewHandler はInterviewHandlerを生成する。
func NewInterviewHandler(service InterviewServiceInterface) *InterviewHandler {
	return &InterviewHandler{service: service}
}

// GetInterview は指定IDの面接レコードを返す。
// この層では所有者チェックを行わない。
// GET /api/interview/{id}
func (h *InterviewHandler) GetInterview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	record, err := h.service.GetInterview(r.Context(), id)
	if err != nil {
		if errors.Is(err, interview.ErrNotFound) {
			middleware.WriteJSON(w, http.StatusNotFound, map[string]any{
				"success": false,
				"error":   "Interview not found",
			})
			return
		}
		slog.Error("failed to get interview",
			slog.String("interview_id", id),
			slog.String("error", err.Error()))
		middleware.WriteJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   "Internal server error",
		})
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"interview": record,
	})
}

// ListInterviews はサインイン中ユーザーの面接レコード一覧を返す。
// GET /api/interviews
func (h *InterviewHandler) ListInterviews(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	records, err := h.service.ListByUser(r.Context(), userID)
	if err != nil {
		slog.Error("failed to list interviews",
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	if records == nil {
		records = []*model.Interview{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"interviews": records,
	})
}
