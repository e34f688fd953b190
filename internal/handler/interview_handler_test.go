package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/prepview/internal/interview"
	"github.com/hitoshi/prepview/internal/middleware"
	"github.com/hitoshi/prepview/internal/model"
)

type mockInterviewService struct {
	getInterviewFn func(ctx context.Context, id string) (*model.Interview, error)
	listByUserFn   func(ctx context.Context, userID string) ([]*model.Interview, error)
}

func (m *mockInterviewService) GetInterview(ctx context.Context, id string) (*model.Interview, error) {
	return m.getInterviewFn(ctx, id)
}

func (m *mockInterviewService) ListByUser(ctx context.Context, userID string) ([]*model.Interview, error) {
	return m.listByUserFn(ctx, userID)
}

func newGetInterviewRequest(id string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/interview/"+id, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestGetInterview_Success(t *testing.T) {
	service := &mockInterviewService{
		getInterviewFn: func(ctx context.Context, id string) (*model.Interview, error) {
			if id != "intv-1" {
				t.Errorf("id = %q, want %q", id, "intv-1")
			}
			return &model.Interview{ID: "intv-1", Role: "Frontend Engineer", UserID: "uid-1"}, nil
		},
	}
	h := NewInterviewHandler(service)

	w := httptest.NewRecorder()
	h.GetInterview(w, newGetInterviewRequest("intv-1"))

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	body := decodeBody(t, resp)
	if body["success"] != true {
		t.Error("success = false, want true")
	}
	record := body["interview"].(map[string]any)
	if record["role"] != "Frontend Engineer" {
		t.Errorf("interview.role = %v, want %q", record["role"], "Frontend Engineer")
	}
}

func TestGetInterview_NotFound_Returns404(t *testing.T) {
	service := &mockInterviewService{
		getInterviewFn: func(ctx context.Context, id string) (*model.Interview, error) {
			return nil, interview.ErrNotFound
		},
	}
	h := NewInterviewHandler(service)

	w := httptest.NewRecorder()
	h.GetInterview(w, newGetInterviewRequest("missing"))

	resp := w.Result()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
	body := decodeBody(t, resp)
	if body["success"] != false {
		t.Error("success = true, want false")
	}
	if body["error"] != "Interview not found" {
		t.Errorf("error = %v, want %q", body["error"], "Interview not found")
	}
}

func TestGetInterview_RepositoryError_Returns500(t *testing.T) {
	service := &mockInterviewService{
		getInterviewFn: func(ctx context.Context, id string) (*model.Interview, error) {
			return nil, errors.New("connection refused")
		},
	}
	h := NewInterviewHandler(service)

	w := httptest.NewRecorder()
	h.GetInterview(w, newGetInterviewRequest("intv-1"))

	resp := w.Result()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusInternalServerError)
	}
	if got := decodeBody(t, resp)["error"]; got != "Internal server error" {
		t.Errorf("error = %v, want %q", got, "Internal server error")
	}
}

func TestListInterviews_ReturnsUserRecords(t *testing.T) {
	service := &mockInterviewService{
		listByUserFn: func(ctx context.Context, userID string) ([]*model.Interview, error) {
			if userID != "uid-1" {
				t.Errorf("userID = %q, want %q", userID, "uid-1")
			}
			return []*model.Interview{
				{ID: "intv-1", UserID: userID},
				{ID: "intv-2", UserID: userID},
			}, nil
		},
	}
	h := NewInterviewHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/api/interviews", nil)
	req = req.WithContext(middleware.ContextWithUserID(req.Context(), "uid-1"))
	w := httptest.NewRecorder()
	h.ListInterviews(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	body := decodeBody(t, resp)
	records := body["interviews"].([]any)
	if len(records) != 2 {
		t.Errorf("len(interviews) = %d, want 2", len(records))
	}
}

func TestListInterviews_NoRecords_ReturnsEmptyArray(t *testing.T) {
	service := &mockInterviewService{
		listByUserFn: func(ctx context.Context, userID string) ([]*model.Interview, error) {
			return nil, nil
		},
	}
	h := NewInterviewHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/api/interviews", nil)
	req = req.WithContext(middleware.ContextWithUserID(req.Context(), "uid-1"))
	w := httptest.NewRecorder()
	h.ListInterviews(w, req)

	resp := w.Result()
	body := decodeBody(t, resp)
	// nilではなく空配列でシリアライズされること
	records, ok := body["interviews"].([]any)
	if !ok {
		t.Fatalf("interviews = %v, want array", body["interviews"])
	}
	if len(records) != 0 {
		t.Errorf("len(interviews) = %d, want 0", len(records))
	}
}

func TestListInterviews_WithoutSession_Returns401(t *testing.T) {
	h := NewInterviewHandler(&mockInterviewService{})

	req := httptest.NewRequest(http.MethodGet, "/api/interviews", nil)
	w := httptest.NewRecorder()
	h.ListInterviews(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
}
