package interview

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/prepview/internal/model"
)

type mockInterviewRepo struct {
	findByIDFn     func(ctx context.Context, id string) (*model.Interview, error)
	listByUserIDFn func(ctx context.Context, userID string) ([]*model.Interview, error)
}

func (m *mockInterviewRepo) FindByID(ctx context.Context, id string) (*model.Interview, error) {
	return m.findByIDFn(ctx, id)
}

func (m *mockInterviewRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Interview, error) {
	return m.listByUserIDFn(ctx, userID)
}

func TestGetInterview_ReturnsRecord(t *testing.T) {
	repo := &mockInterviewRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Interview, error) {
			return &model.Interview{ID: id, Role: "Backend Engineer"}, nil
		},
	}
	service := NewService(repo)

	record, err := service.GetInterview(context.Background(), "intv-1")
	if err != nil {
		t.Fatalf("GetInterview() error = %v", err)
	}
	if record.ID != "intv-1" {
		t.Errorf("ID = %q, want %q", record.ID, "intv-1")
	}
}

func TestGetInterview_Absent_ReturnsNotFound(t *testing.T) {
	repo := &mockInterviewRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Interview, error) {
			return nil, nil
		},
	}
	service := NewService(repo)

	_, err := service.GetInterview(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetInterview() error = %v, want ErrNotFound", err)
	}
}

func TestGetInterview_RepoError_Wrapped(t *testing.T) {
	repoErr := errors.New("connection reset")
	repo := &mockInterviewRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Interview, error) {
			return nil, repoErr
		},
	}
	service := NewService(repo)

	_, err := service.GetInterview(context.Background(), "intv-1")
	if !errors.Is(err, repoErr) {
		t.Errorf("GetInterview() error = %v, want wrapped repo error", err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("repo error must not be reported as not found")
	}
}

func TestListByUser_ReturnsRecords(t *testing.T) {
	repo := &mockInterviewRepo{
		listByUserIDFn: func(ctx context.Context, userID string) ([]*model.Interview, error) {
			return []*model.Interview{{ID: "intv-2"}, {ID: "intv-1"}}, nil
		},
	}
	service := NewService(repo)

	records, err := service.ListByUser(context.Background(), "uid-1")
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(records) != 2 {
		t.Errorf("len(records) = %d, want 2", len(records))
	}
}
