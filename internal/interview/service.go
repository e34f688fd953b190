// Package interview は面接レコードへの読み取りアクセスを提供する。
// レコードは外部の生成プロセスが作成するため、本システムは取得と一覧のみ行う。
package interview

import (
	"context"
	"errors"
	"fmt"

	"github.com/hitoshi/prepview/internal/model"
	"github.com/hitoshi/prepview/internal/repository"
)

// ErrNotFound は指定IDの面接レコードが存在しないことを表す。
var ErrNotFound = errors.New("interview: not found")

// Service は面接レコードのゲートウェイ。
type Service struct {
	repo repository.InterviewRepository
}

// NewService はServiceを生成する。
func NewService(repo repository.InterviewRepository) *Service {
	return &Service{repo: repo}
}

// GetInterview は指定IDの面接レコードを取得する。
// この層では所有者チェックを行わない。APIルートではセッションミドルウェアが
// 上流でアクセスを制御する。
func (s *Service) GetInterview(ctx context.Context, id string) (*model.Interview, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find interview: %w", err)
	}
	if record == nil {
		return nil, ErrNotFound
	}
	return record, nil
}

// ListByUser はユーザーの面接レコード一覧を作成日時の降順で返す。
func (s *Service) ListByUser(ctx context.Context, userID string) ([]*model.Interview, error) {
	records, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list interviews: %w", err)
	}
	return records, nil
}
