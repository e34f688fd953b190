package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/prepview/internal/model"
)

// PostgresInterviewRepo はPostgreSQLを使用した面接レコードリポジトリ。
type PostgresInterviewRepo struct {
	db *sql.DB
}

// NewPostgresInterviewRepo はPostgresInterviewRepoを生成する。
func NewPostgresInterviewRepo(db *sql.DB) *PostgresInterviewRepo {
	return &PostgresInterviewRepo{db: db}
}

// FindByID は指定IDの面接レコードを取得する。見つからない場合はnilを返す。
func (r *PostgresInterviewRepo) FindByID(ctx context.Context, id string) (*model.Interview, error) {
	iv := &model.Interview{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, role, type, level, techstack, questions, finalized, created_at
		 FROM interviews WHERE id = $1`,
		id,
	).Scan(
		&iv.ID, &iv.UserID, &iv.Role, &iv.Type, &iv.Level,
		pq.Array(&iv.Techstack), pq.Array(&iv.Questions),
		&iv.Finalized, &iv.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find interview by ID: %w", err)
	}

	return iv, nil
}

// ListByUserID はユーザーの面接レコード一覧を作成日時の降順で返す。
func (r *PostgresInterviewRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Interview, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, role, type, level, techstack, questions, finalized, created_at
		 FROM interviews WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list interviews: %w", err)
	}
	defer rows.Close()

	var interviews []*model.Interview
	for rows.Next() {
		iv := &model.Interview{}
		if err := rows.Scan(
			&iv.ID, &iv.UserID, &iv.Role, &iv.Type, &iv.Level,
			pq.Array(&iv.Techstack), pq.Array(&iv.Questions),
			&iv.Finalized, &iv.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan interview row: %w", err)
		}
		interviews = append(interviews, iv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate interview rows: %w", err)
	}

	return interviews, nil
}

// compile-time interface check
var _ InterviewRepository = (*PostgresInterviewRepo)(nil)
