package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/hitoshi/prepview/internal/model"
)

// PostgresTranscriptRepo はPostgreSQLを使用したトランスクリプトリポジトリ。
// 発話エントリはJSONBカラムに格納する。
type PostgresTranscriptRepo struct {
	db *sql.DB
}

// NewPostgresTranscriptRepo はPostgresTranscriptRepoを生成する。
func NewPostgresTranscriptRepo(db *sql.DB) *PostgresTranscriptRepo {
	return &PostgresTranscriptRepo{db: db}
}

// Create は完了した通話のトランスクリプトを保存する。
func (r *PostgresTranscriptRepo) Create(ctx context.Context, transcript *model.Transcript) error {
	entries, err := json.Marshal(transcript.Entries)
	if err != nil {
		return fmt.Errorf("failed to marshal transcript entries: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO transcripts (id, interview_id, user_id, entries, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		transcript.ID, transcript.InterviewID, transcript.UserID, entries, transcript.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transcript: %w", err)
	}
	return nil
}

// ListByInterviewID は面接レコードに紐付くトランスクリプト一覧を返す。
func (r *PostgresTranscriptRepo) ListByInterviewID(ctx context.Context, interviewID string) ([]*model.Transcript, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, interview_id, user_id, entries, created_at
		 FROM transcripts WHERE interview_id = $1 ORDER BY created_at`,
		interviewID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list transcripts: %w", err)
	}
	defer rows.Close()

	var transcripts []*model.Transcript
	for rows.Next() {
		tr := &model.Transcript{}
		var entries []byte
		if err := rows.Scan(&tr.ID, &tr.InterviewID, &tr.UserID, &entries, &tr.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transcript row: %w", err)
		}
		if err := json.Unmarshal(entries, &tr.Entries); err != nil {
			return nil, fmt.Errorf("failed to unmarshal transcript entries: %w", err)
		}
		transcripts = append(transcripts, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transcript rows: %w", err)
	}

	return transcripts, nil
}

// compile-time interface check
var _ TranscriptRepository = (*PostgresTranscriptRepo)(nil)
