// Package cleanup は面接データの自動削除ジョブを提供する。
// 保持期間（デフォルト180日）を超過したトランスクリプトと、
// 確定されないまま期限（デフォルト30日）を超過した面接レコードを
// 日次バッチで削除する。
package cleanup

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// Executor はSQLのExecContextを抽象化するインターフェース。
// *sql.DB や *sql.Tx を受け付けることができる。
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// DeletionRecorder は削除件数のメトリクス記録に必要なインターフェース。
type DeletionRecorder interface {
	RecordTranscriptsDeleted(count int)
	RecordDraftsDeleted(count int)
}

// CleanupJob は保持期間を超過した面接データの自動削除ジョブ。
// 日次実行のバッチジョブとして設計されており、冪等な削除処理を保証する。
type CleanupJob struct {
	db                      Executor
	logger                  *slog.Logger
	metrics                 DeletionRecorder // nilの場合は記録しない
	TranscriptRetentionDays int              // トランスクリプトの保持日数（デフォルト: 180）
	DraftRetentionDays      int              // 未確定レコードの保持日数（デフォルト: 30）
}

// NewCleanupJob は新しいCleanupJobを生成する。
func NewCleanupJob(db Executor, logger *slog.Logger) *CleanupJob {
	return &CleanupJob{
		db:                      db,
		logger:                  logger,
		TranscriptRetentionDays: 180,
		DraftRetentionDays:      30,
	}
}

// SetMetrics は削除件数の記録先を設定する。
func (j *CleanupJob) SetMetrics(m DeletionRecorder) {
	j.metrics = m
}

// Run は保持期限切れのトランスクリプトと未確定レコードを削除する。
// 冪等: 削除対象がない場合でもエラーにならない。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()

	transcriptsDeleted, err := j.deleteExpiredTranscripts(ctx)
	if err != nil {
		return err
	}

	draftsDeleted, err := j.deleteExpiredDrafts(ctx)
	if err != nil {
		return err
	}

	duration := time.Since(start)
	j.logger.Info("クリーンアップジョブが完了しました",
		slog.Int64("transcripts_deleted", transcriptsDeleted),
		slog.Int64("drafts_deleted", draftsDeleted),
		slog.Int("transcript_retention_days", j.TranscriptRetentionDays),
		slog.Int("draft_retention_days", j.DraftRetentionDays),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}

// deleteExpiredTranscripts はcreated_atが保持日数より古いトランスクリプトを削除する。
func (j *CleanupJob) deleteExpiredTranscripts(ctx context.Context) (int64, error) {
	interval := fmt.Sprintf("%d days", j.TranscriptRetentionDays)

	query := `DELETE FROM transcripts WHERE created_at < now() - $1::interval`
	result, err := j.db.ExecContext(ctx, query, interval)
	if err != nil {
		j.logger.Error("トランスクリプトのクリーンアップに失敗しました",
			slog.String("error", err.Error()),
			slog.Int("retention_days", j.TranscriptRetentionDays),
		)
		return 0, fmt.Errorf("トランスクリプトのクリーンアップに失敗: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("削除件数の取得に失敗: %w", err)
	}
	if j.metrics != nil {
		j.metrics.RecordTranscriptsDeleted(int(deleted))
	}
	return deleted, nil
}

// deleteExpiredDrafts は確定されないまま期限を超過した面接レコードを削除する。
// 確定済みレコードは保持期限の対象外。
func (j *CleanupJob) deleteExpiredDrafts(ctx context.Context) (int64, error) {
	interval := fmt.Sprintf("%d days", j.DraftRetentionDays)

	query := `DELETE FROM interviews WHERE finalized = FALSE AND created_at < now() - $1::interval`
	result, err := j.db.ExecContext(ctx, query, interval)
	if err != nil {
		j.logger.Error("未確定レコードのクリーンアップに失敗しました",
			slog.String("error", err.Error()),
			slog.Int("retention_days", j.DraftRetentionDays),
		)
		return 0, fmt.Errorf("未確定レコードのクリーンアップに失敗: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("削除件数の取得に失敗: %w", err)
	}
	if j.metrics != nil {
		j.metrics.RecordDraftsDeleted(int(deleted))
	}
	return deleted, nil
}
