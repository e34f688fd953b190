// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/prepview/internal/model"
)

// ProfileRepository はプロフィールドキュメントの永続化インターフェース。
type ProfileRepository interface {
	// Create はプロフィールを作成する。IDはIDプロバイダーのuidを使用する。
	Create(ctx context.Context, profile *model.Profile) error

	// FindByID は指定IDのプロフィールを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Profile, error)
}

// InterviewRepository は面接レコードの永続化インターフェース。
// レコードは外部の生成プロセスが作成し、本システムからは読み取りのみ行う。
// 削除はリテンション管理のクリーンアップジョブに限られる。
type InterviewRepository interface {
	// FindByID は指定IDの面接レコードを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Interview, error)

	// ListByUserID はユーザーの面接レコード一覧を作成日時の降順で返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.Interview, error)
}

// TranscriptRepository は通話トランスクリプトの永続化インターフェース。
type TranscriptRepository interface {
	// Create は完了した通話のトランスクリプトを保存する。
	Create(ctx context.Context, transcript *model.Transcript) error

	// ListByInterviewID は面接レコードに紐付くトランスクリプト一覧を返す。
	ListByInterviewID(ctx context.Context, interviewID string) ([]*model.Transcript, error)
}
