// Package identity はマネージドIDプロバイダーとの連携を提供する。
// アカウント作成・トークン発行・トークン検証・セッションCookieの発行/検証を
// プロバイダーのREST APIを通じて行う。
package identity

import (
	"context"
	"errors"
	"time"
)

// プロバイダーの既知エラー。APIレスポンスのエラーコードからマッピングされる。
var (
	// ErrDuplicateEmail はメールアドレスが登録済みであることを表す。
	ErrDuplicateEmail = errors.New("identity: email already in use")
	// ErrInvalidEmail はメールアドレスの形式が不正であることを表す。
	ErrInvalidEmail = errors.New("identity: invalid email format")
	// ErrWeakPassword はパスワードがプロバイダーのポリシーを満たさないことを表す。
	ErrWeakPassword = errors.New("identity: password too weak")
	// ErrUserNotFound は該当するユーザーが存在しないことを表す。
	ErrUserNotFound = errors.New("identity: user not found")
	// ErrTokenExpired はトークンの有効期限が切れていることを表す。
	ErrTokenExpired = errors.New("identity: token expired")
	// ErrTokenRevoked はトークンが失効させられていることを表す。
	ErrTokenRevoked = errors.New("identity: token revoked")
	// ErrInvalidToken はトークンの検証に失敗したことを表す。
	ErrInvalidToken = errors.New("identity: invalid token")
)

// UserRecord はプロバイダーが保持するユーザーアカウントを表す。
type UserRecord struct {
	UID         string
	Email       string
	DisplayName string
}

// TokenClaims は検証済みトークンから取り出した主体情報を表す。
// トークン自体の内容はプロバイダーのみが解釈し、本システムはUIDのみ利用する。
type TokenClaims struct {
	UID string
}

// Provider はIDプロバイダーの操作インターフェース。
// 実装はプロセス起動時に1回構築し、読み取り専用ハンドルとして各層へ渡す。
type Provider interface {
	// CreateUser はメール/パスワードでアカウントを作成する。
	CreateUser(ctx context.Context, email, password, displayName string) (*UserRecord, error)

	// GetUserByEmail はメールアドレスでアカウントを検索する。
	// 見つからない場合はErrUserNotFoundを返す。
	GetUserByEmail(ctx context.Context, email string) (*UserRecord, error)

	// CreateCustomToken は指定UIDに紐付く短命の交換トークンを発行する。
	CreateCustomToken(ctx context.Context, uid string) (string, error)

	// VerifyIDToken はIDトークンを検証し、主体情報を返す。
	VerifyIDToken(ctx context.Context, idToken string) (*TokenClaims, error)

	// CreateSessionCookie は検証済みIDトークンからセッションCookie値を発行する。
	// validForは発行時に固定される有効期間。
	CreateSessionCookie(ctx context.Context, idToken string, validFor time.Duration) (string, error)

	// VerifySessionCookie はセッションCookie値を検証し、主体情報を返す。
	VerifySessionCookie(ctx context.Context, cookie string) (*TokenClaims, error)
}
