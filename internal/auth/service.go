// Package auth はIDプロバイダーを利用した認証フローとセッション発行を提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/prepview/internal/identity"
	"github.com/hitoshi/prepview/internal/model"
	"github.com/hitoshi/prepview/internal/repository"
)

// ErrAuthenticationFailed はサインイン失敗を表す。
// ユーザー未登録・資格情報不一致を外向きに区別しないための単一エラー。
var ErrAuthenticationFailed = errors.New("auth: authentication failed")

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge time.Duration // セッションCookieの有効期間。発行時に固定される。
}

// Service は認証に関するビジネスロジックを提供する。
// IDプロバイダーとプロフィールリポジトリを組み合わせ、
// アカウント登録・サインイン・セッション発行を行う。
type Service struct {
	provider    identity.Provider
	profileRepo repository.ProfileRepository
	config      ServiceConfig
}

// NewService はServiceを生成する。
func NewService(provider identity.Provider, profileRepo repository.ProfileRepository, config ServiceConfig) *Service {
	return &Service{
		provider:    provider,
		profileRepo: profileRepo,
		config:      config,
	}
}

// RegisterResult はRegisterの結果。交換トークンはクライアントが
// セッション確立エンドポイントへ引き換えるために使う。
type RegisterResult struct {
	User  *model.AuthenticatedUser
	Token string
}

// Register はIDプロバイダーにアカウントを作成し、対応するプロフィールを
// 同じuidで保存した上で短命の交換トークンを発行する。
// プロバイダーの既知エラー（重複・形式不正・脆弱パスワード）はそのまま透過する。
func (s *Service) Register(ctx context.Context, name, email, password string) (*RegisterResult, error) {
	// 1. プロバイダーにアカウントを作成
	user, err := s.provider.CreateUser(ctx, email, password, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// 2. 同じuidでプロフィールドキュメントを作成
	now := time.Now()
	profile := &model.Profile{
		ID:        user.UID,
		Name:      name,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	// 3. 交換トークンを発行
	token, err := s.provider.CreateCustomToken(ctx, user.UID)
	if err != nil {
		return nil, fmt.Errorf("failed to create custom token: %w", err)
	}

	slog.Info("new user registered",
		slog.String("uid", user.UID),
		slog.String("email", email),
	)

	return &RegisterResult{
		User: &model.AuthenticatedUser{
			UID:         user.UID,
			Email:       user.Email,
			DisplayName: user.DisplayName,
		},
		Token: token,
	}, nil
}

// Authenticate はメールアドレスでユーザーを特定し、交換トークンを発行する。
// パスワードの照合はここでは行わず、クライアント側のトークン交換に委ねる
// （プロバイダーの管理APIにパスワード検証手段がないため。既知のギャップとして
// DESIGN.mdに記録）。ユーザー未登録はErrAuthenticationFailedに丸める。
func (s *Service) Authenticate(ctx context.Context, email, password string) (*RegisterResult, error) {
	user, err := s.provider.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return nil, ErrAuthenticationFailed
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	token, err := s.provider.CreateCustomToken(ctx, user.UID)
	if err != nil {
		return nil, fmt.Errorf("failed to create custom token: %w", err)
	}

	result := &RegisterResult{
		User: &model.AuthenticatedUser{
			UID:         user.UID,
			Email:       user.Email,
			DisplayName: user.DisplayName,
		},
		Token: token,
	}

	// プロフィールがあれば結合して返す
	if profile, perr := s.profileRepo.FindByID(ctx, user.UID); perr == nil && profile != nil {
		result.User.Name = profile.Name
	}

	return result, nil
}

// AuthenticateByToken はIDトークンを検証し、プロフィールと結合した
// 認証済みユーザー情報を返す。
func (s *Service) AuthenticateByToken(ctx context.Context, idToken string) (*model.AuthenticatedUser, error) {
	claims, err := s.provider.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify ID token: %w", err)
	}

	user := &model.AuthenticatedUser{UID: claims.UID}

	profile, err := s.profileRepo.FindByID(ctx, claims.UID)
	if err != nil {
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}
	if profile != nil {
		user.Email = profile.Email
		user.DisplayName = profile.Name
		user.Name = profile.Name
	}

	return user, nil
}

// EstablishSession はIDトークンを検証し、固定有効期間のセッションCookie値を
// 発行する。Cookieの属性設定はハンドラー側の責務。
func (s *Service) EstablishSession(ctx context.Context, idToken string) (string, error) {
	if _, err := s.provider.VerifyIDToken(ctx, idToken); err != nil {
		return "", fmt.Errorf("failed to verify ID token: %w", err)
	}

	cookie, err := s.provider.CreateSessionCookie(ctx, idToken, s.config.SessionMaxAge)
	if err != nil {
		return "", fmt.Errorf("failed to create session cookie: %w", err)
	}

	return cookie, nil
}

// VerifySession はセッションCookie値を検証し、ユーザーIDを返す。
// セッションミドルウェアから利用される。
func (s *Service) VerifySession(ctx context.Context, cookie string) (string, error) {
	claims, err := s.provider.VerifySessionCookie(ctx, cookie)
	if err != nil {
		return "", fmt.Errorf("failed to verify session cookie: %w", err)
	}
	return claims.UID, nil
}
