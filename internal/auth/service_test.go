package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/prepview/internal/identity"
	"github.com/hitoshi/prepview/internal/model"
)

// --- モック定義 ---

type mockProvider struct {
	createUserFn          func(ctx context.Context, email, password, displayName string) (*identity.UserRecord, error)
	getUserByEmailFn      func(ctx context.Context, email string) (*identity.UserRecord, error)
	createCustomTokenFn   func(ctx context.Context, uid string) (string, error)
	verifyIDTokenFn       func(ctx context.Context, idToken string) (*identity.TokenClaims, error)
	createSessionCookieFn func(ctx context.Context, idToken string, validFor time.Duration) (string, error)
	verifySessionCookieFn func(ctx context.Context, cookie string) (*identity.TokenClaims, error)
}

func (m *mockProvider) CreateUser(ctx context.Context, email, password, displayName string) (*identity.UserRecord, error) {
	if m.createUserFn != nil {
		return m.createUserFn(ctx, email, password, displayName)
	}
	return &identity.UserRecord{UID: "uid-1", Email: email, DisplayName: displayName}, nil
}

func (m *mockProvider) GetUserByEmail(ctx context.Context, email string) (*identity.UserRecord, error) {
	if m.getUserByEmailFn != nil {
		return m.getUserByEmailFn(ctx, email)
	}
	return &identity.UserRecord{UID: "uid-1", Email: email}, nil
}

func (m *mockProvider) CreateCustomToken(ctx context.Context, uid string) (string, error) {
	if m.createCustomTokenFn != nil {
		return m.createCustomTokenFn(ctx, uid)
	}
	return "custom-token", nil
}

func (m *mockProvider) VerifyIDToken(ctx context.Context, idToken string) (*identity.TokenClaims, error) {
	if m.verifyIDTokenFn != nil {
		return m.verifyIDTokenFn(ctx, idToken)
	}
	return &identity.TokenClaims{UID: "uid-1"}, nil
}

func (m *mockProvider) CreateSessionCookie(ctx context.Context, idToken string, validFor time.Duration) (string, error) {
	if m.createSessionCookieFn != nil {
		return m.createSessionCookieFn(ctx, idToken, validFor)
	}
	return "session-cookie", nil
}

func (m *mockProvider) VerifySessionCookie(ctx context.Context, cookie string) (*identity.TokenClaims, error) {
	if m.verifySessionCookieFn != nil {
		return m.verifySessionCookieFn(ctx, cookie)
	}
	return &identity.TokenClaims{UID: "uid-1"}, nil
}

type mockProfileRepo struct {
	createFn   func(ctx context.Context, profile *model.Profile) error
	findByIDFn func(ctx context.Context, id string) (*model.Profile, error)
	created    []*model.Profile
}

func (m *mockProfileRepo) Create(ctx context.Context, profile *model.Profile) error {
	m.created = append(m.created, profile)
	if m.createFn != nil {
		return m.createFn(ctx, profile)
	}
	return nil
}

func (m *mockProfileRepo) FindByID(ctx context.Context, id string) (*model.Profile, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func newTestService(provider *mockProvider, repo *mockProfileRepo) *Service {
	return NewService(provider, repo, ServiceConfig{SessionMaxAge: 5 * 24 * time.Hour})
}

// --- テスト ---

func TestRegister_CreatesProfileWithSameUID(t *testing.T) {
	provider := &mockProvider{
		createUserFn: func(ctx context.Context, email, password, displayName string) (*identity.UserRecord, error) {
			return &identity.UserRecord{UID: "uid-new", Email: email, DisplayName: displayName}, nil
		},
	}
	repo := &mockProfileRepo{}
	svc := newTestService(provider, repo)

	result, err := svc.Register(context.Background(), "Taro", "taro@example.com", "password123")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if result.User.UID != "uid-new" {
		t.Errorf("UID = %q, want %q", result.User.UID, "uid-new")
	}
	if result.Token != "custom-token" {
		t.Errorf("Token = %q, want %q", result.Token, "custom-token")
	}

	if len(repo.created) != 1 {
		t.Fatalf("created profiles = %d, want 1", len(repo.created))
	}
	profile := repo.created[0]
	if profile.ID != "uid-new" {
		t.Errorf("profile.ID = %q, want provider uid %q", profile.ID, "uid-new")
	}
	if profile.Name != "Taro" || profile.Email != "taro@example.com" {
		t.Errorf("profile = %+v, want name/email set", profile)
	}
}

func TestRegister_DuplicateEmail_PassesThroughTypedError(t *testing.T) {
	provider := &mockProvider{
		createUserFn: func(ctx context.Context, email, password, displayName string) (*identity.UserRecord, error) {
			return nil, identity.ErrDuplicateEmail
		},
	}
	svc := newTestService(provider, &mockProfileRepo{})

	_, err := svc.Register(context.Background(), "Taro", "taro@example.com", "pw")
	if !errors.Is(err, identity.ErrDuplicateEmail) {
		t.Errorf("err = %v, want ErrDuplicateEmail", err)
	}
}

func TestAuthenticate_UserNotFound_CollapsesToAuthenticationFailed(t *testing.T) {
	provider := &mockProvider{
		getUserByEmailFn: func(ctx context.Context, email string) (*identity.UserRecord, error) {
			return nil, identity.ErrUserNotFound
		},
	}
	svc := newTestService(provider, &mockProfileRepo{})

	_, err := svc.Authenticate(context.Background(), "ghost@example.com", "pw")
	if !errors.Is(err, ErrAuthenticationFailed) {
		t.Errorf("err = %v, want ErrAuthenticationFailed", err)
	}
	// プロバイダーの内部エラーが外に漏れないこと
	if errors.Is(err, identity.ErrUserNotFound) {
		t.Error("ErrUserNotFound should not leak through Authenticate")
	}
}

func TestAuthenticate_Success_MintsToken(t *testing.T) {
	var mintedFor string
	provider := &mockProvider{
		getUserByEmailFn: func(ctx context.Context, email string) (*identity.UserRecord, error) {
			return &identity.UserRecord{UID: "uid-42", Email: email, DisplayName: "Hanako"}, nil
		},
		createCustomTokenFn: func(ctx context.Context, uid string) (string, error) {
			mintedFor = uid
			return "token-42", nil
		},
	}
	repo := &mockProfileRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Profile, error) {
			return &model.Profile{ID: id, Name: "Hanako", Email: "hanako@example.com"}, nil
		},
	}
	svc := newTestService(provider, repo)

	result, err := svc.Authenticate(context.Background(), "hanako@example.com", "pw")
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if mintedFor != "uid-42" {
		t.Errorf("custom token minted for %q, want %q", mintedFor, "uid-42")
	}
	if result.Token != "token-42" {
		t.Errorf("Token = %q, want %q", result.Token, "token-42")
	}
	if result.User.Name != "Hanako" {
		t.Errorf("Name = %q, want profile name merged", result.User.Name)
	}
}

func TestAuthenticateByToken_MergesProfile(t *testing.T) {
	provider := &mockProvider{
		verifyIDTokenFn: func(ctx context.Context, idToken string) (*identity.TokenClaims, error) {
			return &identity.TokenClaims{UID: "uid-7"}, nil
		},
	}
	repo := &mockProfileRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Profile, error) {
			if id != "uid-7" {
				t.Errorf("profile lookup id = %q, want %q", id, "uid-7")
			}
			return &model.Profile{ID: id, Name: "Jiro", Email: "jiro@example.com"}, nil
		},
	}
	svc := newTestService(provider, repo)

	user, err := svc.AuthenticateByToken(context.Background(), "id-token")
	if err != nil {
		t.Fatalf("AuthenticateByToken returned error: %v", err)
	}
	if user.UID != "uid-7" || user.Email != "jiro@example.com" || user.DisplayName != "Jiro" {
		t.Errorf("user = %+v, want identity+profile combined", user)
	}
}

func TestAuthenticateByToken_ExpiredToken_PassesThrough(t *testing.T) {
	provider := &mockProvider{
		verifyIDTokenFn: func(ctx context.Context, idToken string) (*identity.TokenClaims, error) {
			return nil, identity.ErrTokenExpired
		},
	}
	svc := newTestService(provider, &mockProfileRepo{})

	_, err := svc.AuthenticateByToken(context.Background(), "expired")
	if !errors.Is(err, identity.ErrTokenExpired) {
		t.Errorf("err = %v, want ErrTokenExpired", err)
	}
}

func TestEstablishSession_VerifiesBeforeMinting(t *testing.T) {
	verified := false
	provider := &mockProvider{
		verifyIDTokenFn: func(ctx context.Context, idToken string) (*identity.TokenClaims, error) {
			verified = true
			return &identity.TokenClaims{UID: "uid-1"}, nil
		},
		createSessionCookieFn: func(ctx context.Context, idToken string, validFor time.Duration) (string, error) {
			if !verified {
				t.Error("session cookie minted before token verification")
			}
			if validFor != 5*24*time.Hour {
				t.Errorf("validFor = %v, want 5 days", validFor)
			}
			return "cookie-value", nil
		},
	}
	svc := newTestService(provider, &mockProfileRepo{})

	cookie, err := svc.EstablishSession(context.Background(), "id-token")
	if err != nil {
		t.Fatalf("EstablishSession returned error: %v", err)
	}
	if cookie != "cookie-value" {
		t.Errorf("cookie = %q, want %q", cookie, "cookie-value")
	}
}

func TestEstablishSession_ExpiredToken_NoCookieMinted(t *testing.T) {
	minted := false
	provider := &mockProvider{
		verifyIDTokenFn: func(ctx context.Context, idToken string) (*identity.TokenClaims, error) {
			return nil, identity.ErrTokenExpired
		},
		createSessionCookieFn: func(ctx context.Context, idToken string, validFor time.Duration) (string, error) {
			minted = true
			return "cookie", nil
		},
	}
	svc := newTestService(provider, &mockProfileRepo{})

	_, err := svc.EstablishSession(context.Background(), "expired")
	if !errors.Is(err, identity.ErrTokenExpired) {
		t.Errorf("err = %v, want ErrTokenExpired", err)
	}
	if minted {
		t.Error("session cookie should not be minted for an expired token")
	}
}

func TestVerifySession_ReturnsUID(t *testing.T) {
	provider := &mockProvider{
		verifySessionCookieFn: func(ctx context.Context, cookie string) (*identity.TokenClaims, error) {
			return &identity.TokenClaims{UID: "uid-55"}, nil
		},
	}
	svc := newTestService(provider, &mockProfileRepo{})

	uid, err := svc.VerifySession(context.Background(), "cookie")
	if err != nil {
		t.Fatalf("VerifySession returned error: %v", err)
	}
	if uid != "uid-55" {
		t.Errorf("uid = %q, want %q", uid, "uid-55")
	}
}
