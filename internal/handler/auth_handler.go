// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/prepview/internal/auth"
	"github.com/hitoshi/prepview/internal/identity"
	"github.com/hitoshi/prepview/internal/middleware"
	"github.com/hitoshi/prepview/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Register(ctx context.Context, name, email, password string) (*auth.RegisterResult, error)
	Authenticate(ctx context.Context, email, password string) (*auth.RegisterResult, error)
	AuthenticateByToken(ctx context.Context, idToken string) (*model.AuthenticatedUser, error)
	EstablishSession(ctx context.Context, idToken string) (string, error)
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int // セッションCookieの有効期間（秒）
}

// AuthHandler はアカウント登録・サインイン・セッション管理のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	config  AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service: service,
		config:  config,
	}
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	IDToken  string `json:"idToken"`
}

type sessionRequest struct {
	IDToken string `json:"idToken"`
}

// Signup はアカウントを登録し、セッション確立用の交換トークンを返す。
// POST /api/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	// 1. 入力検証
	if req.Name == "" || req.Email == "" || req.Password == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	// 2. アカウント登録
	result, err := h.service.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrDuplicateEmail):
			middleware.WriteError(w, http.StatusBadRequest, "Email already in use")
		case errors.Is(err, identity.ErrInvalidEmail):
			middleware.WriteError(w, http.StatusBadRequest, "Invalid email format")
		case errors.Is(err, identity.ErrWeakPassword):
			middleware.WriteError(w, http.StatusBadRequest, "Password is too weak")
		default:
			slog.Error("signup failed", slog.String("error", err.Error()))
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to create user")
		}
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    result.User,
		"token":   result.Token,
	})
}

// Signin はサインインする。idTokenが渡された場合はトークン検証のみ行い、
// メール/パスワードの場合は交換トークンを発行する。
// POST /api/auth/signin
func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	// IDトークンによるサインイン
	if req.IDToken != "" {
		user, err := h.service.AuthenticateByToken(r.Context(), req.IDToken)
		if err != nil {
			slog.Warn("token sign-in failed", slog.String("error", err.Error()))
			middleware.WriteError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		middleware.WriteJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"user":    user,
		})
		return
	}

	// メール/パスワードによるサインイン
	if req.Email == "" || req.Password == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	result, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrAuthenticationFailed) {
			middleware.WriteError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		slog.Error("sign-in failed", slog.String("error", err.Error()))
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to sign in")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    result.User,
		"token":   result.Token,
	})
}

// CreateSession はIDトークンを検証しセッションCookieを発行する。
// POST /api/auth/session
func (h *AuthHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IDToken == "" {
		middleware.WriteError(w, http.StatusBadRequest, "ID token is required")
		return
	}

	cookie, err := h.service.EstablishSession(r.Context(), req.IDToken)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrTokenExpired):
			middleware.WriteError(w, http.StatusUnauthorized, "Token expired")
		case errors.Is(err, identity.ErrTokenRevoked):
			middleware.WriteError(w, http.StatusUnauthorized, "Token revoked")
		default:
			slog.Error("session creation failed", slog.String("error", err.Error()))
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to create session")
		}
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    cookie,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   h.config.SessionMaxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	middleware.WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}

// DeleteSession はセッションCookieを無条件に破棄する（サインアウト）。
// DELETE /api/auth/session
func (h *AuthHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	middleware.WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}
