package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// LatencyRecorder はプロバイダー呼び出しのレイテンシ観測に必要なインターフェース。
type LatencyRecorder interface {
	RecordProviderLatency(operation string, duration time.Duration)
}

// Client はIDプロバイダーのREST APIクライアント。
// Provider インターフェースを実装する。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string // テスト用にエンドポイントを差し替え可能
	apiKey     string
	latency    LatencyRecorder // nilの場合は記録しない
}

// NewClient はClientの新しいインスタンスを生成する。
func NewClient(httpClient *http.Client, logger *slog.Logger, baseURL, apiKey string) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

// SetLatencyRecorder はプロバイダー呼び出しのレイテンシ記録先を設定する。
func (c *Client) SetLatencyRecorder(r LatencyRecorder) {
	c.latency = r
}

// providerErrorBody はプロバイダーAPIのエラーレスポンスボディ。
type providerErrorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// accountBody はプロバイダーAPIのアカウントレスポンスボディ。
type accountBody struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// tokenBody はプロバイダーAPIのトークンレスポンスボディ。
type tokenBody struct {
	Token string `json:"token"`
	UID   string `json:"uid"`
}

// CreateUser はメール/パスワードでアカウントを作成する。
func (c *Client) CreateUser(ctx context.Context, email, password, displayName string) (*UserRecord, error) {
	body := map[string]string{
		"email":       email,
		"password":    password,
		"displayName": displayName,
	}
	var out accountBody
	if err := c.post(ctx, "/accounts", body, &out); err != nil {
		return nil, err
	}
	return &UserRecord{UID: out.UID, Email: out.Email, DisplayName: out.DisplayName}, nil
}

// GetUserByEmail はメールアドレスでアカウントを検索する。
func (c *Client) GetUserByEmail(ctx context.Context, email string) (*UserRecord, error) {
	endpoint := fmt.Sprintf("%s/accounts/lookup?email=%s", c.baseURL, url.QueryEscape(email))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build lookup request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	var out accountBody
	if err := c.doTimed(req, "/accounts/lookup", &out); err != nil {
		return nil, err
	}
	return &UserRecord{UID: out.UID, Email: out.Email, DisplayName: out.DisplayName}, nil
}

// CreateCustomToken は指定UIDに紐付く短命の交換トークンを発行する。
func (c *Client) CreateCustomToken(ctx context.Context, uid string) (string, error) {
	var out tokenBody
	if err := c.post(ctx, "/tokens/custom", map[string]string{"uid": uid}, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

// VerifyIDToken はIDトークンを検証する。
func (c *Client) VerifyIDToken(ctx context.Context, idToken string) (*TokenClaims, error) {
	var out tokenBody
	if err := c.post(ctx, "/tokens/verify", map[string]string{"idToken": idToken}, &out); err != nil {
		return nil, err
	}
	return &TokenClaims{UID: out.UID}, nil
}

// CreateSessionCookie は検証済みIDトークンからセッションCookie値を発行する。
func (c *Client) CreateSessionCookie(ctx context.Context, idToken string, validFor time.Duration) (string, error) {
	body := map[string]any{
		"idToken":       idToken,
		"validDuration": int64(validFor.Seconds()),
	}
	var out tokenBody
	if err := c.post(ctx, "/sessions", body, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

// VerifySessionCookie はセッションCookie値を検証する。
func (c *Client) VerifySessionCookie(ctx context.Context, cookie string) (*TokenClaims, error) {
	var out tokenBody
	if err := c.post(ctx, "/sessions/verify", map[string]string{"sessionCookie": cookie}, &out); err != nil {
		return nil, err
	}
	return &TokenClaims{UID: out.UID}, nil
}

// post はJSONボディ付きのPOSTリクエストを送信し、レスポンスをoutへデコードする。
func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	return c.doTimed(req, path, out)
}

// doTimed はリクエストを実行し、経過時間をレイテンシとして記録する。
func (c *Client) doTimed(req *http.Request, operation string, out any) error {
	start := time.Now()
	err := c.do(req, out)
	if c.latency != nil {
		c.latency.RecordProviderLatency(operation, time.Since(start))
	}
	return err
}

// do はリクエストを実行し、既知のエラーコードを型付きエラーへ変換する。
// 未知のエラーは詳細をログに残し、汎用エラーとして返す。
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("identity provider request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read provider response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return c.mapError(resp.StatusCode, data)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode provider response: %w", err)
		}
	}
	return nil
}

// mapError はプロバイダーのエラーコードを境界で1回だけ型付きエラーへ変換する。
func (c *Client) mapError(status int, data []byte) error {
	var body providerErrorBody
	if err := json.Unmarshal(data, &body); err == nil {
		switch body.Error.Code {
		case "EMAIL_EXISTS":
			return ErrDuplicateEmail
		case "INVALID_EMAIL":
			return ErrInvalidEmail
		case "WEAK_PASSWORD":
			return ErrWeakPassword
		case "USER_NOT_FOUND":
			return ErrUserNotFound
		case "TOKEN_EXPIRED":
			return ErrTokenExpired
		case "TOKEN_REVOKED":
			return ErrTokenRevoked
		case "INVALID_TOKEN":
			return ErrInvalidToken
		}
	}

	c.logger.Error("identity provider returned unexpected error",
		slog.Int("status", status),
		slog.String("body", string(data)),
	)
	return fmt.Errorf("identity provider error: status %d", status)
}

// compile-time interface check
var _ Provider = (*Client)(nil)
