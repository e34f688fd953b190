// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError はAPI境界で返す統一エラーフォーマットを表す。
// Messageはそのままレスポンスボディの error フィールドになるため、
// プロバイダー内部の詳細を含めてはならない。
type APIError struct {
	Code    string // 安定したエラーコード（ログ・分類用）
	Message string // ユーザー向けメッセージ（レスポンスにそのまま出る）
	Status  int    // HTTPステータスコード
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeMissingFields        = "MISSING_FIELDS"
	ErrCodeDuplicateIdentity    = "DUPLICATE_IDENTITY"
	ErrCodeInvalidInput         = "INVALID_INPUT"
	ErrCodeWeakCredential       = "WEAK_CREDENTIAL"
	ErrCodeAuthenticationFailed = "AUTHENTICATION_FAILED"
	ErrCodeTokenExpired         = "TOKEN_EXPIRED"
	ErrCodeTokenRevoked         = "TOKEN_REVOKED"
	ErrCodeInterviewNotFound    = "INTERVIEW_NOT_FOUND"
	ErrCodeProviderError        = "PROVIDER_ERROR"
)

// NewMissingFieldsError は必須フィールド欠落エラーを生成する。
// messageにはエンドポイントごとに定められた文言を指定する。
func NewMissingFieldsError(message string) *APIError {
	return &APIError{
		Code:    ErrCodeMissingFields,
		Message: message,
		Status:  400,
	}
}

// NewDuplicateIdentityError はメールアドレス重複エラーを生成する。
func NewDuplicateIdentityError() *APIError {
	return &APIError{
		Code:    ErrCodeDuplicateIdentity,
		Message: "Email already in use",
		Status:  400,
	}
}

// NewInvalidEmailError はメールアドレス形式不正エラーを生成する。
func NewInvalidEmailError() *APIError {
	return &APIError{
		Code:    ErrCodeInvalidInput,
		Message: "Invalid email format",
		Status:  400,
	}
}

// NewWeakPasswordError はパスワードポリシー違反エラーを生成する。
func NewWeakPasswordError() *APIError {
	return &APIError{
		Code:    ErrCodeWeakCredential,
		Message: "Password is too weak",
		Status:  400,
	}
}

// NewAuthenticationFailedError は認証失敗エラーを生成する。
// ユーザー未登録とパスワード不一致を外向きには区別しない。
func NewAuthenticationFailedError() *APIError {
	return &APIError{
		Code:    ErrCodeAuthenticationFailed,
		Message: "Invalid email or password",
		Status:  401,
	}
}

// NewInvalidTokenError はトークン検証失敗エラーを生成する。
func NewInvalidTokenError() *APIError {
	return &APIError{
		Code:    ErrCodeAuthenticationFailed,
		Message: "Invalid or expired token",
		Status:  401,
	}
}

// NewTokenExpiredError はトークン期限切れエラーを生成する。
func NewTokenExpiredError() *APIError {
	return &APIError{
		Code:    ErrCodeTokenExpired,
		Message: "Token expired",
		Status:  401,
	}
}

// NewTokenRevokedError はトークン失効エラーを生成する。
func NewTokenRevokedError() *APIError {
	return &APIError{
		Code:    ErrCodeTokenRevoked,
		Message: "Token revoked",
		Status:  401,
	}
}

// NewInterviewNotFoundError は面接レコード未検出エラーを生成する。
// 「存在しない」と「削除済み」は外向きに区別しない。
func NewInterviewNotFoundError() *APIError {
	return &APIError{
		Code:    ErrCodeInterviewNotFound,
		Message: "Interview not found",
		Status:  404,
	}
}
