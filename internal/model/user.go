// Package model はドメインモデルを定義する。
package model

import "time"

// Profile はIDプロバイダーのユーザーに対応するプロフィールドキュメントを表す。
// IDはプロバイダーが発行したuidと同一の値を使用する。
type Profile struct {
	ID        string    `json:"uid"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AuthenticatedUser は認証済みユーザーのID・プロフィール結合情報を表す。
// トークン検証やサインイン成功後にAPIレスポンスへ返す形。
type AuthenticatedUser struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Name        string `json:"name,omitempty"`
}
