// Package model はドメインモデルを定義する。
package model

import "time"

// AuthProvider はユーザーの認証プロバイダーを表す。
type AuthProvider string

const (
	// ProviderLocal はメールアドレスとパスワードによるローカル認証。
	ProviderLocal AuthProvider = "local"
	// ProviderGoogle はGoogle IDトークンによるフェデレーション認証。
	ProviderGoogle AuthProvider = "google"
)

// User はサービス利用ユーザーを表す。
// Emailは全ユーザー間で一意。PasswordHashはフェデレーション専用
// アカウントでは空文字列になる。
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Provider     AuthProvider
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Sanitized はレスポンスに載せて良いフィールドのみのユーザー表現を返す。
// PasswordHashは決して外部に出さない。
func (u *User) Sanitized() SanitizedUser {
	return SanitizedUser{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Provider: string(u.Provider),
	}
}

// SanitizedUser はAPIレスポンス用のユーザー表現。
type SanitizedUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Provider string `json:"provider"`
}
