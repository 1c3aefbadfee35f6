// Package security はアプリケーションのセキュリティ機能を提供する。
//
// PasswordHasher はパスワードの一方向ハッシュ化と照合を提供する。
// InputSanitizer はユーザー入力テキストからHTMLを除去し、
// XSS攻撃などのセキュリティリスクからユーザーを保護する。
package security

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher はパスワードの一方向ハッシュ化と照合のインターフェース。
// ハッシュアルゴリズムの詳細は呼び出し側から隠蔽する。
type PasswordHasher interface {
	// Hash は平文パスワードから一方向ハッシュを生成する。
	Hash(password string) (string, error)
	// Verify は平文パスワードがハッシュと一致するかを返す。
	// ハッシュが空文字列（フェデレーション専用アカウント）の場合は常にfalse。
	Verify(hash, password string) bool
}

// bcryptHasher はbcryptによるPasswordHasherの実装。
type bcryptHasher struct {
	cost int
}

// NewPasswordHasher はbcryptベースのPasswordHasherを生成する。
func NewPasswordHasher() PasswordHasher {
	return &bcryptHasher{cost: bcrypt.DefaultCost}
}

// Hash は平文パスワードからbcryptハッシュを生成する。
func (h *bcryptHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(b), nil
}

// Verify は平文パスワードがハッシュと一致するかを返す。
// 空ハッシュはパスワードログイン不可を意味するため常にfalseを返す。
func (h *bcryptHasher) Verify(hash, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
