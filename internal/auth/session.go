package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionValidity はセッションクレデンシャルの既定の有効期間。
const DefaultSessionValidity = 7 * 24 * time.Hour

// SessionIssuer は署名付きセッションクレデンシャルの発行と検証を行う。
// クレデンシャルはステートレスで、サーバー側にセッションテーブルを持たない。
// 有効性は署名と有効期限のみで決まる。
type SessionIssuer struct {
	secret   []byte
	validity time.Duration
}

// NewSessionIssuer はSessionIssuerを生成する。
// validityが0以下の場合はDefaultSessionValidityを使用する。
func NewSessionIssuer(secret string, validity time.Duration) *SessionIssuer {
	if validity <= 0 {
		validity = DefaultSessionValidity
	}
	return &SessionIssuer{
		secret:   []byte(secret),
		validity: validity,
	}
}

// Validity はクレデンシャルの有効期間を返す。Cookieのmax-ageと揃えるために使用する。
func (i *SessionIssuer) Validity() time.Duration {
	return i.validity
}

// Issue は指定ユーザーIDを主体とするHMAC-SHA256署名付きの
// セッションクレデンシャルを発行する。
func (i *SessionIssuer) Issue(userID string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("user ID is required")
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.validity)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session credential: %w", err)
	}

	return signed, nil
}

// Verify はセッションクレデンシャルの署名と有効期限を検証し、
// 主体のユーザーIDを返す。改ざん・期限切れ・署名方式不一致はすべてエラー。
func (i *SessionIssuer) Verify(credential string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(credential, claims, func(token *jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("invalid session credential: %w", err)
	}

	if claims.Subject == "" {
		return "", fmt.Errorf("session credential has no subject")
	}

	return claims.Subject, nil
}
