package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultGoogleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// TokenClaims は検証済みIDトークンから抽出した申告済みアイデンティティ。
type TokenClaims struct {
	Name  string
	Email string
}

// TokenVerifier は外部発行のIDトークンを信頼済みissuerに対して検証する
// インターフェース。検証済みの{name, email}クレームを返すか、失敗する。
type TokenVerifier interface {
	// Verify はIDトークンを検証し、申告済みアイデンティティを返す。
	// 期限切れ・改ざん・audience不一致のトークンはすべてエラーになる。
	Verify(ctx context.Context, idToken string) (*TokenClaims, error)
}

// GoogleVerifierConfig はGoogleVerifierの設定。
type GoogleVerifierConfig struct {
	ClientID string

	// テスト用にオーバーライド可能なURL
	TokenInfoURL string
}

// GoogleVerifier はGoogleのtokeninfoエンドポイントでIDトークンを検証する。
// ミュータブルな状態を持たず、リクエスト間で安全に共有できる。
type GoogleVerifier struct {
	config GoogleVerifierConfig
	client *http.Client
}

// NewGoogleVerifier はGoogleVerifierを生成する。
func NewGoogleVerifier(config GoogleVerifierConfig) *GoogleVerifier {
	if config.TokenInfoURL == "" {
		config.TokenInfoURL = defaultGoogleTokenInfoURL
	}
	return &GoogleVerifier{
		config: config,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// googleTokenInfo はtokeninfoエンドポイントのレスポンス。
type googleTokenInfo struct {
	Aud   string `json:"aud"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Verify はIDトークンをtokeninfoエンドポイントで検証する。
// Googleは署名と有効期限を検証し、無効なトークンには非200を返す。
// audienceが自アプリのクライアントIDと一致することを追加で確認する。
func (v *GoogleVerifier) Verify(ctx context.Context, idToken string) (*TokenClaims, error) {
	reqURL := v.config.TokenInfoURL + "?id_token=" + url.QueryEscape(idToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create tokeninfo request: %w", err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tokeninfo request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read tokeninfo response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token verification failed with status %d", resp.StatusCode)
	}

	var info googleTokenInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to parse tokeninfo response: %w", err)
	}

	if info.Aud != v.config.ClientID {
		return nil, fmt.Errorf("token audience mismatch")
	}
	if info.Email == "" {
		return nil, fmt.Errorf("empty email in token claims")
	}

	return &TokenClaims{
		Name:  info.Name,
		Email: info.Email,
	}, nil
}

// compile-time interface check
var _ TokenVerifier = (*GoogleVerifier)(nil)
