package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestMiddlewareChain_FullStack_AuthenticatedRequest は
// Recovery→SecurityHeaders→CORS→Logging→Sessionのチェーンで
// 認証済みリクエストが通ることを検証する。
func TestMiddlewareChain_FullStack_AuthenticatedRequest(t *testing.T) {
	verifier := &mockCredentialVerifier{
		verifyFn: func(credential string) (string, error) {
			if credential == "chain-credential" {
				return "user-chain-test", nil
			}
			return "", errors.New("invalid credential")
		},
	}

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	recoveryMW := NewRecoveryMiddleware()
	headersMW := NewSecurityHeadersMiddleware()
	corsMW := NewCORSMiddleware("http://localhost:3000")
	loggingMW := NewLoggingMiddleware(logger, nil)
	sessionMW := NewSessionMiddleware(verifier)

	var capturedUserID string
	handler := recoveryMW(headersMW(corsMW(loggingMW(sessionMW(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, _ := UserIDFromContext(r.Context())
		capturedUserID = userID
		w.WriteHeader(http.StatusOK)
	}))))))

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "chain-credential"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if capturedUserID != "user-chain-test" {
		t.Errorf("userID = %q, want %q", capturedUserID, "user-chain-test")
	}
	if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected security headers to be set")
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "http://localhost:3000" {
		t.Error("expected CORS headers to be set")
	}

	// 認証済みユーザーIDがアクセスログに含まれること
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse JSON log: %v", err)
	}
	if entry["user_id"] != "user-chain-test" {
		t.Errorf("log user_id = %q, want %q", entry["user_id"], "user-chain-test")
	}
}

// TestMiddlewareChain_NoCredential_Returns401 は
// セッションクレデンシャルがない場合に401が返されることを検証する。
func TestMiddlewareChain_NoCredential_Returns401(t *testing.T) {
	verifier := &mockCredentialVerifier{}

	sessionMW := NewSessionMiddleware(verifier)

	handler := sessionMW(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/tasks", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	// セッション未認証で401が返ること
	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}

// TestMiddlewareChain_PanicInHandler_Returns500 は
// ハンドラー内のpanicがRecoveryミドルウェアで500に変換されることを検証する。
func TestMiddlewareChain_PanicInHandler_Returns500(t *testing.T) {
	recoveryMW := NewRecoveryMiddleware()

	handler := recoveryMW(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusInternalServerError)
	}

	var body ErrorResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Code != "INTERNAL_ERROR" {
		t.Errorf("code = %q, want %q", body.Code, "INTERNAL_ERROR")
	}
}
