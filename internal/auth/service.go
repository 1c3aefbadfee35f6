// Package auth はサインアップ・ログイン・フェデレーションログインと
// セッションクレデンシャルの発行・検証を提供する。
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/repository"
	"github.com/hitoshi/taskman/internal/security"
)

// SessionMinter はセッションクレデンシャルの発行インターフェース。
// SessionIssuerの部分集合として定義する。
type SessionMinter interface {
	Issue(userID string) (string, error)
}

// MetricsRecorder は認証イベントのメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordSignup()
	RecordLoginSuccess()
	RecordLoginFailure()
	RecordGoogleLogin()
}

// Service は認証に関するビジネスロジックを提供する。
// パスワードハッシュや生パスワードはレスポンスにもログにも出さない。
type Service struct {
	users    repository.UserRepository
	hasher   security.PasswordHasher
	verifier TokenVerifier
	sessions SessionMinter
	metrics  MetricsRecorder
}

// NewService はServiceを生成する。
// metricsはnilを許容する（記録しない）。
func NewService(
	users repository.UserRepository,
	hasher security.PasswordHasher,
	verifier TokenVerifier,
	sessions SessionMinter,
	metrics MetricsRecorder,
) *Service {
	return &Service{
		users:    users,
		hasher:   hasher,
		verifier: verifier,
		sessions: sessions,
		metrics:  metrics,
	}
}

// Signup は新規ユーザーを登録し、セッションクレデンシャルを発行する。
// メールアドレスが既に使われている場合はDUPLICATE_EMAILを返す。
func (s *Service) Signup(ctx context.Context, name, email, password string) (*model.User, string, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if name == "" {
		return nil, "", model.NewValidationError("名前は必須です")
	}
	if email == "" {
		return nil, "", model.NewValidationError("メールアドレスは必須です")
	}
	if password == "" {
		return nil, "", model.NewValidationError("パスワードは必須です")
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to find user by email: %w", err)
	}
	if existing != nil {
		return nil, "", model.NewDuplicateEmailError()
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Provider:     model.ProviderLocal,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// 事前チェックと競合した場合はリポジトリが一意制約違反を
	// DUPLICATE_EMAILに変換して返す
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	credential, err := s.sessions.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue session credential: %w", err)
	}

	slog.Info("new user signed up",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)
	if s.metrics != nil {
		s.metrics.RecordSignup()
	}

	return user, credential, nil
}

// Login はメールアドレスとパスワードでユーザーを認証し、
// セッションクレデンシャルを発行する。
// ユーザー列挙を防ぐため、「ユーザー不在」と「パスワード不一致」は
// 同一のINVALID_CREDENTIALSを返す。
// パスワードハッシュが空のアカウント（フェデレーション専用）は
// どのパスワードでもログインできない。
func (s *Service) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	email = strings.TrimSpace(email)

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to find user by email: %w", err)
	}
	if user == nil || !s.hasher.Verify(user.PasswordHash, password) {
		if s.metrics != nil {
			s.metrics.RecordLoginFailure()
		}
		return nil, "", model.NewInvalidCredentialsError()
	}

	credential, err := s.sessions.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue session credential: %w", err)
	}

	slog.Info("user logged in", slog.String("user_id", user.ID))
	if s.metrics != nil {
		s.metrics.RecordLoginSuccess()
	}

	return user, credential, nil
}

// GoogleLogin はGoogle発行のIDトークンでユーザーを認証し、
// セッションクレデンシャルを発行する。
// 未登録メールアドレスの場合はパスワードなしのユーザーを自動作成する。
// ローカルアカウントが既に存在する場合はproviderをgoogleに更新する
// （初回フェデレーションサインイン時のアカウントリンク）。既存の
// パスワードは保持され、以後もパスワードログインは可能なまま。
func (s *Service) GoogleLogin(ctx context.Context, idToken string) (*model.User, string, error) {
	if idToken == "" {
		return nil, "", model.NewMissingTokenError()
	}

	claims, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		slog.Warn("google token verification failed", slog.String("error", err.Error()))
		return nil, "", model.NewInvalidTokenError()
	}

	user, err := s.users.FindByEmail(ctx, claims.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to find user by email: %w", err)
	}

	now := time.Now()
	if user == nil {
		user = &model.User{
			ID:           uuid.New().String(),
			Name:         claims.Name,
			Email:        claims.Email,
			PasswordHash: "",
			Provider:     model.ProviderGoogle,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, "", err
		}
		slog.Info("new user created via google login",
			slog.String("user_id", user.ID),
			slog.String("email", user.Email),
		)
	} else if user.Provider != model.ProviderGoogle {
		user.Provider = model.ProviderGoogle
		user.UpdatedAt = now
		if err := s.users.Update(ctx, user); err != nil {
			return nil, "", fmt.Errorf("failed to link google provider: %w", err)
		}
		slog.Info("existing account linked to google",
			slog.String("user_id", user.ID),
		)
	}

	credential, err := s.sessions.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue session credential: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordGoogleLogin()
	}

	return user, credential, nil
}

// GetCurrentUser は検証済みユーザーIDから現在のユーザーを取得する。
func (s *Service) GetCurrentUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUnauthorizedError()
	}
	return user, nil
}
