package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/storeman/internal/model"
	"github.com/hitoshi/storeman/internal/repository"
)

// Service は認証・認可に関するビジネスロジックを提供する。
// IdPによる検証とプロフィールストアのロール参照を組み合わせ、
// 管理者のみをセッション発行・保護操作に通す。
type Service struct {
	provider IdentityProvider
	profiles repository.ProfileRepository
}

// NewService はServiceを生成する。
func NewService(provider IdentityProvider, profiles repository.ProfileRepository) *Service {
	return &Service{
		provider: provider,
		profiles: profiles,
	}
}

// SignIn はメールアドレスとパスワードでサインインし、セッションを返す。
// セッションは次の3条件をすべて満たす場合のみ発行される:
//  1. IdPがパスワードグラントを受理した
//  2. Identityに対応するプロフィールが存在する
//  3. プロフィールのロールがadminである
//
// 正しく認証された非管理者も明示的に拒否され、セッションは発行されない。
func (s *Service) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	grant, err := s.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}

	profile, err := s.profiles.FindByIdentityID(ctx, grant.Identity.ID)
	if err != nil {
		slog.Error("profile lookup failed during sign-in",
			slog.String("identity_id", grant.Identity.ID),
			slog.String("error", err.Error()),
		)
		return nil, model.NewProfileNotFoundError()
	}
	if profile == nil {
		return nil, model.NewProfileNotFoundError()
	}

	if !profile.IsAdmin() {
		slog.Warn("sign-in denied: not an administrator",
			slog.String("email", grant.Identity.Email),
		)
		return nil, model.NewInsufficientRoleError()
	}

	slog.Info("administrator signed in",
		slog.String("identity_id", grant.Identity.ID),
		slog.String("email", grant.Identity.Email),
	)

	return &model.Session{
		AccessToken: grant.AccessToken,
		ExpiresIn:   grant.ExpiresIn,
	}, nil
}

// Authorize はアクセストークンから認可判定を行う。
// 検証→プロフィール参照→ロール確認の順に実行し、最初の失敗で打ち切る。
// 各段階の失敗はAPIErrorの種別で区別される:
//   - トークン無効: KindInvalidCredential（呼び出し側はCookieを破棄すべき）
//   - プロフィール不在・参照失敗: KindProfileNotFound
//   - 非管理者: KindInsufficientRole
func (s *Service) Authorize(ctx context.Context, accessToken string) (*model.Principal, error) {
	identity, err := s.provider.GetUser(ctx, accessToken)
	if err != nil {
		if _, ok := model.AsAPIError(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("identity verification failed: %w", err)
	}

	// プロフィール参照の失敗・不在はいずれも403にまとめる。
	// トークン自体はまだ有効な可能性がある（プロフィール登録の遅延等）ため、
	// この段階ではCookieを破棄させない。
	profile, err := s.profiles.FindByIdentityID(ctx, identity.ID)
	if err != nil {
		slog.Error("profile lookup failed during authorization",
			slog.String("identity_id", identity.ID),
			slog.String("error", err.Error()),
		)
		return nil, model.NewProfileNotFoundError()
	}
	if profile == nil {
		return nil, model.NewProfileNotFoundError()
	}

	if !profile.IsAdmin() {
		slog.Warn("access denied: not an administrator",
			slog.String("email", identity.Email),
		)
		return nil, model.NewInsufficientRoleError()
	}

	return &model.Principal{
		Identity: *identity,
		Role:     profile.Role,
	}, nil
}
