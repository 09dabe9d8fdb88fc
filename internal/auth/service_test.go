package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/storeman/internal/model"
)

// --- モック定義 ---

// mockProvider はIdentityProviderのモック実装
type mockProvider struct {
	signInFunc  func(ctx context.Context, email, password string) (*PasswordGrant, error)
	getUserFunc func(ctx context.Context, accessToken string) (*model.Identity, error)
}

func (m *mockProvider) SignInWithPassword(ctx context.Context, email, password string) (*PasswordGrant, error) {
	return m.signInFunc(ctx, email, password)
}

func (m *mockProvider) GetUser(ctx context.Context, accessToken string) (*model.Identity, error) {
	return m.getUserFunc(ctx, accessToken)
}

// mockProfileRepo はProfileRepositoryのモック実装
type mockProfileRepo struct {
	findFunc func(ctx context.Context, identityID string) (*model.Profile, error)
}

func (m *mockProfileRepo) FindByIdentityID(ctx context.Context, identityID string) (*model.Profile, error) {
	return m.findFunc(ctx, identityID)
}

func adminGrant() *PasswordGrant {
	return &PasswordGrant{
		AccessToken: "jwt-token",
		ExpiresIn:   3600,
		Identity:    model.Identity{ID: "user-1", Email: "admin@example.com"},
	}
}

func adminProfile() *model.Profile {
	return &model.Profile{
		ID:         "profile-1",
		IdentityID: "user-1",
		Email:      "admin@example.com",
		Role:       model.RoleAdmin,
	}
}

// --- テスト ---

// 管理者のサインイン成功時にセッションが返ることを検証
func TestService_SignIn_AdminSuccess(t *testing.T) {
	provider := &mockProvider{
		signInFunc: func(ctx context.Context, email, password string) (*PasswordGrant, error) {
			return adminGrant(), nil
		},
	}
	profiles := &mockProfileRepo{
		findFunc: func(ctx context.Context, identityID string) (*model.Profile, error) {
			if identityID != "user-1" {
				t.Errorf("identityID = %q, want %q", identityID, "user-1")
			}
			return adminProfile(), nil
		},
	}

	service := NewService(provider, profiles)
	session, err := service.SignIn(context.Background(), "admin@example.com", "password")
	if err != nil {
		t.Fatalf("SignIn returned unexpected error: %v", err)
	}

	if session.AccessToken != "jwt-token" {
		t.Errorf("AccessToken = %q, want grant token", session.AccessToken)
	}
	if session.ExpiresIn != 3600 {
		t.Errorf("ExpiresIn = %d, want 3600", session.ExpiresIn)
	}
}

// 認証済みでも非管理者にはセッションを発行しないことを検証
func TestService_SignIn_NonAdminDenied(t *testing.T) {
	provider := &mockProvider{
		signInFunc: func(ctx context.Context, email, password string) (*PasswordGrant, error) {
			return adminGrant(), nil
		},
	}
	profiles := &mockProfileRepo{
		findFunc: func(ctx context.Context, identityID string) (*model.Profile, error) {
			p := adminProfile()
			p.Role = "customer"
			return p, nil
		},
	}

	service := NewService(provider, profiles)
	_, err := service.SignIn(context.Background(), "customer@example.com", "password")
	if err == nil {
		t.Fatal("expected error for non-admin sign-in")
	}

	apiErr, ok := model.AsAPIError(err)
	if !ok {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if apiErr.Kind != model.KindInsufficientRole {
		t.Errorf("Kind = %q, want %q", apiErr.Kind, model.KindInsufficientRole)
	}
}

// プロフィールが存在しない場合にKindProfileNotFoundが返ることを検証
func TestService_SignIn_MissingProfile(t *testing.T) {
	provider := &mockProvider{
		signInFunc: func(ctx context.Context, email, password string) (*PasswordGrant, error) {
			return adminGrant(), nil
		},
	}
	profiles := &mockProfileRepo{
		findFunc: func(ctx context.Context, identityID string) (*model.Profile, error) {
			return nil, nil
		},
	}

	service := NewService(provider, profiles)
	_, err := service.SignIn(context.Background(), "admin@example.com", "password")

	apiErr, ok := model.AsAPIError(err)
	if !ok {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if apiErr.Kind != model.KindProfileNotFound {
		t.Errorf("Kind = %q, want %q", apiErr.Kind, model.KindProfileNotFound)
	}
}

// プロフィール参照の失敗もKindProfileNotFoundにまとめられることを検証
func TestService_SignIn_ProfileLookupError(t *testing.T) {
	provider := &mockProvider{
		signInFunc: func(ctx context.Context, email, password string) (*PasswordGrant, error) {
			return adminGrant(), nil
		},
	}
	profiles := &mockProfileRepo{
		findFunc: func(ctx context.Context, identityID string) (*model.Profile, error) {
			return nil, errors.New("connection refused")
		},
	}

	service := NewService(provider, profiles)
	_, err := service.SignIn(context.Background(), "admin@example.com", "password")

	apiErr, ok := model.AsAPIError(err)
	if !ok {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if apiErr.Kind != model.KindProfileNotFound {
		t.Errorf("Kind = %q, want %q", apiErr.Kind, model.KindProfileNotFound)
	}
}

// IdPのエラーがそのまま伝搬されることを検証
func TestService_SignIn_ProviderError(t *testing.T) {
	provider := &mockProvider{
		signInFunc: func(ctx context.Context, email, password string) (*PasswordGrant, error) {
			return nil, model.NewInvalidCredentialError("Invalid login credentials")
		},
	}
	profiles := &mockProfileRepo{
		findFunc: func(ctx context.Context, identityID string) (*model.Profile, error) {
			t.Fatal("profile repo should not be called when the grant fails")
			return nil, nil
		},
	}

	service := NewService(provider, profiles)
	_, err := service.SignIn(context.Background(), "admin@example.com", "wrong")

	apiErr, ok := model.AsAPIError(err)
	if !ok {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if apiErr.Kind != model.KindInvalidCredential {
		t.Errorf("Kind = %q, want %q", apiErr.Kind, model.KindInvalidCredential)
	}
}

// 有効なトークンを持つ管理者が認可されることを検証
func TestService_Authorize_AdminSuccess(t *testing.T) {
	provider := &mockProvider{
		getUserFunc: func(ctx context.Context, accessToken string) (*model.Identity, error) {
			if accessToken != "jwt-token" {
				t.Errorf("accessToken = %q, want %q", accessToken, "jwt-token")
			}
			return &model.Identity{ID: "user-1", Email: "admin@example.com"}, nil
		},
	}
	profiles := &mockProfileRepo{
		findFunc: func(ctx context.Context, identityID string) (*model.Profile, error) {
			return adminProfile(), nil
		},
	}

	service := NewService(provider, profiles)
	principal, err := service.Authorize(context.Background(), "jwt-token")
	if err != nil {
		t.Fatalf("Authorize returned unexpected error: %v", err)
	}

	if principal.Identity.ID != "user-1" {
		t.Errorf("Identity.ID = %q, want %q", principal.Identity.ID, "user-1")
	}
	if principal.Role != model.RoleAdmin {
		t.Errorf("Role = %q, want %q", principal.Role, model.RoleAdmin)
	}
}

// 無効なトークンでKindInvalidCredentialが返ることを検証
func TestService_Authorize_InvalidToken(t *testing.T) {
	provider := &mockProvider{
		getUserFunc: func(ctx context.Context, accessToken string) (*model.Identity, error) {
			return nil, model.NewInvalidCredentialError("token is expired")
		},
	}
	profiles := &mockProfileRepo{
		findFunc: func(ctx context.Context, identityID string) (*model.Profile, error) {
			t.Fatal("profile repo should not be called when the token is invalid")
			return nil, nil
		},
	}

	service := NewService(provider, profiles)
	_, err := service.Authorize(context.Background(), "expired")

	apiErr, ok := model.AsAPIError(err)
	if !ok {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if apiErr.Kind != model.KindInvalidCredential {
		t.Errorf("Kind = %q, want %q", apiErr.Kind, model.KindInvalidCredential)
	}
}

// 有効なトークンでもプロフィール不在なら403相当になることを検証
func TestService_Authorize_MissingProfile(t *testing.T) {
	provider := &mockProvider{
		getUserFunc: func(ctx context.Context, accessToken string) (*model.Identity, error) {
			return &model.Identity{ID: "user-2", Email: "ghost@example.com"}, nil
		},
	}
	profiles := &mockProfileRepo{
		findFunc: func(ctx context.Context, identityID string) (*model.Profile, error) {
			return nil, nil
		},
	}

	service := NewService(provider, profiles)
	_, err := service.Authorize(context.Background(), "jwt-token")

	apiErr, ok := model.AsAPIError(err)
	if !ok {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if apiErr.Kind != model.KindProfileNotFound {
		t.Errorf("Kind = %q, want %q", apiErr.Kind, model.KindProfileNotFound)
	}
}

// 有効なトークンでも非管理者は拒否されることを検証
func TestService_Authorize_NonAdmin(t *testing.T) {
	provider := &mockProvider{
		getUserFunc: func(ctx context.Context, accessToken string) (*model.Identity, error) {
			return &model.Identity{ID: "user-1", Email: "customer@example.com"}, nil
		},
	}
	profiles := &mockProfileRepo{
		findFunc: func(ctx context.Context, identityID string) (*model.Profile, error) {
			p := adminProfile()
			p.Role = "customer"
			return p, nil
		},
	}

	service := NewService(provider, profiles)
	_, err := service.Authorize(context.Background(), "jwt-token")

	apiErr, ok := model.AsAPIError(err)
	if !ok {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if apiErr.Kind != model.KindInsufficientRole {
		t.Errorf("Kind = %q, want %q", apiErr.Kind, model.KindInsufficientRole)
	}
}
