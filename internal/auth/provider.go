// Package auth はIdPによる認証とロールに基づく認可判定を提供する。
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/hitoshi/storeman/internal/model"
)

const (
	tokenPath = "/auth/v1/token?grant_type=password"
	userPath  = "/auth/v1/user"
)

// PasswordGrant はパスワードグラント成功時にIdPが返すセッション情報。
type PasswordGrant struct {
	AccessToken string
	ExpiresIn   int // 秒
	Identity    model.Identity
}

// IdentityProvider は外部IdPへの問い合わせインターフェース。
// 認証情報の検証とトークン発行はすべてIdP側に委譲する。
type IdentityProvider interface {
	// SignInWithPassword はメールアドレスとパスワードでサインインし、
	// アクセストークンと検証済みIdentityを返す。
	SignInWithPassword(ctx context.Context, email, password string) (*PasswordGrant, error)
	// GetUser はアクセストークンに対応するIdentityを返す。
	// トークンが無効・期限切れの場合はKindInvalidCredentialのAPIErrorを返す。
	GetUser(ctx context.Context, accessToken string) (*model.Identity, error)
}

// SupabaseAuthConfig はSupabase Auth（GoTrue）クライアントの設定。
type SupabaseAuthConfig struct {
	URL        string // プロジェクトのベースURL
	ServiceKey string // apikeyヘッダーに使用するキー

	// テスト用にオーバーライド可能なURL
	TokenURL string
	UserURL  string
}

// SupabaseAuthProvider はSupabase AuthのREST APIによる認証を提供する。
type SupabaseAuthProvider struct {
	config SupabaseAuthConfig
}

// NewSupabaseAuthProvider はSupabaseAuthProviderを生成する。
func NewSupabaseAuthProvider(config SupabaseAuthConfig) *SupabaseAuthProvider {
	if config.TokenURL == "" {
		config.TokenURL = config.URL + tokenPath
	}
	if config.UserURL == "" {
		config.UserURL = config.URL + userPath
	}
	return &SupabaseAuthProvider{config: config}
}

// tokenResponse はトークンエンドポイントのレスポンス。
type tokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int          `json:"expires_in"`
	User        userResponse `json:"user"`
}

// userResponse はIdPが返すユーザー情報。
type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// errorResponse はIdPのエラーレスポンス。GoTrueはバージョンにより
// error_descriptionまたはmsgのどちらかに理由を入れて返す。
type errorResponse struct {
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
}

// reason は空でない方の理由文字列を返す。
func (e *errorResponse) reason() string {
	if e.ErrorDescription != "" {
		return e.ErrorDescription
	}
	return e.Msg
}

// SignInWithPassword はパスワードグラントでサインインする。
// IdPが拒否した場合はKindInvalidCredentialのAPIErrorにIdPの理由を載せて返す。
func (p *SupabaseAuthProvider) SignInWithPassword(ctx context.Context, email, password string) (*PasswordGrant, error) {
	payload, err := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode sign-in request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.TokenURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create sign-in request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", p.config.ServiceKey)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, model.NewInvalidCredentialError(fmt.Sprintf("sign-in request failed: %v", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read sign-in response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		_ = json.Unmarshal(body, &errResp)
		return nil, model.NewInvalidCredentialError(errResp.reason())
	}

	var tokenResp tokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, fmt.Errorf("failed to parse sign-in response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("empty access token in sign-in response")
	}

	return &PasswordGrant{
		AccessToken: tokenResp.AccessToken,
		ExpiresIn:   tokenResp.ExpiresIn,
		Identity: model.Identity{
			ID:    tokenResp.User.ID,
			Email: tokenResp.User.Email,
		},
	}, nil
}

// GetUser はアクセストークンに対応するIdentityをIdPから取得する。
// IdPが拒否した場合・到達できない場合はいずれもKindInvalidCredentialを返す。
// トークンの有効性判定はIdPに完全委譲しているため、検証できないトークンは
// 無効として扱う（フェイルクローズ）。
func (p *SupabaseAuthProvider) GetUser(ctx context.Context, accessToken string) (*model.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.UserURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create user request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("apikey", p.config.ServiceKey)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, model.NewInvalidCredentialError(fmt.Sprintf("user request failed: %v", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read user response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		_ = json.Unmarshal(body, &errResp)
		return nil, model.NewInvalidCredentialError(errResp.reason())
	}

	var userResp userResponse
	if err := json.Unmarshal(body, &userResp); err != nil {
		return nil, fmt.Errorf("failed to parse user response: %w", err)
	}
	if userResp.ID == "" {
		return nil, model.NewInvalidCredentialError("empty user in response")
	}

	return &model.Identity{
		ID:    userResp.ID,
		Email: userResp.Email,
	}, nil
}

// compile-time interface check
var _ IdentityProvider = (*SupabaseAuthProvider)(nil)
