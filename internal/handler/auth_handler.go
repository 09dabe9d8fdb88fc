// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/storeman/internal/middleware"
	"github.com/hitoshi/storeman/internal/model"
	"github.com/hitoshi/storeman/internal/session"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	SignIn(ctx context.Context, email, password string) (*model.Session, error)
}

// AuthHandler はサインイン・サインアウトのHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	cookies *session.Codec

	// fallbackMaxAge はIdPがexpires_inを返さない場合のCookie TTL（秒）。
	fallbackMaxAge int
}

// NewAuthHandler はAuthHandlerを生成する。
// fallbackMaxAgeが0以下の場合は既定の1時間を使う。
func NewAuthHandler(service AuthServiceInterface, cookies *session.Codec, fallbackMaxAge int) *AuthHandler {
	if fallbackMaxAge <= 0 {
		fallbackMaxAge = 3600
	}
	return &AuthHandler{
		service:        service,
		cookies:        cookies,
		fallbackMaxAge: fallbackMaxAge,
	}
}

// loginRequest はサインインのリクエストボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login はメールアドレスとパスワードでサインインし、セッションCookieを発行する。
// Cookieが発行されるのは認証成功かつ管理者ロールの場合のみで、
// TTLにはIdPが報告したセッション有効期間を使用する。
// POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	sess, err := h.service.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		if apiErr, ok := model.AsAPIError(err); ok {
			middleware.WriteErrorResponse(w, apiErr)
			return
		}
		slog.Error("sign-in failed unexpectedly", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	// IdPがexpires_inを報告しない場合は設定のフォールバックTTLを使う
	maxAge := sess.ExpiresIn
	if maxAge <= 0 {
		maxAge = h.fallbackMaxAge
	}
	h.cookies.Issue(w, sess.AccessToken, time.Duration(maxAge)*time.Second)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"success": true,
	})
}

// Logout はセッションCookieを破棄する。
// 既存セッションの有無に関わらず常に成功する（冪等）。
// サーバー側にセッション状態を持たないため、IdPへの問い合わせは行わない。
// POST /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.cookies.Clear(w)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"message": "Logged out.",
	})
}
