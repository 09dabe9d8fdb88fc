// Package session はセッションCookieのエンコード・デコードを提供する。
//
// このパッケージはトランスポート表現の変換のみを担当し、トークンの
// 検証は一切行わない。信頼の確立はIdPへの問い合わせ（internal/auth）で行う。
package session

import (
	"net/http"
	"time"
)

// DefaultCookieName はセッションCookieの既定の名前。
const DefaultCookieName = "token"

// Codec はセッションCookieの発行・破棄・取り出しを行う。
// 発行と破棄は常に同一のスコープ属性（Path, Domain）を使う。
type Codec struct {
	Name   string
	Path   string
	Domain string
}

// NewCodec は既定の属性（名前token、パス/）を持つCodecを生成する。
func NewCodec(domain string) *Codec {
	return &Codec{
		Name:   DefaultCookieName,
		Path:   "/",
		Domain: domain,
	}
}

// Issue はアクセストークンを保持するセッションCookieを設定する。
// HttpOnly、Secure、SameSite=Laxを常に付与し、ttl秒後に失効する。
func (c *Codec) Issue(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    token,
		Path:     c.Path,
		Domain:   c.Domain,
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear は即時失効するセッションCookieを設定し、クライアント側の
// セッションを破棄する。スコープ属性はIssueと同一。
func (c *Codec) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    "",
		Path:     c.Path,
		Domain:   c.Domain,
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Extract はリクエストからアクセストークンを取り出す。
// Cookieが存在しないか空の場合はfalseを返す。検証は行わない。
func (c *Codec) Extract(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(c.Name)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}
