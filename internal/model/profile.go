// Package model はドメインモデルを定義する。
package model

import "time"

// RoleAdmin は管理APIへのアクセスを許可する唯一のロール。
const RoleAdmin = "admin"

// Identity は外部IdPで検証済みのユーザーを表す。
// この系からは読み取り専用。
type Identity struct {
	ID    string
	Email string
}

// Profile はIdentityに紐づくローカルのユーザー属性を表す。
// 認可判定にはroleのみを使用する。
type Profile struct {
	ID         string
	IdentityID string
	Email      string
	Name       string
	Phone      string
	Role       string
	CreatedAt  time.Time
}

// IsAdmin はプロフィールが管理者ロールを持つかどうかを返す。
func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Session はサインイン成功時にIdPから発行されたセッションを表す。
// サーバー側には永続化せず、Cookieとしてクライアントに渡す。
type Session struct {
	AccessToken string
	ExpiresIn   int // 秒
}

// Principal は認可を通過したリクエストの主体を表す。
type Principal struct {
	Identity Identity
	Role     string
}
