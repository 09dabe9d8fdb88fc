// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hitoshi/storeman/internal/model"
	"github.com/hitoshi/storeman/internal/session"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// principalContextKey はリクエストコンテキストに認可済み主体を格納するためのキー。
var principalContextKey = contextKey("principal")

// principalHolderKey はロギングミドルウェアが設置する受け皿のキー。
var principalHolderKey = contextKey("principalHolder")

// principalHolder は認可ミドルウェアが後から主体を書き込むための受け皿。
// ロギングミドルウェアは認可より外側で動くため、派生コンテキストへの注入
// だけでは主体が見えない。外側で設置した受け皿に内側から書き込むことで、
// アクセスログが認可済み主体を記録できる。
type principalHolder struct {
	principal *model.Principal
}

// Authorizer はアクセストークンから認可判定を行うインターフェース。
// auth.Serviceの部分集合として定義する。
type Authorizer interface {
	Authorize(ctx context.Context, accessToken string) (*model.Principal, error)
}

// DenialRecorder は認可拒否のメトリクス記録インターフェース。
type DenialRecorder interface {
	RecordAuthDenial(reason string)
}

// NewAuthMiddleware はセッションCookieからトークンを取り出し、認可判定を行う
// ミドルウェアを返す。認可を通過した主体をリクエストコンテキストに注入する。
//
// 拒否時の動作は失敗段階によって異なる:
//   - Cookieなし: 401。リソース操作は一切実行されない。
//   - トークン無効: 401を返し、Cookieを破棄する（再送しても無駄なため）。
//   - プロフィール不在・非管理者: 403。トークンはまだ有効な可能性があるため
//     Cookieは破棄しない（プロフィール登録遅延後の再試行を妨げない）。
//   - 上記以外の失敗: 500（フェイルクローズ。例外的な失敗を認可成功として
//     扱うことは決してない）。
//
// recorderはnilでもよい。
func NewAuthMiddleware(authorizer Authorizer, cookies *session.Codec, recorder DenialRecorder) func(next http.Handler) http.Handler {
	deny := func(reason model.ErrorKind) {
		if recorder != nil {
			recorder.RecordAuthDenial(string(reason))
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Cookieからトークンを取り出す
			token, ok := cookies.Extract(r)
			if !ok {
				deny(model.KindMissingCredential)
				WriteErrorResponse(w, model.NewMissingCredentialError())
				return
			}

			// 2. 検証→プロフィール→ロールの認可判定
			principal, err := authorizer.Authorize(r.Context(), token)
			if err != nil {
				apiErr, ok := model.AsAPIError(err)
				if !ok {
					slog.Error("authorization failed unexpectedly",
						slog.String("error", err.Error()),
					)
					deny(model.KindInternal)
					WriteInternalServerError(w)
					return
				}

				// 無効なトークンは即座に破棄させる
				if apiErr.Kind == model.KindInvalidCredential {
					cookies.Clear(w)
				}

				deny(apiErr.Kind)
				WriteErrorResponse(w, apiErr)
				return
			}

			// 3. 認可済み主体をコンテキストに注入
			// 外側のロギングミドルウェアが受け皿を設置していれば、そこにも
			// 書き込んでアクセスログにidentity_idを載せられるようにする
			if holder, ok := r.Context().Value(principalHolderKey).(*principalHolder); ok {
				holder.principal = principal
			}
			ctx := ContextWithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFromContext はリクエストコンテキストから認可済み主体を取得する。
// 認可ミドルウェアを通過したリクエストでのみ有効。
func PrincipalFromContext(ctx context.Context) (*model.Principal, error) {
	principal, ok := ctx.Value(principalContextKey).(*model.Principal)
	if !ok || principal == nil {
		return nil, fmt.Errorf("principal not found in context")
	}
	return principal, nil
}

// ContextWithPrincipal はコンテキストに認可済み主体を注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithPrincipal(ctx context.Context, principal *model.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}
