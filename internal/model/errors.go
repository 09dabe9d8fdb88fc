// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind はAPIエラーの機械判定用の種別。
// ハンドラーは文字列ではなくこの種別でステータスコードを決定する。
type ErrorKind string

// 定義済みエラー種別
const (
	KindMissingCredential ErrorKind = "MISSING_CREDENTIAL"
	KindInvalidCredential ErrorKind = "INVALID_CREDENTIAL"
	KindProfileNotFound   ErrorKind = "PROFILE_NOT_FOUND"
	KindInsufficientRole  ErrorKind = "INSUFFICIENT_ROLE"
	KindProductNotFound   ErrorKind = "PRODUCT_NOT_FOUND"
	KindUpstreamFailure   ErrorKind = "UPSTREAM_FAILURE"
	KindInternal          ErrorKind = "INTERNAL_ERROR"
)

// APIError は統一エラーフォーマットを表す。
// 種別と短い理由文字列のみを持ち、内部詳細はログにのみ記録する。
type APIError struct {
	Kind     ErrorKind // エラー種別
	Message  string    // クライアント向けの短い理由
	Category string    // カテゴリ: auth, product, system
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// HTTPStatus はエラー種別に対応するHTTPステータスコードを返す。
func (e *APIError) HTTPStatus() int {
	switch e.Kind {
	case KindMissingCredential, KindInvalidCredential:
		return http.StatusUnauthorized
	case KindProfileNotFound, KindInsufficientRole:
		return http.StatusForbidden
	case KindProductNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// AsAPIError はエラーチェーンからAPIErrorを取り出す。
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// NewMissingCredentialError はセッションCookie欠落エラーを生成する。
func NewMissingCredentialError() *APIError {
	return &APIError{
		Kind:     KindMissingCredential,
		Message:  "missing token",
		Category: "auth",
	}
}

// NewInvalidCredentialError は認証情報が無効な場合のエラーを生成する。
// reasonにはIdPが報告した理由をそのまま渡す。空の場合は既定の文言を使う。
func NewInvalidCredentialError(reason string) *APIError {
	if reason == "" {
		reason = "invalid token"
	}
	return &APIError{
		Kind:     KindInvalidCredential,
		Message:  reason,
		Category: "auth",
	}
}

// NewProfileNotFoundError はプロフィール未登録エラーを生成する。
func NewProfileNotFoundError() *APIError {
	return &APIError{
		Kind:     KindProfileNotFound,
		Message:  "user profile not found",
		Category: "auth",
	}
}

// NewInsufficientRoleError は管理者ロールを持たないユーザーのエラーを生成する。
func NewInsufficientRoleError() *APIError {
	return &APIError{
		Kind:     KindInsufficientRole,
		Message:  "not an administrator",
		Category: "auth",
	}
}

// NewProductNotFoundError は商品未検出エラーを生成する。
func NewProductNotFoundError(productID string) *APIError {
	return &APIError{
		Kind:     KindProductNotFound,
		Message:  fmt.Sprintf("product not found: %s", productID),
		Category: "product",
	}
}

// NewUpstreamError はIdPまたはストアが報告したエラーを生成する。
// コラボレーターのメッセージをそのまま伝搬する。
func NewUpstreamError(err error) *APIError {
	return &APIError{
		Kind:     KindUpstreamFailure,
		Message:  err.Error(),
		Category: "system",
	}
}
