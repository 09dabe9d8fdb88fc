// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizerService は管理者が入力した商品テキストをサニタイズし、
// 公開ストアフロントに表示される値にマークアップが混入することを防ぐ。
// bluemondayのStrictPolicyですべてのHTMLタグを除去する。
package security

import "github.com/microcosm-cc/bluemonday"

// TextSanitizerService はテキストのサニタイズ機能のインターフェースを定義する。
// 商品の作成・更新時、name/descriptionの保存前に使用される。
type TextSanitizerService interface {
	// Sanitize は入力からすべてのHTMLタグを除去したテキストを返す。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// textSanitizer はTextSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerServiceの新しいインスタンスを生成する。
// ポリシーはStrictPolicy（全タグ除去）を使用する。
func NewTextSanitizer() TextSanitizerService {
	return &textSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize は入力からすべてのHTMLタグを除去したテキストを返す。
func (s *textSanitizer) Sanitize(raw string) string {
	if raw == "" {
		return ""
	}
	return s.policy.Sanitize(raw)
}
