// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizerService はベンダーのレスポンスに含まれる自由テキスト
// （天候の説明文、地名）をサニタイズし、マークアップの混入を防ぐ。
// bluemondayのStrictPolicyにより全てのHTMLタグが除去される。
// 出力はHTMLではなくJSONデータとして扱われるため、
// bluemondayがエスケープしたエンティティはプレーンテキストへ戻す。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizerService は第三者由来テキストのサニタイズ機能のインターフェースを定義する。
// 標準形の天気データを構築する際に使用される。
type TextSanitizerService interface {
	// Sanitize はテキストから全てのHTMLタグを除去してプレーンテキストを返す。
	// HTMLエンティティは元の文字へ戻し、前後の空白もトリムする。
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
// StrictPolicyは許可タグを一切持たず、全てのHTML要素を除去する。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize はテキストから全てのHTMLタグを除去してプレーンテキストを返す。
// StrictPolicyはアポストロフィやアンパサンドをHTMLエンティティへ
// エスケープするため、タグ除去後にUnescapeStringで元の文字へ戻す。
func (s *textSanitizer) Sanitize(raw string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(raw)))
}

// compile-time interface check
var _ TextSanitizerService = (*textSanitizer)(nil)
