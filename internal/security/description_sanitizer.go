// Package security はアプリケーションのセキュリティ機能を提供する。
//
// DescriptionSanitizerService はプロバイダーが返す記事説明文をプレーンテキストへ
// 正規化し、XSS攻撃などのセキュリティリスクからユーザーを保護する。
// The Guardianのtrailtextなど、一部プロバイダーは説明文をHTML断片として返すため、
// bluemondayライブラリで全タグを除去したうえでHTMLエンティティを復元する。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// DescriptionSanitizerService は記事説明文のサニタイズ機能のインターフェースを定義する。
// 各プロバイダーアダプターの正規化処理で使用される。
type DescriptionSanitizerService interface {
	// Sanitize は説明文からHTMLタグをすべて除去したプレーンテキストを返す。
	// HTMLエンティティ（&amp; 等）は対応する文字に復元され、前後の空白は取り除かれる。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// descriptionSanitizer はDescriptionSanitizerServiceの実装。
// bluemondayのStrictPolicyを保持し、スレッドセーフにサニタイズ処理を行う。
type descriptionSanitizer struct {
	policy *bluemonday.Policy
}

// NewDescriptionSanitizer はDescriptionSanitizerServiceの新しいインスタンスを生成する。
// StrictPolicyは許可タグを一切持たないため、すべてのタグと属性が除去される。
func NewDescriptionSanitizer() *descriptionSanitizer {
	return &descriptionSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize は説明文からHTMLタグを除去したプレーンテキストを返す。
func (s *descriptionSanitizer) Sanitize(raw string) string {
	if raw == "" {
		return ""
	}
	// StrictPolicyはタグ除去後にエンティティをエスケープしたまま残すため、
	// html.UnescapeStringで表示用の文字へ戻す。
	stripped := s.policy.Sanitize(raw)
	return strings.TrimSpace(html.UnescapeString(stripped))
}
