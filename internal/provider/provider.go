// Package provider は各ニュースプロバイダーAPIのアダプターを提供する。
// 各アダプターは共通のEffectiveParamsをプロバイダー固有のクエリ語彙へ変換し、
// 1回のHTTP GETでレスポンスを取得して共通のArticle形式へ正規化する。
package provider

import (
	"context"
	"time"

	"github.com/hitoshi/newsdesk/internal/model"
)

// Provider はニュースプロバイダーアダプターのインターフェース。
// Fetchは1ページ分の結果を返し、トランスポート・パースのエラーは
// 呼び出し元（アグリゲーター）へそのまま返す。内部で握りつぶさない。
type Provider interface {
	// Name はプロバイダーの表示名を返す。Article.Sourceと一致する。
	Name() string
	// Fetch は実効パラメータに基づいて記事を取得し、正規化して返す。
	Fetch(ctx context.Context, params model.EffectiveParams) ([]model.Article, error)
}

// DescriptionSanitizer は記事説明文のプレーンテキスト化のインターフェース。
// テスト時にモックに差し替え可能。
type DescriptionSanitizer interface {
	Sanitize(raw string) string
}

// timestampLayouts は各プロバイダーの日時表記のパースに試行するレイアウト。
// NewsAPIとThe GuardianはRFC3339、NYTはタイムゾーンにコロンを含まない形式を返す。
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
}

// parseTimestamp はプロバイダーの日時文字列をUTCのtime.Timeへ正規化する。
// どのレイアウトにも一致しない場合はfalseを返し、呼び出し元は該当レコードを
// 破棄する（不正なタイムスタンプを持つ記事は出力しない）。
func parseTimestamp(value string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
