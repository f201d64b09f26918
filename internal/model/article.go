// Package model はドメインモデルを定義する。
package model

import "time"

// プロバイダーの表示名。Article.Sourceとpreferences.sourcesの両方で使用する。
const (
	// SourceNewsAPI はNewsAPIプロバイダーの表示名。
	SourceNewsAPI = "NewsAPI"
	// SourceGuardian はThe Guardianプロバイダーの表示名。
	SourceGuardian = "The Guardian"
	// SourceNYT はNew York Timesプロバイダーの表示名。
	SourceNYT = "New York Times"
)

// DefaultCategory はプロバイダーがカテゴリを返さない場合の既定値。
const DefaultCategory = "general"

// Article はプロバイダー横断で正規化された記事を表す。
// IDはプロバイダー内でのみ一意であり、プロバイダーをまたいだ一意性は保証されない。
type Article struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Source      string    `json:"source"`
	Author      string    `json:"author"`
	URL         string    `json:"url"`
	ImageURL    string    `json:"image_url,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	Category    string    `json:"category"`
}

// FilterParams はユーザーが明示的に指定したフィルタを表す。
// すべて任意であり、未指定のフィールドは「制約なし」または
// 「設定のデフォルトを使用」を意味する。
type FilterParams struct {
	Query    string   `json:"query,omitempty"`
	Date     string   `json:"date,omitempty"` // YYYY-MM-DD（単一日）
	Category string   `json:"category,omitempty"`
	Sources  []string `json:"sources,omitempty"`
}

// Preferences は永続化されるユーザー設定を表す。
// 保存時は常に全体を上書きする。
type Preferences struct {
	Sources    []string `json:"sources"`
	Categories []string `json:"categories"`
	Authors    []string `json:"authors"`
}

// DefaultPreferences は初回起動時の既定設定を返す。
// 全プロバイダーが有効で、カテゴリと著者のフィルタは空。
func DefaultPreferences() Preferences {
	return Preferences{
		Sources:    []string{SourceNewsAPI, SourceGuardian, SourceNYT},
		Categories: []string{},
		Authors:    []string{},
	}
}

// EffectiveParams はフィルタと設定を統合した実効クエリパラメータ。
// 各プロバイダーアダプターへの入力となる。
type EffectiveParams struct {
	Query    string
	Date     string // YYYY-MM-DD、未指定の場合は空文字列
	Category string
	// Sources は有効化するプロバイダーの集合（明示フィルタ、なければ設定値）。
	Sources []string
	// SourceFilter はユーザーが明示的に指定したソースフィルタのカンマ結合。
	// 設定由来のデフォルトは含まず、NewsAPIのsourcesパラメータへそのまま渡される。
	SourceFilter string
}
