package aggregator

import (
	"strings"

	"github.com/hitoshi/newsdesk/internal/model"
)

// DeriveParams は明示フィルタと保存済み設定から実効クエリパラメータを導出する。
// 純粋関数であり、集約のたびに再実行される（キャッシュしない）。
//
// 各フィールドは独立にデフォルトされる:
//   - category: フィルタのカテゴリ。無ければ設定カテゴリを小文字化して
//     カンマ結合、それも無ければ空
//   - sources: フィルタのソース。無ければ設定のソース
//   - query: フィルタの検索語。無ければ空文字列（設定へはフォールバックしない）
//   - date: フィルタの日付（トリム後に非空の場合のみ）。設定へのフォールバックなし
func DeriveParams(filters model.FilterParams, prefs model.Preferences) model.EffectiveParams {
	eff := model.EffectiveParams{
		Query: filters.Query,
	}

	if filters.Category != "" {
		eff.Category = filters.Category
	} else if len(prefs.Categories) > 0 {
		lowered := make([]string, len(prefs.Categories))
		for i, cat := range prefs.Categories {
			lowered[i] = strings.ToLower(cat)
		}
		eff.Category = strings.Join(lowered, ",")
	}

	if len(filters.Sources) > 0 {
		eff.Sources = filters.Sources
	} else {
		eff.Sources = prefs.Sources
	}

	// 明示フィルタのソースのみを透過用に保持する（設定由来は含めない）
	eff.SourceFilter = strings.Join(filters.Sources, ",")

	if strings.TrimSpace(filters.Date) != "" {
		eff.Date = filters.Date
	}

	return eff
}
