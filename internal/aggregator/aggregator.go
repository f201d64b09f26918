// Package aggregator は複数プロバイダーの結果を単一フィードへ統合する。
// 実効パラメータの導出、並行ファンアウト、部分失敗の許容、マージ・ソート・
// 事後フィルタ、および鮮度ウィンドウ付きの結果キャッシュを含む。
package aggregator

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/newsdesk/internal/model"
	"github.com/hitoshi/newsdesk/internal/provider"
)

// ErrAllProvidersFailed は有効な全プロバイダーが失敗した場合に返される。
// 呼び出し元はこれにより「0件の結果」と「取得失敗」を区別できる。
var ErrAllProvidersFailed = errors.New("すべての有効なプロバイダーからの取得に失敗しました")

// MetricsRecorder は集約処理のメトリクス記録のインターフェース。
// テスト時にモックに差し替え可能。
type MetricsRecorder interface {
	RecordProviderSuccess(providerName string, articles int)
	RecordProviderFailure(providerName string)
	RecordProviderLatency(providerName string, duration time.Duration)
	RecordCacheHit()
	RecordCacheMiss()
	RecordArticlesMerged(count int)
}

// Aggregator は有効な全プロバイダーへ並行にファンアウトし、
// 個別の失敗を許容しながら結果を統合する。
type Aggregator struct {
	providers []provider.Provider // 列挙順がマージ時の連結順になる
	cache     *resultCache
	metrics   MetricsRecorder
	logger    *slog.Logger
}

// New はAggregatorの新しいインスタンスを生成する。
// providersの順序は連結順として保持される。cacheTTLが0以下の場合は
// 結果キャッシュを無効化する。
func New(providers []provider.Provider, metrics MetricsRecorder, logger *slog.Logger, cacheTTL time.Duration) *Aggregator {
	return &Aggregator{
		providers: providers,
		cache:     newResultCache(cacheTTL),
		metrics:   metrics,
		logger:    logger,
	}
}

// Stop はキャッシュのバックグラウンドゴルーチンを停止する。
func (a *Aggregator) Stop() {
	a.cache.Stop()
}

// Aggregate はフィルタと設定から統合フィードを構築する。
//
// アルゴリズム:
//  1. 実効パラメータを導出する
//  2. 有効なプロバイダー集合を決定する（明示フィルタ、なければ設定）
//  3. 有効な全プロバイダーを同一パラメータで並行に呼び出す
//  4. 全呼び出しの完了を待つ。個別の失敗は空の寄与として扱う
//  5. 成功した寄与をプロバイダー列挙順で連結する
//  6. publishedAt降順で安定ソートする
//  7. 設定の著者リストが非空の場合のみ著者フィルタを適用する
//
// 有効なプロバイダーがすべて失敗した場合はErrAllProvidersFailedを返す。
// 有効なプロバイダーが0件の場合は空のフィードを返す（何も試行していないため
// エラーではない）。
func (a *Aggregator) Aggregate(ctx context.Context, filters model.FilterParams, prefs model.Preferences) ([]model.Article, error) {
	key := cacheKey(filters, prefs)
	if cached, ok := a.cache.Get(key); ok {
		a.metrics.RecordCacheHit()
		return cached, nil
	}
	a.metrics.RecordCacheMiss()

	start := time.Now()
	aggregationID := uuid.NewString()
	eff := DeriveParams(filters, prefs)

	enabled := make(map[string]bool, len(eff.Sources))
	for _, source := range eff.Sources {
		enabled[source] = true
	}

	// 各プロバイダーの結果を列挙順のスロットへ格納する。
	// 1プロバイダーの失敗は全体を失敗させない（join-all）。
	results := make([][]model.Article, len(a.providers))
	failures := make([]error, len(a.providers))
	var attempted int
	var wg sync.WaitGroup

	for i, p := range a.providers {
		if !enabled[p.Name()] {
			continue
		}
		attempted++

		wg.Add(1)
		go func(slot int, p provider.Provider) {
			defer wg.Done()

			fetchStart := time.Now()
			articles, err := p.Fetch(ctx, eff)
			a.metrics.RecordProviderLatency(p.Name(), time.Since(fetchStart))

			if err != nil {
				a.metrics.RecordProviderFailure(p.Name())
				failures[slot] = err
				a.logger.Warn("プロバイダーの取得に失敗しました（空の寄与として継続）",
					slog.String("aggregation_id", aggregationID),
					slog.String("provider", p.Name()),
					slog.String("error", err.Error()),
				)
				return
			}

			a.metrics.RecordProviderSuccess(p.Name(), len(articles))
			results[slot] = articles
		}(i, p)
	}

	wg.Wait()

	if attempted == 0 {
		return []model.Article{}, nil
	}

	var failed int
	for _, err := range failures {
		if err != nil {
			failed++
		}
	}
	if failed == attempted {
		a.logger.Error("すべての有効なプロバイダーが失敗しました",
			slog.String("aggregation_id", aggregationID),
			slog.Int("providers", attempted),
		)
		return nil, ErrAllProvidersFailed
	}

	// プロバイダー列挙順で連結（インターリーブしない）
	var combined []model.Article
	for _, articles := range results {
		combined = append(combined, articles...)
	}

	// publishedAt降順の安定ソート。同時刻の相対順序は連結順を保持する
	sort.SliceStable(combined, func(i, j int) bool {
		return combined[i].PublishedAt.After(combined[j].PublishedAt)
	})

	combined = filterByAuthors(combined, prefs.Authors)
	if combined == nil {
		combined = []model.Article{}
	}

	a.metrics.RecordArticlesMerged(len(combined))
	a.cache.Set(key, combined)

	a.logger.Info("集約が完了しました",
		slog.String("aggregation_id", aggregationID),
		slog.Int("providers_attempted", attempted),
		slog.Int("providers_failed", failed),
		slog.Int("articles", len(combined)),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)

	return combined, nil
}

// filterByAuthors は設定の著者リストによる事後フィルタを適用する。
// リストが空の場合は何も除外しない。著者名に優先著者のいずれかが
// 大文字小文字を無視した部分文字列として含まれる記事のみを残す。
func filterByAuthors(articles []model.Article, authors []string) []model.Article {
	if len(authors) == 0 {
		return articles
	}

	filtered := make([]model.Article, 0, len(articles))
	for _, article := range articles {
		author := strings.ToLower(article.Author)
		for _, preferred := range authors {
			if preferred == "" {
				continue
			}
			if strings.Contains(author, strings.ToLower(preferred)) {
				filtered = append(filtered, article)
				break
			}
		}
	}
	return filtered
}
