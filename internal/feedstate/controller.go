// Package feedstate は現在のフィルタ選択と集約結果の状態管理を提供する。
// 検索入力のデバウンス、状態変更を起点とした集約の起動、
// 古い実行結果の破棄（世代ガード）、およびプレゼンテーション層へ公開する
// {articles, isLoading, isError} スナップショットを含む。
package feedstate

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hitoshi/newsdesk/internal/model"
)

// AggregatorService は統合フィード構築のインターフェース。
type AggregatorService interface {
	Aggregate(ctx context.Context, filters model.FilterParams, prefs model.Preferences) ([]model.Article, error)
}

// PreferencesService はユーザー設定管理のインターフェース。
type PreferencesService interface {
	Current() model.Preferences
	Save(ctx context.Context, prefs model.Preferences) error
}

// Snapshot は現在の集約状態の読み取り専用ビュー。
type Snapshot struct {
	Articles  []model.Article `json:"articles"`
	IsLoading bool            `json:"is_loading"`
	IsError   bool            `json:"is_error"`
}

// Controller はフィルタ・設定の変更を集約の起動へ変換する。
// 状態遷移はすべてmuで直列化され、各遷移は次の遷移が観測される前に
// 完全に適用される。
type Controller struct {
	agg      AggregatorService
	prefsSvc PreferencesService
	logger   *slog.Logger
	debounce time.Duration

	mu          sync.Mutex
	filters     model.FilterParams
	articles    []model.Article
	isLoading   bool
	isError     bool
	generation  uint64
	searchTimer *time.Timer
}

// NewController はControllerの新しいインスタンスを生成する。
// 初期フィルタは日付のみ「今日」に設定される。debounceが0以下の場合は
// 検索入力を即時に適用する。
// 構築時点では集約を起動しない。設定の読み込み後にRefreshを呼び出すこと。
func NewController(agg AggregatorService, prefsSvc PreferencesService, logger *slog.Logger, debounce time.Duration) *Controller {
	return &Controller{
		agg:      agg,
		prefsSvc: prefsSvc,
		logger:   logger,
		debounce: debounce,
		filters: model.FilterParams{
			Date: time.Now().Format("2006-01-02"),
		},
		articles: []model.Article{},
	}
}

// SetQuery は検索語を更新する。デバウンスウィンドウ内の連続入力は
// 最後の値のみが適用される（キーストロークごとに集約を起動しない）。
// 現在の検索語と同一の場合は何もしない。
func (c *Controller) SetQuery(query string) {
	c.mu.Lock()

	if c.filters.Query == query {
		c.mu.Unlock()
		return
	}

	if c.searchTimer != nil {
		c.searchTimer.Stop()
		c.searchTimer = nil
	}

	if c.debounce <= 0 {
		c.filters.Query = query
		c.startRefreshLocked()
		c.mu.Unlock()
		return
	}

	c.searchTimer = time.AfterFunc(c.debounce, func() {
		c.applyQuery(query)
	})
	c.mu.Unlock()
}

// applyQuery はデバウンス満了後に検索語を適用して集約を起動する。
func (c *Controller) applyQuery(query string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.filters.Query == query {
		return
	}
	c.filters.Query = query
	c.startRefreshLocked()
}

// SetFilters はフィルタ集合を全体置換して集約を起動する。
// 保留中のデバウンス検索は破棄される（全体置換が優先）。
func (c *Controller) SetFilters(filters model.FilterParams) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.searchTimer != nil {
		c.searchTimer.Stop()
		c.searchTimer = nil
	}

	c.filters = filters
	c.startRefreshLocked()
}

// Filters は現在のフィルタを返す。
func (c *Controller) Filters() model.FilterParams {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters
}

// SavePreferences は設定を全体置換して永続化し、集約を再起動する。
func (c *Controller) SavePreferences(ctx context.Context, prefs model.Preferences) error {
	if err := c.prefsSvc.Save(ctx, prefs); err != nil {
		return err
	}

	c.mu.Lock()
	c.startRefreshLocked()
	c.mu.Unlock()
	return nil
}

// Refresh は現在のフィルタと設定で集約を起動する。
func (c *Controller) Refresh() {
	c.mu.Lock()
	c.startRefreshLocked()
	c.mu.Unlock()
}

// Snapshot は現在の集約状態を返す。
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Articles:  c.articles,
		IsLoading: c.isLoading,
		IsError:   c.isError,
	}
}

// Stop は保留中のデバウンスタイマーを停止する。
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.searchTimer != nil {
		c.searchTimer.Stop()
		c.searchTimer = nil
	}
}

// startRefreshLocked は世代を進めて非同期の集約を起動する。
// 呼び出し元はmuを保持していること。
// 世代番号が(フィルタ, 設定)ペアの暗黙のキャッシュキーとして機能し、
// 後続のリクエストが開始された後に解決した古い結果は適用されない。
func (c *Controller) startRefreshLocked() {
	c.generation++
	gen := c.generation
	c.isLoading = true
	c.isError = false

	filters := c.filters
	prefs := c.prefsSvc.Current()

	go c.run(gen, filters, prefs)
}

// run は1回分の集約を実行し、結果が最新世代のものである場合のみ適用する。
func (c *Controller) run(gen uint64, filters model.FilterParams, prefs model.Preferences) {
	articles, err := c.agg.Aggregate(context.Background(), filters, prefs)

	c.mu.Lock()
	defer c.mu.Unlock()

	// 古い実行の結果は破棄する
	if gen != c.generation {
		c.logger.Debug("古い集約結果を破棄しました",
			slog.Uint64("generation", gen),
			slog.Uint64("current_generation", c.generation),
		)
		return
	}

	c.isLoading = false
	if err != nil {
		c.isError = true
		c.logger.Warn("集約に失敗しました",
			slog.String("error", err.Error()),
		)
		return
	}

	c.articles = articles
}
