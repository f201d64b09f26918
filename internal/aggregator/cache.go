package aggregator

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/hitoshi/newsdesk/internal/model"
)

// cacheEntry はキャッシュされた集約結果1件分。
type cacheEntry struct {
	articles []model.Article
	storedAt time.Time
}

// resultCache は(フィルタ, 設定)ペアをキーとする集約結果のTTLキャッシュ。
// 鮮度ウィンドウ内の同一リクエストはネットワーク呼び出しを発生させない。
// どのフィールドの変更も異なるキーになるため、明示的な無効化は不要。
type resultCache struct {
	ttl time.Duration

	mu      sync.RWMutex
	entries map[string]cacheEntry

	stopCh chan struct{}
}

// newResultCache は新しいresultCacheを生成する。
// ttlが0以下の場合はキャッシュを無効化する（常にミス、クリーンアップなし）。
func newResultCache(ttl time.Duration) *resultCache {
	c := &resultCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		stopCh:  make(chan struct{}),
	}

	if ttl > 0 {
		go c.cleanupLoop()
	}

	return c
}

// Get はキーに対応する未失効の結果を返す。
func (c *resultCache) Get(key string) ([]model.Article, bool) {
	if c.ttl <= 0 {
		return nil, false
	}

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || time.Since(entry.storedAt) >= c.ttl {
		return nil, false
	}
	return entry.articles, true
}

// Set は結果をキャッシュに格納する。
func (c *resultCache) Set(key string, articles []model.Article) {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{articles: articles, storedAt: time.Now()}
	c.mu.Unlock()
}

// Len は現在のエントリ数を返す。テスト用。
func (c *resultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stop はクリーンアップのバックグラウンドゴルーチンを停止する。
func (c *resultCache) Stop() {
	close(c.stopCh)
}

// cleanupLoop はTTL間隔で失効エントリを削除する。
func (c *resultCache) cleanupLoop() {
	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.removeExpired()
		}
	}
}

// removeExpired は失効したエントリをすべて削除する。
func (c *resultCache) removeExpired() {
	now := time.Now()
	c.mu.Lock()
	for key, entry := range c.entries {
		if now.Sub(entry.storedAt) >= c.ttl {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}

// cacheKey は(フィルタ, 設定)ペアから決定的なキャッシュキーを生成する。
// 構造体のJSONエンコードはフィールド宣言順で安定している。
func cacheKey(filters model.FilterParams, prefs model.Preferences) string {
	key, err := json.Marshal(struct {
		Filters     model.FilterParams `json:"filters"`
		Preferences model.Preferences  `json:"preferences"`
	}{filters, prefs})
	if err != nil {
		// ドメイン型のみのエンコードは失敗しない
		return ""
	}
	return string(key)
}
