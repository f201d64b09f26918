package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	// defaultMaxRetries はプロバイダー呼び出しの再試行回数の既定値。
	// 初回 + 2回の再試行で最大3回試行する。
	defaultMaxRetries = 2
	// retryInterval は再試行の間に挟む待機時間。
	retryInterval = 500 * time.Millisecond
	// maxResponseSize はレスポンスボディの最大読み取りサイズ（5MB）。
	maxResponseSize = 5 * 1024 * 1024
)

// userAgent は全プロバイダー呼び出しで送信するUser-Agentヘッダー。
const userAgent = "Newsdesk/1.0 News Aggregator"

// fetchJSON は指定URLへGETリクエストを発行し、レスポンスJSONをoutへデコードする。
// トランスポートエラーおよび429/5xxはmaxRetries回まで再試行する。
// 認証エラー等の4xxは再試行しても回復しないため即座にエラーを返す。
// 再試行はアグリゲーターから見えないトランスポートレベルのポリシーであり、
// 全プロバイダーに一律に適用される。
func fetchJSON(ctx context.Context, client *http.Client, logger *slog.Logger, providerName, rawURL string, maxRetries int, out any) error {
	if maxRetries < 0 {
		maxRetries = defaultMaxRetries
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		// 2回目以降は一定間隔を空ける
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryInterval):
			}
			logger.Info("プロバイダー呼び出しを再試行します",
				slog.String("provider", providerName),
				slog.Int("attempt", attempt+1),
			)
		}

		retryable, err := doFetchJSON(ctx, client, providerName, rawURL, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}

	logger.Error("プロバイダー呼び出しに失敗しました",
		slog.String("provider", providerName),
		slog.String("error", lastErr.Error()),
	)
	return lastErr
}

// doFetchJSON は1回分のGETリクエストを実行する。
// 戻り値の第1要素は再試行可能なエラーかどうかを示す。
func doFetchJSON(ctx context.Context, client *http.Client, providerName, rawURL string, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return false, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return true, fmt.Errorf("HTTPリクエストに失敗しました: %w", err)
	}
	defer resp.Body.Close()

	// 429/5xxは一時的な失敗として再試行対象、その他の非200は即時失敗
	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return retryable, fmt.Errorf("%s APIがステータス %d を返しました", providerName, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return true, fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return false, fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
	}

	return false, nil
}
