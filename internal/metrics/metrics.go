// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector は集約パイプラインのPrometheusメトリクスを収集する。
// aggregator.MetricsRecorderを実装する。
type Collector struct {
	providerSuccess  *prometheus.CounterVec
	providerFail     *prometheus.CounterVec
	providerArticles *prometheus.CounterVec
	providerLatency  *prometheus.HistogramVec
	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter
	articlesMerged   prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		providerSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsdesk_provider_fetch_success_total",
			Help: "プロバイダー取得成功の合計数",
		}, []string{"provider"}),
		providerFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsdesk_provider_fetch_fail_total",
			Help: "プロバイダー取得失敗の合計数",
		}, []string{"provider"}),
		providerArticles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsdesk_provider_articles_total",
			Help: "プロバイダーから取得した記事の合計数",
		}, []string{"provider"}),
		providerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "newsdesk_provider_fetch_latency_seconds",
			Help:    "プロバイダー取得のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "newsdesk_aggregate_cache_hits_total",
			Help: "集約結果キャッシュのヒット数",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "newsdesk_aggregate_cache_misses_total",
			Help: "集約結果キャッシュのミス数",
		}),
		articlesMerged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "newsdesk_articles_merged_total",
			Help: "統合フィードとして返した記事の合計数",
		}),
	}

	reg.MustRegister(
		c.providerSuccess,
		c.providerFail,
		c.providerArticles,
		c.providerLatency,
		c.cacheHits,
		c.cacheMisses,
		c.articlesMerged,
	)

	return c
}

// RecordProviderSuccess はプロバイダー取得成功と取得記事数を記録する。
func (c *Collector) RecordProviderSuccess(providerName string, articles int) {
	c.providerSuccess.WithLabelValues(providerName).Inc()
	c.providerArticles.WithLabelValues(providerName).Add(float64(articles))
}

// RecordProviderFailure はプロバイダー取得失敗を記録する。
func (c *Collector) RecordProviderFailure(providerName string) {
	c.providerFail.WithLabelValues(providerName).Inc()
}

// RecordProviderLatency はプロバイダー取得のレイテンシを記録する。
func (c *Collector) RecordProviderLatency(providerName string, duration time.Duration) {
	c.providerLatency.WithLabelValues(providerName).Observe(duration.Seconds())
}

// RecordCacheHit は結果キャッシュのヒットを記録する。
func (c *Collector) RecordCacheHit() {
	c.cacheHits.Inc()
}

// RecordCacheMiss は結果キャッシュのミスを記録する。
func (c *Collector) RecordCacheMiss() {
	c.cacheMisses.Inc()
}

// RecordArticlesMerged は統合フィードとして返した記事数を記録する。
func (c *Collector) RecordArticlesMerged(count int) {
	c.articlesMerged.Add(float64(count))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
