package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/newsdesk/internal/middleware"
)

// HealthChecker はヘルスチェックで疎通確認する依存のインターフェース。
type HealthChecker interface {
	Ping() error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	Logger *slog.Logger

	// ミドルウェア依存
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// 集約フィード
	AggregatorService  AggregatorServiceInterface
	PreferencesService PreferencesReader
	FeedController     FeedControllerInterface

	// 運用系
	HealthChecker HealthChecker
	Metrics       http.Handler
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORSMiddleware → SecurityHeaders → Logging → Recovery → RateLimit
//
// 運用系ルート（/healthz, /metrics）はレート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// 全ルートに効くミドルウェア
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewRecoveryMiddleware())

	articlesHandler := NewArticlesHandler(deps.AggregatorService, deps.PreferencesService)
	feedHandler := NewFeedHandler(deps.FeedController)
	prefsHandler := NewPreferencesHandler(deps.PreferencesService, deps.FeedController)

	// --- 運用系ルート（レート制限なし） ---

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if err := deps.HealthChecker.Ping(); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	// --- APIルート ---
	// ミドルウェアスタック: RateLimit
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.Middleware())

		// 統合フィード（ステートレス）
		r.Get("/api/articles", articlesHandler.ListArticles)

		// 状態を持つフィード
		r.Route("/api/feed", func(r chi.Router) {
			r.Get("/", feedHandler.GetFeed)
			r.Post("/search", feedHandler.Search)
			r.Put("/filters", feedHandler.UpdateFilters)
		})

		// ユーザー設定
		r.Route("/api/preferences", func(r chi.Router) {
			r.Get("/", prefsHandler.GetPreferences)
			r.Put("/", prefsHandler.SavePreferences)
		})
	})

	return r
}
