package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/hitoshi/newsdesk/internal/aggregator"
	"github.com/hitoshi/newsdesk/internal/model"
)

// AggregatorServiceInterface は記事ハンドラーが必要とする集約サービスのインターフェース。
type AggregatorServiceInterface interface {
	// Aggregate はフィルタと設定から統合フィードを構築する。
	Aggregate(ctx context.Context, filters model.FilterParams, prefs model.Preferences) ([]model.Article, error)
}

// PreferencesReader は現在の設定の読み取りインターフェース。
type PreferencesReader interface {
	Current() model.Preferences
}

// ArticlesHandler は統合フィード取得のHTTPハンドラー。
// ステートレスな1回分の集約を提供する（状態を持つフィードは/api/feed）。
type ArticlesHandler struct {
	aggregator AggregatorServiceInterface
	prefs      PreferencesReader
}

// NewArticlesHandler はArticlesHandlerを生成する。
func NewArticlesHandler(agg AggregatorServiceInterface, prefs PreferencesReader) *ArticlesHandler {
	return &ArticlesHandler{
		aggregator: agg,
		prefs:      prefs,
	}
}

// articlesResponse は記事一覧のレスポンス。
type articlesResponse struct {
	Articles []model.Article `json:"articles"`
	Count    int             `json:"count"`
}

// ListArticles はクエリパラメータのフィルタで集約を実行し統合フィードを返す。
// GET /api/articles?q=xxx&date=YYYY-MM-DD&category=xxx&sources=a,b
func (h *ArticlesHandler) ListArticles(w http.ResponseWriter, r *http.Request) {
	filters, apiErr := parseFilterParams(r)
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	articles, err := h.aggregator.Aggregate(r.Context(), filters, h.prefs.Current())
	if err != nil {
		if errors.Is(err, aggregator.ErrAllProvidersFailed) {
			writeAPIErrorResponse(w, http.StatusBadGateway, model.NewAllProvidersFailedError())
			return
		}
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, articlesResponse{
		Articles: articles,
		Count:    len(articles),
	})
}

// parseFilterParams はクエリパラメータからFilterParamsを構築して検証する。
func parseFilterParams(r *http.Request) (model.FilterParams, *model.APIError) {
	q := r.URL.Query()

	filters := model.FilterParams{
		Query:    q.Get("q"),
		Date:     q.Get("date"),
		Category: q.Get("category"),
	}

	if raw := q.Get("sources"); raw != "" {
		for _, source := range strings.Split(raw, ",") {
			source = strings.TrimSpace(source)
			if source != "" {
				filters.Sources = append(filters.Sources, source)
			}
		}
	}

	if strings.TrimSpace(filters.Date) != "" {
		if _, err := time.Parse("2006-01-02", strings.TrimSpace(filters.Date)); err != nil {
			return model.FilterParams{}, model.NewInvalidDateError(filters.Date)
		}
	}

	if unknown, ok := validateSources(filters.Sources); !ok {
		return model.FilterParams{}, model.NewInvalidSourceError(unknown)
	}

	return filters, nil
}
