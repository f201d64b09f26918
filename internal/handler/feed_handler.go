package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/newsdesk/internal/feedstate"
	"github.com/hitoshi/newsdesk/internal/model"
)

// FeedControllerInterface はフィードハンドラーが必要とするコントローラーの
// インターフェース。プレゼンテーション層のユーザー操作を状態変更として受け取る。
type FeedControllerInterface interface {
	// SetQuery は検索語を更新する（デバウンス適用）。
	SetQuery(query string)
	// SetFilters はフィルタ集合を全体置換する。
	SetFilters(filters model.FilterParams)
	// SavePreferences は設定を全体置換して永続化する。
	SavePreferences(ctx context.Context, prefs model.Preferences) error
	// Snapshot は現在の集約状態を返す。
	Snapshot() feedstate.Snapshot
}

// FeedHandler は状態を持つフィードのHTTPハンドラー。
// {articles, isLoading, isError} スナップショットの読み取りと、
// 検索・フィルタ変更のユーザー操作の受付を提供する。
type FeedHandler struct {
	controller FeedControllerInterface
}

// NewFeedHandler はFeedHandlerを生成する。
func NewFeedHandler(controller FeedControllerInterface) *FeedHandler {
	return &FeedHandler{controller: controller}
}

// searchRequest は検索語更新リクエストのボディ。
type searchRequest struct {
	Query string `json:"query"`
}

// GetFeed は現在のフィード状態を返す。
// GET /api/feed
func (h *FeedHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.controller.Snapshot())
}

// Search は検索語を更新する。集約はデバウンスウィンドウ後に起動されるため
// 202を返し、結果はGET /api/feedで観測する。
// POST /api/feed/search
func (h *FeedHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	h.controller.SetQuery(req.Query)
	w.WriteHeader(http.StatusAccepted)
}

// UpdateFilters はフィルタ集合を全体置換する。
// PUT /api/feed/filters
func (h *FeedHandler) UpdateFilters(w http.ResponseWriter, r *http.Request) {
	var filters model.FilterParams
	if err := json.NewDecoder(r.Body).Decode(&filters); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	if unknown, ok := validateSources(filters.Sources); !ok {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidSourceError(unknown))
		return
	}

	h.controller.SetFilters(filters)
	w.WriteHeader(http.StatusAccepted)
}
