package handler

import (
	"encoding/json"
	"net/http"

	"github.com/hitoshi/newsdesk/internal/model"
)

// PreferencesHandler はユーザー設定のHTTPハンドラー。
// 保存はコントローラー経由で行い、設定変更が即座にフィードへ反映される。
type PreferencesHandler struct {
	prefs      PreferencesReader
	controller FeedControllerInterface
}

// NewPreferencesHandler はPreferencesHandlerを生成する。
func NewPreferencesHandler(prefs PreferencesReader, controller FeedControllerInterface) *PreferencesHandler {
	return &PreferencesHandler{
		prefs:      prefs,
		controller: controller,
	}
}

// GetPreferences は現在の設定を返す。
// GET /api/preferences
func (h *PreferencesHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.prefs.Current())
}

// SavePreferences は設定を全体置換して永続化する。
// PUT /api/preferences
func (h *PreferencesHandler) SavePreferences(w http.ResponseWriter, r *http.Request) {
	var prefs model.Preferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	if unknown, ok := validateSources(prefs.Sources); !ok {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidSourceError(unknown))
		return
	}

	if err := h.controller.SavePreferences(r.Context(), prefs); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, h.prefs.Current())
}
