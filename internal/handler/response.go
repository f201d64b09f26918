// Package handler はHTTP APIのハンドラーとルーティングを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/newsdesk/internal/middleware"
	"github.com/hitoshi/newsdesk/internal/model"
)

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	middleware.WriteErrorResponse(w, statusCode, apiErr)
}

// handleServiceError はサービス層のエラーをHTTPレスポンスへマッピングする。
// APIErrorはカテゴリに応じたステータスコードで返し、
// それ以外は詳細をログに記録して一般的な500を返す。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, statusForCategory(apiErr.Category), apiErr)
		return
	}

	slog.Error("unhandled service error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// statusForCategory はエラーカテゴリをHTTPステータスコードへ変換する。
func statusForCategory(category string) int {
	switch category {
	case "validation", "preferences":
		return http.StatusBadRequest
	case "provider":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// validSources は受け付けるプロバイダー表示名の集合。
var validSources = map[string]bool{
	model.SourceNewsAPI:  true,
	model.SourceGuardian: true,
	model.SourceNYT:      true,
}

// validateSources はソース名がすべて既知であるかを検証する。
// 未知の名前が含まれる場合はその名前を返す。
func validateSources(sources []string) (string, bool) {
	for _, source := range sources {
		if !validSources[source] {
			return source, false
		}
	}
	return "", true
}
