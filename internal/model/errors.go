// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: validation, provider, preferences, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeAllProvidersFailed = "ALL_PROVIDERS_FAILED"
	ErrCodeInvalidDate        = "INVALID_DATE"
	ErrCodeInvalidSource      = "INVALID_SOURCE"
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodePreferencesInvalid = "PREFERENCES_INVALID"
)

// NewAllProvidersFailedError は全プロバイダー失敗エラーを生成する。
func NewAllProvidersFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeAllProvidersFailed,
		Message:  "すべてのニュースプロバイダーからの取得に失敗しました。",
		Category: "provider",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewInvalidDateError は日付形式が無効な場合のエラーを生成する。
func NewInvalidDateError(date string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidDate,
		Message:  fmt.Sprintf("無効な日付形式です: %s", date),
		Category: "validation",
		Action:   "日付は YYYY-MM-DD 形式で指定してください。",
	}
}

// NewInvalidSourceError は未知のソース名が指定された場合のエラーを生成する。
func NewInvalidSourceError(source string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidSource,
		Message:  fmt.Sprintf("未知のニュースソースです: %s", source),
		Category: "validation",
		Action:   "sources には NewsAPI、The Guardian、New York Times のいずれかを指定してください。",
	}
}

// NewInvalidRequestError はリクエストボディの解析失敗エラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// NewPreferencesInvalidError は設定の内容が無効な場合のエラーを生成する。
func NewPreferencesInvalidError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodePreferencesInvalid,
		Message:  fmt.Sprintf("設定の内容が無効です: %s", reason),
		Category: "preferences",
		Action:   "設定の各フィールドを確認してください。",
	}
}
