// Package repository はデータ永続化層のインターフェースと実装を提供する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/newsdesk/internal/model"
)

// ErrCorruptData は永続化された設定データが解析できない場合に返される。
// 呼び出し元は既定の設定へフォールバックすることで起動を継続できる。
var ErrCorruptData = errors.New("永続化された設定データが破損しています")

// PreferencesRepository はユーザー設定の永続化のインターフェース。
// 設定は単一のキーに対応する1つのブロブとして保存され、
// 起動時に1回読み込み、保存のたびに全体を上書きする。
type PreferencesRepository interface {
	// Load は保存済みの設定を読み込む。未保存の場合は(nil, nil)を返す。
	// データが解析できない場合はErrCorruptDataを返す。
	Load(ctx context.Context) (*model.Preferences, error)
	// Save は設定全体を上書き保存する。
	Save(ctx context.Context, prefs model.Preferences) error
}
