package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/hitoshi/newsdesk/internal/model"
)

// preferencesKey は設定ブロブを保持する行のキー。
// 設定は常にこの1行のみで、保存のたびに全体が上書きされる。
const preferencesKey = "newsPreferences"

// PostgresPreferencesRepo はPostgreSQLを使用した設定リポジトリ。
// 設定オブジェクト全体をJSONBの単一行として保持する。
type PostgresPreferencesRepo struct {
	db *sql.DB
}

// NewPostgresPreferencesRepo はPostgresPreferencesRepoを生成する。
func NewPostgresPreferencesRepo(db *sql.DB) *PostgresPreferencesRepo {
	return &PostgresPreferencesRepo{db: db}
}

// Load は保存済みの設定を読み込む。未保存の場合は(nil, nil)を返す。
// JSONが解析できない場合はErrCorruptDataを返す（呼び出し元が既定値へ
// フォールバックする）。
func (r *PostgresPreferencesRepo) Load(ctx context.Context) (*model.Preferences, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT data FROM preferences WHERE key = $1`,
		preferencesKey,
	).Scan(&data)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("設定の読み込みに失敗しました: %w", err)
	}

	prefs := &model.Preferences{}
	if err := json.Unmarshal(data, prefs); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCorruptData, err.Error())
	}

	return prefs, nil
}

// Save は設定全体を上書き保存する。行が無ければ作成する。
func (r *PostgresPreferencesRepo) Save(ctx context.Context, prefs model.Preferences) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("設定のエンコードに失敗しました: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO preferences (key, data, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET data = $2, updated_at = now()`,
		preferencesKey, data,
	)
	if err != nil {
		return fmt.Errorf("設定の保存に失敗しました: %w", err)
	}

	return nil
}
