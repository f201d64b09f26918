// Package preferences はユーザー設定のライフサイクル管理を提供する。
// 起動時に1回読み込み、保存のたびに全体を上書きして永続化する。
// セッション中はメモリ上のコピーが信頼できる値であり、ストレージは
// 永続化のためのミラーとして扱う。
package preferences

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hitoshi/newsdesk/internal/model"
	"github.com/hitoshi/newsdesk/internal/repository"
)

// Service はユーザー設定の読み込み・保存を管理する。
type Service struct {
	repo   repository.PreferencesRepository
	logger *slog.Logger

	mu      sync.RWMutex
	current model.Preferences
}

// NewService はServiceの新しいインスタンスを生成する。
// 生成直後は既定の設定を保持する。Loadで永続化された値を読み込むこと。
func NewService(repo repository.PreferencesRepository, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		logger:  logger,
		current: model.DefaultPreferences(),
	}
}

// Load は永続化された設定を読み込む。起動時に1回呼び出す。
// 未保存の場合は既定の設定を保存して初期化する（初回起動）。
// データが破損している場合は既定の設定へフォールバックし、起動は継続する。
func (s *Service) Load(ctx context.Context) error {
	stored, err := s.repo.Load(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrCorruptData) {
			s.logger.Warn("保存された設定が破損しているため既定値へフォールバックします",
				slog.String("error", err.Error()),
			)
			s.setCurrent(model.DefaultPreferences())
			return nil
		}
		return fmt.Errorf("設定の読み込みに失敗しました: %w", err)
	}

	// 初回起動: 既定の設定を作成して永続化する
	if stored == nil {
		defaults := model.DefaultPreferences()
		if err := s.repo.Save(ctx, defaults); err != nil {
			return fmt.Errorf("既定設定の初期保存に失敗しました: %w", err)
		}
		s.setCurrent(defaults)
		s.logger.Info("既定の設定で初期化しました")
		return nil
	}

	s.setCurrent(normalize(*stored))
	return nil
}

// Current は現在の設定を返す。
func (s *Service) Current() model.Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Save は設定全体を置き換えて永続化する。
func (s *Service) Save(ctx context.Context, prefs model.Preferences) error {
	prefs = normalize(prefs)
	if err := s.repo.Save(ctx, prefs); err != nil {
		return fmt.Errorf("設定の保存に失敗しました: %w", err)
	}

	s.setCurrent(prefs)
	s.logger.Info("設定を保存しました",
		slog.Int("sources", len(prefs.Sources)),
		slog.Int("categories", len(prefs.Categories)),
		slog.Int("authors", len(prefs.Authors)),
	)
	return nil
}

// setCurrent はメモリ上の設定を置き換える。
func (s *Service) setCurrent(prefs model.Preferences) {
	s.mu.Lock()
	s.current = prefs
	s.mu.Unlock()
}

// normalize はnilスライスを空スライスへ揃える。
// JSONレスポンスでnullではなく[]を返すため。
func normalize(prefs model.Preferences) model.Preferences {
	if prefs.Sources == nil {
		prefs.Sources = []string{}
	}
	if prefs.Categories == nil {
		prefs.Categories = []string{}
	}
	if prefs.Authors == nil {
		prefs.Authors = []string{}
	}
	return prefs
}
