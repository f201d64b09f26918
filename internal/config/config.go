// Package config は環境変数からのアプリケーション設定読み込みを提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// 各プロバイダーAPIの既定エンドポイント。
// テストや検証環境ではそれぞれの環境変数で差し替え可能。
const (
	defaultNewsAPIBaseURL  = "https://newsapi.org/v2/everything"
	defaultGuardianBaseURL = "https://content.guardianapis.com/search"
	defaultNYTBaseURL      = "https://api.nytimes.com/svc/search/v2/articlesearch.json"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Provider credentials
	NewsAPIKey     string
	GuardianAPIKey string
	NYTAPIKey      string

	// Provider endpoints
	NewsAPIBaseURL  string
	GuardianBaseURL string
	NYTBaseURL      string

	// Fetch
	FetchTimeout    time.Duration
	FetchMaxRetries int
	PageSize        int

	// Aggregation
	CacheTTL       time.Duration
	SearchDebounce time.Duration

	// Rate Limit
	RateLimitGeneral int

	// Server
	ServerPort string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// カレントディレクトリに.envがあれば先に読み込む（存在しなくてもエラーにしない）。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	// ローカル開発向け: .env があれば環境変数に取り込む
	_ = godotenv.Load()

	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.NewsAPIKey = os.Getenv("NEWSAPI_API_KEY")
	if cfg.NewsAPIKey == "" {
		missing = append(missing, "NEWSAPI_API_KEY")
	}

	cfg.GuardianAPIKey = os.Getenv("GUARDIAN_API_KEY")
	if cfg.GuardianAPIKey == "" {
		missing = append(missing, "GUARDIAN_API_KEY")
	}

	cfg.NYTAPIKey = os.Getenv("NYT_API_KEY")
	if cfg.NYTAPIKey == "" {
		missing = append(missing, "NYT_API_KEY")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.NewsAPIBaseURL = getEnvString("NEWSAPI_BASE_URL", defaultNewsAPIBaseURL)
	cfg.GuardianBaseURL = getEnvString("GUARDIAN_BASE_URL", defaultGuardianBaseURL)
	cfg.NYTBaseURL = getEnvString("NYT_BASE_URL", defaultNYTBaseURL)
	cfg.FetchTimeout = getEnvDuration("FETCH_TIMEOUT", 10*time.Second)
	cfg.FetchMaxRetries = getEnvInt("FETCH_MAX_RETRIES", 2)
	cfg.PageSize = getEnvInt("PAGE_SIZE", 50)
	cfg.CacheTTL = getEnvDuration("CACHE_TTL", 5*time.Minute)
	cfg.SearchDebounce = getEnvDuration("SEARCH_DEBOUNCE", 500*time.Millisecond)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
