package provider

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/hitoshi/newsdesk/internal/model"
)

// NewsAPIClient はNewsAPI（汎用検索API）のアダプター。
// /v2/everything エンドポイントに対して1ページ分の検索を行う。
type NewsAPIClient struct {
	httpClient *http.Client
	logger     *slog.Logger
	sanitizer  DescriptionSanitizer
	apiKey     string
	baseURL    string
	pageSize   int
	maxRetries int
}

// NewNewsAPIClient はNewsAPIClientの新しいインスタンスを生成する。
func NewNewsAPIClient(httpClient *http.Client, logger *slog.Logger, sanitizer DescriptionSanitizer, apiKey, baseURL string, pageSize, maxRetries int) *NewsAPIClient {
	if pageSize <= 0 {
		pageSize = 50
	}
	return &NewsAPIClient{
		httpClient: httpClient,
		logger:     logger,
		sanitizer:  sanitizer,
		apiKey:     apiKey,
		baseURL:    baseURL,
		pageSize:   pageSize,
		maxRetries: maxRetries,
	}
}

// Name はプロバイダーの表示名を返す。
func (c *NewsAPIClient) Name() string {
	return model.SourceNewsAPI
}

// newsAPIResponse はNewsAPIのレスポンス形式。
type newsAPIResponse struct {
	Status   string           `json:"status"`
	Articles []newsAPIArticle `json:"articles"`
}

// newsAPIArticle はNewsAPIの記事1件分の形式。
type newsAPIArticle struct {
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
}

// Fetch はNewsAPIから記事を取得して正規化する。
// クエリ語彙のマッピング:
//   - q: 検索語。未指定の場合はカテゴリ名、それも無ければ "all"
//   - from: 日付の下限（YYYY-MM-DD、上限なし）
//   - sources: 明示的なソースフィルタのカンマ結合をそのまま透過
func (c *NewsAPIClient) Fetch(ctx context.Context, params model.EffectiveParams) ([]model.Article, error) {
	reqURL, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("NewsAPIエンドポイントURLのパースに失敗しました: %w", err)
	}

	q := reqURL.Query()
	q.Set("apiKey", c.apiKey)
	query := params.Query
	if query == "" {
		query = params.Category
	}
	if query == "" {
		query = "all"
	}
	q.Set("q", query)
	if params.Date != "" {
		q.Set("from", params.Date)
	}
	if params.SourceFilter != "" {
		q.Set("sources", params.SourceFilter)
	}
	q.Set("pageSize", strconv.Itoa(c.pageSize))
	reqURL.RawQuery = q.Encode()

	var payload newsAPIResponse
	if err := fetchJSON(ctx, c.httpClient, c.logger, c.Name(), reqURL.String(), c.maxRetries, &payload); err != nil {
		return nil, err
	}

	// 記事カテゴリ: NewsAPIは記事単位のカテゴリを返さないため、
	// 実効カテゴリをそのまま付与する（無ければ既定値）。
	category := params.Category
	if category == "" {
		category = model.DefaultCategory
	}

	articles := make([]model.Article, 0, len(payload.Articles))
	var dropped int
	for _, a := range payload.Articles {
		if a.Title == "" || a.URL == "" {
			dropped++
			continue
		}
		publishedAt, ok := parseTimestamp(a.PublishedAt)
		if !ok {
			dropped++
			continue
		}
		author := a.Author
		if author == "" {
			author = "Unknown"
		}
		articles = append(articles, model.Article{
			ID:          a.URL,
			Title:       a.Title,
			Description: c.sanitizer.Sanitize(a.Description),
			Source:      model.SourceNewsAPI,
			Author:      author,
			URL:         a.URL,
			ImageURL:    a.URLToImage,
			PublishedAt: publishedAt,
			Category:    category,
		})
	}

	if dropped > 0 {
		c.logger.Warn("不正なレコードを破棄しました",
			slog.String("provider", c.Name()),
			slog.Int("dropped", dropped),
		)
	}

	c.logger.Info("プロバイダーから記事を取得しました",
		slog.String("provider", c.Name()),
		slog.Int("articles", len(articles)),
	)

	return articles, nil
}
