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

// GuardianClient はThe Guardian Content API（マガジンAPI）のアダプター。
// /search エンドポイントに対して1ページ分の検索を行う。
type GuardianClient struct {
	httpClient *http.Client
	logger     *slog.Logger
	sanitizer  DescriptionSanitizer
	apiKey     string
	baseURL    string
	pageSize   int
	maxRetries int
}

// NewGuardianClient はGuardianClientの新しいインスタンスを生成する。
func NewGuardianClient(httpClient *http.Client, logger *slog.Logger, sanitizer DescriptionSanitizer, apiKey, baseURL string, pageSize, maxRetries int) *GuardianClient {
	if pageSize <= 0 {
		pageSize = 50
	}
	return &GuardianClient{
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
func (c *GuardianClient) Name() string {
	return model.SourceGuardian
}

// guardianResponse はGuardian Content APIのレスポンス形式。
// 本体は response オブジェクトの下にネストされている。
type guardianResponse struct {
	Response struct {
		Status  string            `json:"status"`
		Results []guardianArticle `json:"results"`
	} `json:"response"`
}

// guardianArticle はGuardianの記事1件分の形式。
// trailText・thumbnail・bylineは show-fields で要求した場合のみ含まれる。
type guardianArticle struct {
	ID                 string `json:"id"`
	SectionID          string `json:"sectionId"`
	WebTitle           string `json:"webTitle"`
	WebURL             string `json:"webUrl"`
	WebPublicationDate string `json:"webPublicationDate"`
	Fields             struct {
		TrailText string `json:"trailText"`
		Thumbnail string `json:"thumbnail"`
		Byline    string `json:"byline"`
	} `json:"fields"`
}

// Fetch はThe Guardianから記事を取得して正規化する。
// クエリ語彙のマッピング:
//   - q: 検索語をそのまま渡す（空でも可）
//   - from-date: 日付の下限（YYYY-MM-DD）
//   - section: カテゴリをセクション分類へマッピング（セクション名に
//     一致しないカテゴリは0件になる、非可逆な変換）
func (c *GuardianClient) Fetch(ctx context.Context, params model.EffectiveParams) ([]model.Article, error) {
	reqURL, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("GuardianエンドポイントURLのパースに失敗しました: %w", err)
	}

	q := reqURL.Query()
	q.Set("api-key", c.apiKey)
	if params.Query != "" {
		q.Set("q", params.Query)
	}
	if params.Date != "" {
		q.Set("from-date", params.Date)
	}
	if params.Category != "" {
		q.Set("section", params.Category)
	}
	q.Set("page-size", strconv.Itoa(c.pageSize))
	q.Set("show-fields", "trailText,thumbnail,byline")
	reqURL.RawQuery = q.Encode()

	var payload guardianResponse
	if err := fetchJSON(ctx, c.httpClient, c.logger, c.Name(), reqURL.String(), c.maxRetries, &payload); err != nil {
		return nil, err
	}

	articles := make([]model.Article, 0, len(payload.Response.Results))
	var dropped int
	for _, a := range payload.Response.Results {
		if a.ID == "" || a.WebTitle == "" || a.WebURL == "" {
			dropped++
			continue
		}
		publishedAt, ok := parseTimestamp(a.WebPublicationDate)
		if !ok {
			dropped++
			continue
		}
		category := a.SectionID
		if category == "" {
			category = model.DefaultCategory
		}
		articles = append(articles, model.Article{
			ID:          a.ID,
			Title:       a.WebTitle,
			Description: c.sanitizer.Sanitize(a.Fields.TrailText),
			Source:      model.SourceGuardian,
			Author:      a.Fields.Byline,
			URL:         a.WebURL,
			ImageURL:    a.Fields.Thumbnail,
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
