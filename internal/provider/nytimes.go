package provider

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/hitoshi/newsdesk/internal/model"
)

// nytImageBaseURL はNYTのmultimedia URLが相対パスで返るため付与するベースURL。
const nytImageBaseURL = "https://www.nytimes.com/"

// NYTClient はNew York Times Article Search API（アーカイブ検索API）のアダプター。
// /svc/search/v2/articlesearch.json エンドポイントに対して1ページ分の検索を行う。
type NYTClient struct {
	httpClient *http.Client
	logger     *slog.Logger
	sanitizer  DescriptionSanitizer
	apiKey     string
	baseURL    string
	maxRetries int
}

// NewNYTClient はNYTClientの新しいインスタンスを生成する。
// Article Search APIはページサイズ指定を持たず、常に既定の1ページ分を返す。
func NewNYTClient(httpClient *http.Client, logger *slog.Logger, sanitizer DescriptionSanitizer, apiKey, baseURL string, maxRetries int) *NYTClient {
	return &NYTClient{
		httpClient: httpClient,
		logger:     logger,
		sanitizer:  sanitizer,
		apiKey:     apiKey,
		baseURL:    baseURL,
		maxRetries: maxRetries,
	}
}

// Name はプロバイダーの表示名を返す。
func (c *NYTClient) Name() string {
	return model.SourceNYT
}

// nytResponse はArticle Search APIのレスポンス形式。
type nytResponse struct {
	Response struct {
		Docs []nytArticle `json:"docs"`
	} `json:"response"`
}

// nytArticle はNYTの記事1件分の形式。
type nytArticle struct {
	ID       string `json:"_id"`
	Abstract string `json:"abstract"`
	WebURL   string `json:"web_url"`
	Headline struct {
		Main string `json:"main"`
	} `json:"headline"`
	Byline struct {
		Original string `json:"original"`
	} `json:"byline"`
	PubDate     string `json:"pub_date"`
	SectionName string `json:"section_name"`
	Multimedia  []struct {
		URL string `json:"url"`
	} `json:"multimedia"`
}

// Fetch はNew York Timesから記事を取得して正規化する。
// クエリ語彙のマッピング:
//   - q: 検索語をそのまま渡す
//   - begin_date: 日付の下限。区切り文字を除いたYYYYMMDD形式
//   - fq: カテゴリを非構造化のフィルタクエリ断片として渡す
//     （他の2プロバイダーと異なり統制語彙ではない）
func (c *NYTClient) Fetch(ctx context.Context, params model.EffectiveParams) ([]model.Article, error) {
	reqURL, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("NYTエンドポイントURLのパースに失敗しました: %w", err)
	}

	q := reqURL.Query()
	q.Set("api-key", c.apiKey)
	if params.Query != "" {
		q.Set("q", params.Query)
	}
	if params.Date != "" {
		q.Set("begin_date", strings.ReplaceAll(params.Date, "-", ""))
	}
	if params.Category != "" {
		q.Set("fq", params.Category)
	}
	reqURL.RawQuery = q.Encode()

	var payload nytResponse
	if err := fetchJSON(ctx, c.httpClient, c.logger, c.Name(), reqURL.String(), c.maxRetries, &payload); err != nil {
		return nil, err
	}

	articles := make([]model.Article, 0, len(payload.Response.Docs))
	var dropped int
	for _, a := range payload.Response.Docs {
		if a.ID == "" || a.Headline.Main == "" || a.WebURL == "" {
			dropped++
			continue
		}
		publishedAt, ok := parseTimestamp(a.PubDate)
		if !ok {
			dropped++
			continue
		}
		author := strings.TrimPrefix(a.Byline.Original, "By ")
		if author == "" {
			author = "Unknown"
		}
		var imageURL string
		if len(a.Multimedia) > 0 && a.Multimedia[0].URL != "" {
			imageURL = nytImageBaseURL + a.Multimedia[0].URL
		}
		category := a.SectionName
		if category == "" {
			category = model.DefaultCategory
		}
		articles = append(articles, model.Article{
			ID:          a.ID,
			Title:       a.Headline.Main,
			Description: c.sanitizer.Sanitize(a.Abstract),
			Source:      model.SourceNYT,
			Author:      author,
			URL:         a.WebURL,
			ImageURL:    imageURL,
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
