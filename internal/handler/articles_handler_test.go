package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/newsdesk/internal/aggregator"
	"github.com/hitoshi/newsdesk/internal/middleware"
	"github.com/hitoshi/newsdesk/internal/model"
)

// --- モック定義 ---

// mockAggregatorService はAggregatorServiceInterfaceのモック実装。
type mockAggregatorService struct {
	aggregateFn func(ctx context.Context, filters model.FilterParams, prefs model.Preferences) ([]model.Article, error)
}

func (m *mockAggregatorService) Aggregate(ctx context.Context, filters model.FilterParams, prefs model.Preferences) ([]model.Article, error) {
	if m.aggregateFn != nil {
		return m.aggregateFn(ctx, filters, prefs)
	}
	return []model.Article{}, nil
}

// mockPreferencesReader はPreferencesReaderのモック実装。
type mockPreferencesReader struct {
	current model.Preferences
}

func (m *mockPreferencesReader) Current() model.Preferences {
	return m.current
}

// --- GET /api/articles テスト ---

func TestArticlesHandler_ListArticles_Success(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	svc := &mockAggregatorService{
		aggregateFn: func(ctx context.Context, filters model.FilterParams, prefs model.Preferences) ([]model.Article, error) {
			if filters.Query != "climate" {
				t.Errorf("Query = %q, want %q", filters.Query, "climate")
			}
			if filters.Date != "2024-01-15" {
				t.Errorf("Date = %q, want %q", filters.Date, "2024-01-15")
			}
			return []model.Article{
				{ID: "a1", Title: "Story", Source: model.SourceGuardian, PublishedAt: now},
			}, nil
		},
	}

	h := NewArticlesHandler(svc, &mockPreferencesReader{current: model.DefaultPreferences()})

	req := httptest.NewRequest(http.MethodGet, "/api/articles?q=climate&date=2024-01-15", nil)
	rec := httptest.NewRecorder()
	h.ListArticles(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp articlesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 1 {
		t.Errorf("Count = %d, want 1", resp.Count)
	}
	if len(resp.Articles) != 1 || resp.Articles[0].ID != "a1" {
		t.Errorf("Articles = %v, want 1 article with ID a1", resp.Articles)
	}
}

func TestArticlesHandler_ListArticles_SourcesParsed(t *testing.T) {
	svc := &mockAggregatorService{
		aggregateFn: func(ctx context.Context, filters model.FilterParams, prefs model.Preferences) ([]model.Article, error) {
			want := []string{model.SourceNewsAPI, model.SourceNYT}
			if len(filters.Sources) != 2 || filters.Sources[0] != want[0] || filters.Sources[1] != want[1] {
				t.Errorf("Sources = %v, want %v", filters.Sources, want)
			}
			return []model.Article{}, nil
		},
	}

	h := NewArticlesHandler(svc, &mockPreferencesReader{})

	req := httptest.NewRequest(http.MethodGet, "/api/articles?sources=NewsAPI,New+York+Times", nil)
	rec := httptest.NewRecorder()
	h.ListArticles(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestArticlesHandler_ListArticles_InvalidDate_Returns400(t *testing.T) {
	h := NewArticlesHandler(&mockAggregatorService{}, &mockPreferencesReader{})

	req := httptest.NewRequest(http.MethodGet, "/api/articles?date=15-01-2024", nil)
	rec := httptest.NewRecorder()
	h.ListArticles(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	var body middleware.ErrorResponseBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if body.Code != model.ErrCodeInvalidDate {
		t.Errorf("Code = %q, want %q", body.Code, model.ErrCodeInvalidDate)
	}
}

func TestArticlesHandler_ListArticles_UnknownSource_Returns400(t *testing.T) {
	h := NewArticlesHandler(&mockAggregatorService{}, &mockPreferencesReader{})

	req := httptest.NewRequest(http.MethodGet, "/api/articles?sources=Bloomberg", nil)
	rec := httptest.NewRecorder()
	h.ListArticles(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	var body middleware.ErrorResponseBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if body.Code != model.ErrCodeInvalidSource {
		t.Errorf("Code = %q, want %q", body.Code, model.ErrCodeInvalidSource)
	}
}

func TestArticlesHandler_ListArticles_AllProvidersFailed_Returns502(t *testing.T) {
	svc := &mockAggregatorService{
		aggregateFn: func(ctx context.Context, filters model.FilterParams, prefs model.Preferences) ([]model.Article, error) {
			return nil, aggregator.ErrAllProvidersFailed
		},
	}

	h := NewArticlesHandler(svc, &mockPreferencesReader{})

	req := httptest.NewRequest(http.MethodGet, "/api/articles", nil)
	rec := httptest.NewRecorder()
	h.ListArticles(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadGateway)
	}

	var body middleware.ErrorResponseBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if body.Code != model.ErrCodeAllProvidersFailed {
		t.Errorf("Code = %q, want %q", body.Code, model.ErrCodeAllProvidersFailed)
	}
}

func TestArticlesHandler_ListArticles_UnexpectedError_Returns500(t *testing.T) {
	svc := &mockAggregatorService{
		aggregateFn: func(ctx context.Context, filters model.FilterParams, prefs model.Preferences) ([]model.Article, error) {
			return nil, errors.New("boom")
		},
	}

	h := NewArticlesHandler(svc, &mockPreferencesReader{})

	req := httptest.NewRequest(http.MethodGet, "/api/articles", nil)
	rec := httptest.NewRecorder()
	h.ListArticles(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}

func TestArticlesHandler_ListArticles_EmptyResult_ReturnsEmptyArray(t *testing.T) {
	h := NewArticlesHandler(&mockAggregatorService{}, &mockPreferencesReader{})

	req := httptest.NewRequest(http.MethodGet, "/api/articles", nil)
	rec := httptest.NewRecorder()
	h.ListArticles(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	body := rec.Body.String()
	if !json.Valid([]byte(body)) {
		t.Fatalf("invalid JSON response: %s", body)
	}

	var resp articlesResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Articles == nil {
		t.Error("Articles should be an empty array, not null")
	}
}
