package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/newsdesk/internal/middleware"
	"github.com/hitoshi/newsdesk/internal/model"
)

// --- GET /api/preferences テスト ---

func TestPreferencesHandler_GetPreferences(t *testing.T) {
	reader := &mockPreferencesReader{current: model.Preferences{
		Sources:    []string{model.SourceGuardian},
		Categories: []string{"tech"},
		Authors:    []string{"jane"},
	}}
	h := NewPreferencesHandler(reader, &mockFeedController{})

	req := httptest.NewRequest(http.MethodGet, "/api/preferences", nil)
	rec := httptest.NewRecorder()
	h.GetPreferences(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var prefs model.Preferences
	if err := json.Unmarshal(rec.Body.Bytes(), &prefs); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(prefs.Sources) != 1 || prefs.Sources[0] != model.SourceGuardian {
		t.Errorf("Sources = %v, want [%q]", prefs.Sources, model.SourceGuardian)
	}
}

// --- PUT /api/preferences テスト ---

func TestPreferencesHandler_SavePreferences_Success(t *testing.T) {
	var saved model.Preferences
	ctrl := &mockFeedController{
		savePreferencesFn: func(ctx context.Context, prefs model.Preferences) error {
			saved = prefs
			return nil
		},
	}
	h := NewPreferencesHandler(&mockPreferencesReader{}, ctrl)

	body := bytes.NewBufferString(`{"sources":["NewsAPI"],"categories":["science"],"authors":["jane"]}`)
	req := httptest.NewRequest(http.MethodPut, "/api/preferences", body)
	rec := httptest.NewRecorder()
	h.SavePreferences(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if len(saved.Sources) != 1 || saved.Sources[0] != model.SourceNewsAPI {
		t.Errorf("saved Sources = %v, want [%q]", saved.Sources, model.SourceNewsAPI)
	}
	if len(saved.Authors) != 1 || saved.Authors[0] != "jane" {
		t.Errorf("saved Authors = %v, want [jane]", saved.Authors)
	}
}

func TestPreferencesHandler_SavePreferences_UnknownSource_Returns400(t *testing.T) {
	called := false
	ctrl := &mockFeedController{
		savePreferencesFn: func(ctx context.Context, prefs model.Preferences) error {
			called = true
			return nil
		},
	}
	h := NewPreferencesHandler(&mockPreferencesReader{}, ctrl)

	body := bytes.NewBufferString(`{"sources":["Bloomberg"]}`)
	req := httptest.NewRequest(http.MethodPut, "/api/preferences", body)
	rec := httptest.NewRecorder()
	h.SavePreferences(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if called {
		t.Error("SavePreferences should not be called for invalid sources")
	}

	var errBody middleware.ErrorResponseBody
	if err := json.Unmarshal(rec.Body.Bytes(), &errBody); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if errBody.Code != model.ErrCodeInvalidSource {
		t.Errorf("Code = %q, want %q", errBody.Code, model.ErrCodeInvalidSource)
	}
}

func TestPreferencesHandler_SavePreferences_InvalidBody_Returns400(t *testing.T) {
	h := NewPreferencesHandler(&mockPreferencesReader{}, &mockFeedController{})

	body := bytes.NewBufferString(`{not json`)
	req := httptest.NewRequest(http.MethodPut, "/api/preferences", body)
	rec := httptest.NewRecorder()
	h.SavePreferences(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestPreferencesHandler_SavePreferences_StorageError_Returns500(t *testing.T) {
	ctrl := &mockFeedController{
		savePreferencesFn: func(ctx context.Context, prefs model.Preferences) error {
			return errors.New("db down")
		},
	}
	h := NewPreferencesHandler(&mockPreferencesReader{}, ctrl)

	body := bytes.NewBufferString(`{"sources":["NewsAPI"]}`)
	req := httptest.NewRequest(http.MethodPut, "/api/preferences", body)
	rec := httptest.NewRecorder()
	h.SavePreferences(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}
