package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// mockViewService はViewServiceInterfaceのテスト用実装。
type mockViewService struct {
	views map[string]int64
	err   error
}

func (m *mockViewService) GetViews(_ context.Context, slug string) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.views[slug], nil
}

func (m *mockViewService) IncrementViews(_ context.Context, slug string) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	if m.views == nil {
		m.views = make(map[string]int64)
	}
	m.views[slug]++
	return m.views[slug], nil
}

// decodeBody はレスポンスボディをマップとしてデコードする。
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return body
}

func TestViewHandler_GetViews(t *testing.T) {
	h := NewViewHandler(&mockViewService{views: map[string]int64{"my-post": 42}})

	req := httptest.NewRequest(http.MethodGet, "/api/views?slug=my-post", nil)
	rec := httptest.NewRecorder()
	h.GetViews(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["success"] != true {
		t.Errorf("success = %v, want true", body["success"])
	}
	data := body["data"].(map[string]any)
	if data["slug"] != "my-post" || data["views"] != float64(42) {
		t.Errorf("data = %v", data)
	}
}

func TestViewHandler_GetViews_UnknownSlugIsZero(t *testing.T) {
	h := NewViewHandler(&mockViewService{})

	req := httptest.NewRequest(http.MethodGet, "/api/views?slug=never-seen", nil)
	rec := httptest.NewRecorder()
	h.GetViews(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	data := decodeBody(t, rec)["data"].(map[string]any)
	if data["views"] != float64(0) {
		t.Errorf("views = %v, want 0", data["views"])
	}
}

func TestViewHandler_GetViews_MissingSlug(t *testing.T) {
	h := NewViewHandler(&mockViewService{})

	req := httptest.NewRequest(http.MethodGet, "/api/views", nil)
	rec := httptest.NewRecorder()
	h.GetViews(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["success"] != false {
		t.Errorf("success = %v, want false", body["success"])
	}
	if body["error"] != "Slug is required" {
		t.Errorf("error = %q, want \"Slug is required\"", body["error"])
	}
}

func TestViewHandler_IncrementViews(t *testing.T) {
	svc := &mockViewService{}
	h := NewViewHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/views", strings.NewReader(`{"slug":"my-post"}`))
	rec := httptest.NewRecorder()
	h.IncrementViews(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	data := decodeBody(t, rec)["data"].(map[string]any)
	if data["views"] != float64(1) {
		t.Errorf("views = %v, want 1", data["views"])
	}
}

func TestViewHandler_IncrementViews_InvalidJSON(t *testing.T) {
	h := NewViewHandler(&mockViewService{})

	req := httptest.NewRequest(http.MethodPost, "/api/views", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()
	h.IncrementViews(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "Invalid request body" {
		t.Errorf("error = %q", body["error"])
	}
}

func TestViewHandler_IncrementViews_EmptySlug(t *testing.T) {
	h := NewViewHandler(&mockViewService{})

	req := httptest.NewRequest(http.MethodPost, "/api/views", strings.NewReader(`{"slug":""}`))
	rec := httptest.NewRecorder()
	h.IncrementViews(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "Slug is required" {
		t.Errorf("error = %q, want \"Slug is required\"", body["error"])
	}
}

func TestViewHandler_ServiceErrorIs500(t *testing.T) {
	h := NewViewHandler(&mockViewService{err: errors.New("boom")})

	req := httptest.NewRequest(http.MethodGet, "/api/views?slug=x", nil)
	rec := httptest.NewRecorder()
	h.GetViews(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if body := decodeBody(t, rec); body["success"] != false {
		t.Errorf("success = %v, want false", body["success"])
	}
}
