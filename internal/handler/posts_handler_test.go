package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/ashokvarma/ashokworld/internal/model"
)

// stubCorpus はContentQueriesのテスト用実装。固定の記事セットを返す。
type stubCorpus struct {
	posts []*model.Post
}

func (s *stubCorpus) GetAllPosts() []*model.Post { return s.posts }

func (s *stubCorpus) GetPostBySlug(slug string) *model.Post {
	for _, p := range s.posts {
		if p.Slug == slug {
			return p
		}
	}
	return nil
}

func (s *stubCorpus) GetPostsByCategory(category model.Category) []*model.Post {
	var out []*model.Post
	for _, p := range s.posts {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

func (s *stubCorpus) GetFeaturedPosts() []*model.Post {
	var out []*model.Post
	for _, p := range s.posts {
		if p.Featured {
			out = append(out, p)
		}
	}
	return out
}

func (s *stubCorpus) GetLatestPosts(n int) []*model.Post {
	if n > len(s.posts) {
		n = len(s.posts)
	}
	return s.posts[:n]
}

func (s *stubCorpus) GetRelatedPosts(currentSlug string, category model.Category, n int) []*model.Post {
	var out []*model.Post
	for _, p := range s.posts {
		if p.Category == category && p.Slug != currentSlug && len(out) < n {
			out = append(out, p)
		}
	}
	return out
}

func (s *stubCorpus) GetAllTags() []string {
	var tags []string
	for _, p := range s.posts {
		tags = append(tags, p.Tags...)
	}
	return tags
}

func (s *stubCorpus) GetPostsByTag(tag string) []*model.Post {
	var out []*model.Post
	for _, p := range s.posts {
		if p.HasTag(tag) {
			out = append(out, p)
		}
	}
	return out
}

func (s *stubCorpus) SearchPosts(query string) []*model.Post {
	var out []*model.Post
	for _, p := range s.posts {
		if strings.Contains(strings.ToLower(p.Title), strings.ToLower(query)) {
			out = append(out, p)
		}
	}
	return out
}

func (s *stubCorpus) GetPostCountByCategory() map[model.Category]int {
	counts := make(map[model.Category]int)
	for _, cat := range model.Categories {
		counts[cat] = 0
	}
	for _, p := range s.posts {
		counts[p.Category]++
	}
	return counts
}

// stubRenderer はPostRendererのテスト用実装。
type stubRenderer struct {
	err error
}

func (r *stubRenderer) Render(body string) (string, []model.TocItem, error) {
	if r.err != nil {
		return "", nil, r.err
	}
	return "<p>" + body + "</p>", nil, nil
}

func testPost(slug, title string, category model.Category, featured bool, tags ...string) *model.Post {
	return &model.Post{
		PostFrontmatter: model.PostFrontmatter{
			Title:       title,
			Description: "description",
			Date:        "2025-01-01",
			Category:    category,
			Tags:        tags,
			Published:   true,
			Featured:    featured,
		},
		Slug:        slug,
		Content:     "body of " + slug,
		ReadingTime: "1 min read",
		WordCount:   3,
	}
}

func newTestCorpus() *stubCorpus {
	return &stubCorpus{posts: []*model.Post{
		testPost("gitops", "GitOps Workflow", model.CategoryInfra, true, "GitOps"),
		testPost("k8s-operators", "Kubernetes Operators", model.CategoryInfra, false, "Kubernetes"),
		testPost("llm-ops", "LLM Ops", model.CategoryAI, false, "MLOps"),
	}}
}

// newPostRouter はURLパラメータ解決のためchiルーター越しにハンドラーを起動する。
func newPostRouter(h *PostHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/api/posts", h.ListPosts)
	r.Get("/api/posts/{slug}", h.GetPost)
	r.Get("/api/posts/{slug}/related", h.GetRelatedPosts)
	r.Get("/api/tags", h.ListTags)
	r.Get("/api/categories", h.ListCategories)
	return r
}

func doGet(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestPostHandler_ListPosts(t *testing.T) {
	router := newPostRouter(NewPostHandler(newTestCorpus(), &stubRenderer{}))

	rec := doGet(t, router, "/api/posts")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	data := decodeBody(t, rec)["data"].([]any)
	if len(data) != 3 {
		t.Fatalf("data has %d posts, want 3", len(data))
	}
	first := data[0].(map[string]any)
	if first["slug"] != "gitops" {
		t.Errorf("first slug = %v", first["slug"])
	}
	if first["reading_time"] != "1 min read" {
		t.Errorf("reading_time = %v", first["reading_time"])
	}
	// 一覧レスポンスに本文は含まれない
	if _, ok := first["content_html"]; ok {
		t.Error("list response must not include content_html")
	}
}

func TestPostHandler_ListPosts_CategoryFilter(t *testing.T) {
	router := newPostRouter(NewPostHandler(newTestCorpus(), &stubRenderer{}))

	rec := doGet(t, router, "/api/posts?category=infra")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if data := decodeBody(t, rec)["data"].([]any); len(data) != 2 {
		t.Errorf("infra posts = %d, want 2", len(data))
	}
}

func TestPostHandler_ListPosts_InvalidCategory(t *testing.T) {
	router := newPostRouter(NewPostHandler(newTestCorpus(), &stubRenderer{}))

	rec := doGet(t, router, "/api/posts?category=devops")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["success"] != false {
		t.Errorf("success = %v, want false", body["success"])
	}
}

func TestPostHandler_ListPosts_FeaturedAndLimit(t *testing.T) {
	router := newPostRouter(NewPostHandler(newTestCorpus(), &stubRenderer{}))

	rec := doGet(t, router, "/api/posts?featured=true")
	if data := decodeBody(t, rec)["data"].([]any); len(data) != 1 {
		t.Errorf("featured posts = %d, want 1", len(data))
	}

	rec = doGet(t, router, "/api/posts?limit=2")
	if data := decodeBody(t, rec)["data"].([]any); len(data) != 2 {
		t.Errorf("limited posts = %d, want 2", len(data))
	}
}

func TestPostHandler_ListPosts_EmptyResultIsArray(t *testing.T) {
	router := newPostRouter(NewPostHandler(&stubCorpus{}, &stubRenderer{}))

	rec := doGet(t, router, "/api/posts")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	// 空でもnullではなく[]
	if !strings.Contains(rec.Body.String(), `"data":[]`) {
		t.Errorf("body = %s, want data to be []", rec.Body.String())
	}
}

func TestPostHandler_GetPost(t *testing.T) {
	router := newPostRouter(NewPostHandler(newTestCorpus(), &stubRenderer{}))

	rec := doGet(t, router, "/api/posts/gitops")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	data := decodeBody(t, rec)["data"].(map[string]any)
	if data["slug"] != "gitops" {
		t.Errorf("slug = %v", data["slug"])
	}
	if data["content_html"] != "<p>body of gitops</p>" {
		t.Errorf("content_html = %v", data["content_html"])
	}
	// tocはレンダラーがnilを返しても[]として出力される
	if _, ok := data["toc"].([]any); !ok {
		t.Errorf("toc = %v, want JSON array", data["toc"])
	}
}

func TestPostHandler_GetPost_NotFound(t *testing.T) {
	router := newPostRouter(NewPostHandler(newTestCorpus(), &stubRenderer{}))

	rec := doGet(t, router, "/api/posts/no-such-post")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if body := decodeBody(t, rec); body["success"] != false {
		t.Errorf("success = %v, want false", body["success"])
	}
}

func TestPostHandler_GetPost_RenderFailureIs500(t *testing.T) {
	router := newPostRouter(NewPostHandler(newTestCorpus(), &stubRenderer{err: errors.New("bad markdown")}))

	rec := doGet(t, router, "/api/posts/gitops")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestPostHandler_GetRelatedPosts(t *testing.T) {
	router := newPostRouter(NewPostHandler(newTestCorpus(), &stubRenderer{}))

	rec := doGet(t, router, "/api/posts/gitops/related")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	data := decodeBody(t, rec)["data"].([]any)
	if len(data) != 1 {
		t.Fatalf("related posts = %d, want 1", len(data))
	}
	if slug := data[0].(map[string]any)["slug"]; slug != "k8s-operators" {
		t.Errorf("related slug = %v, want k8s-operators (self excluded)", slug)
	}
}

func TestPostHandler_GetRelatedPosts_UnknownSlug(t *testing.T) {
	router := newPostRouter(NewPostHandler(newTestCorpus(), &stubRenderer{}))

	rec := doGet(t, router, "/api/posts/no-such-post/related")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestPostHandler_ListTags_EmptyIsArray(t *testing.T) {
	router := newPostRouter(NewPostHandler(&stubCorpus{}, &stubRenderer{}))

	rec := doGet(t, router, "/api/tags")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"data":[]`) {
		t.Errorf("body = %s, want data to be []", rec.Body.String())
	}
}

func TestPostHandler_ListCategories(t *testing.T) {
	router := newPostRouter(NewPostHandler(newTestCorpus(), &stubRenderer{}))

	rec := doGet(t, router, "/api/categories")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	data := decodeBody(t, rec)["data"].(map[string]any)
	if data["infra"] != float64(2) || data["ai"] != float64(1) {
		t.Errorf("counts = %v", data)
	}
	// 記事のないカテゴリも0で含まれる
	if data["database"] != float64(0) {
		t.Errorf("database count = %v, want 0", data["database"])
	}
}
