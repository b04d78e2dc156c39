package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ashokvarma/ashokworld/internal/middleware"
	"github.com/ashokvarma/ashokworld/internal/model"
)

// defaultRelatedCount は関連記事のデフォルト取得件数。
const defaultRelatedCount = 3

// ContentQueries は記事ハンドラーが必要とするコーパスのクエリインターフェース。
// コーパスは構築後不変のため、全操作がロックなしで並行実行できる。
type ContentQueries interface {
	GetAllPosts() []*model.Post
	GetPostBySlug(slug string) *model.Post
	GetPostsByCategory(category model.Category) []*model.Post
	GetFeaturedPosts() []*model.Post
	GetLatestPosts(n int) []*model.Post
	GetRelatedPosts(currentSlug string, category model.Category, n int) []*model.Post
	GetAllTags() []string
	GetPostsByTag(tag string) []*model.Post
	SearchPosts(query string) []*model.Post
	GetPostCountByCategory() map[model.Category]int
}

// PostRenderer は記事本文をHTMLと目次に変換するインターフェース。
type PostRenderer interface {
	Render(body string) (string, []model.TocItem, error)
}

// PostHandler は記事読み取りAPIのHTTPハンドラー。
type PostHandler struct {
	corpus   ContentQueries
	renderer PostRenderer
}

// NewPostHandler はPostHandlerを生成する。
func NewPostHandler(corpus ContentQueries, renderer PostRenderer) *PostHandler {
	return &PostHandler{corpus: corpus, renderer: renderer}
}

// postSummaryResponse は記事一覧のサマリーレスポンス。
type postSummaryResponse struct {
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Image       string   `json:"image,omitempty"`
	Featured    bool     `json:"featured"`
	ReadingTime string   `json:"reading_time"`
	WordCount   int      `json:"word_count"`
}

// postDetailResponse は記事詳細のレスポンス。本文のレンダリング結果と目次を含む。
type postDetailResponse struct {
	postSummaryResponse
	ContentHTML string          `json:"content_html"`
	Toc         []model.TocItem `json:"toc"`
}

// toSummary はPostをサマリーレスポンスに変換する。
func toSummary(p *model.Post) postSummaryResponse {
	return postSummaryResponse{
		Slug:        p.Slug,
		Title:       p.Title,
		Description: p.Description,
		Date:        p.Date,
		Category:    string(p.Category),
		Tags:        p.Tags,
		Image:       p.Image,
		Featured:    p.Featured,
		ReadingTime: p.ReadingTime,
		WordCount:   p.WordCount,
	}
}

// toSummaries はPostのスライスをサマリーレスポンスに変換する。
// 空の場合もnullではなく[]を返す。
func toSummaries(posts []*model.Post) []postSummaryResponse {
	out := make([]postSummaryResponse, len(posts))
	for i, p := range posts {
		out[i] = toSummary(p)
	}
	return out
}

// ListPosts は記事一覧を取得する。
// GET /api/posts?category=&tag=&q=&featured=&limit=
// フィルタは排他で、q > tag > category > featured の優先順で1つだけ適用される。
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var posts []*model.Post
	switch {
	case q.Get("q") != "":
		posts = h.corpus.SearchPosts(q.Get("q"))
	case q.Get("tag") != "":
		posts = h.corpus.GetPostsByTag(q.Get("tag"))
	case q.Get("category") != "":
		category := model.Category(q.Get("category"))
		if !category.IsValid() {
			middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidCategoryError(q.Get("category")))
			return
		}
		posts = h.corpus.GetPostsByCategory(category)
	case q.Get("featured") == "true":
		posts = h.corpus.GetFeaturedPosts()
	default:
		posts = h.corpus.GetAllPosts()
	}

	if limitStr := q.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit >= 0 && limit < len(posts) {
			posts = posts[:limit]
		}
	}

	writeData(w, toSummaries(posts))
}

// GetPost は記事詳細を取得する。本文はHTMLへレンダリングして返す。
// GET /api/posts/{slug}
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	post := h.corpus.GetPostBySlug(slug)
	if post == nil {
		middleware.WriteErrorResponse(w, http.StatusNotFound, model.NewPostNotFoundError(slug))
		return
	}

	html, toc, err := h.renderer.Render(post.Content)
	if err != nil {
		slog.Error("記事本文のレンダリングに失敗しました",
			slog.String("slug", slug),
			slog.String("error", err.Error()),
		)
		middleware.WriteInternalServerError(w)
		return
	}

	if toc == nil {
		toc = []model.TocItem{}
	}

	writeData(w, postDetailResponse{
		postSummaryResponse: toSummary(post),
		ContentHTML:         html,
		Toc:                 toc,
	})
}

// GetRelatedPosts は同カテゴリの関連記事を取得する。
// GET /api/posts/{slug}/related?limit=
func (h *PostHandler) GetRelatedPosts(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	post := h.corpus.GetPostBySlug(slug)
	if post == nil {
		middleware.WriteErrorResponse(w, http.StatusNotFound, model.NewPostNotFoundError(slug))
		return
	}

	limit := defaultRelatedCount
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil && n > 0 {
			limit = n
		}
	}

	writeData(w, toSummaries(h.corpus.GetRelatedPosts(slug, post.Category, limit)))
}

// ListTags は全公開記事のタグ一覧を取得する。
// GET /api/tags
func (h *PostHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags := h.corpus.GetAllTags()
	if tags == nil {
		tags = []string{}
	}
	writeData(w, tags)
}

// ListCategories はカテゴリごとの公開記事数を取得する。
// GET /api/categories
func (h *PostHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	writeData(w, h.corpus.GetPostCountByCategory())
}
