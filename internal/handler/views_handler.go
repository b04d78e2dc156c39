package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ashokvarma/ashokworld/internal/middleware"
	"github.com/ashokvarma/ashokworld/internal/model"
)

// ViewServiceInterface は閲覧数ハンドラーが必要とするサービスインターフェース。
type ViewServiceInterface interface {
	// GetViews は指定slugの閲覧数を返す。レコードが存在しない場合は0を返す。
	GetViews(ctx context.Context, slug string) (int64, error)
	// IncrementViews は指定slugの閲覧数をインクリメントし、新しい値を返す。
	IncrementViews(ctx context.Context, slug string) (int64, error)
}

// ViewHandler は記事閲覧数のHTTPハンドラー。
type ViewHandler struct {
	service ViewServiceInterface
}

// NewViewHandler はViewHandlerを生成する。
func NewViewHandler(service ViewServiceInterface) *ViewHandler {
	return &ViewHandler{service: service}
}

// viewCountResponse は閲覧数レスポンスのdataフィールド。
type viewCountResponse struct {
	Slug  string `json:"slug"`
	Views int64  `json:"views"`
}

// incrementRequest はPOST /api/viewsのリクエストボディ。
type incrementRequest struct {
	Slug string `json:"slug"`
}

// GetViews は記事の閲覧数を取得する。
// GET /api/views?slug=<slug>
func (h *ViewHandler) GetViews(w http.ResponseWriter, r *http.Request) {
	slug := r.URL.Query().Get("slug")
	if slug == "" {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewSlugRequiredError())
		return
	}

	views, err := h.service.GetViews(r.Context(), slug)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeData(w, viewCountResponse{Slug: slug, Views: views})
}

// IncrementViews は記事の閲覧数をインクリメントする。
// POST /api/views ボディ: {"slug": "<slug>"}
func (h *ViewHandler) IncrementViews(w http.ResponseWriter, r *http.Request) {
	var req incrementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidBodyError())
		return
	}
	if req.Slug == "" {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewSlugRequiredError())
		return
	}

	views, err := h.service.IncrementViews(r.Context(), req.Slug)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeData(w, viewCountResponse{Slug: req.Slug, Views: views})
}
