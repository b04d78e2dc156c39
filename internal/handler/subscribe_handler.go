package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ashokvarma/ashokworld/internal/middleware"
	"github.com/ashokvarma/ashokworld/internal/model"
)

// subscribeSuccessMessage は購読成功時のユーザー向けメッセージ。
const subscribeSuccessMessage = "Successfully subscribed! Thank you for joining."

// NewsletterServiceInterface は購読ハンドラーが必要とするサービスインターフェース。
type NewsletterServiceInterface interface {
	// Subscribe はメールアドレスを検証・正規化して購読者レコードを作成する。
	Subscribe(ctx context.Context, email string) error
	// CountSubscribers は購読者の総数を返す。
	CountSubscribers(ctx context.Context) (int, error)
}

// SubscribeHandler はニュースレター購読のHTTPハンドラー。
type SubscribeHandler struct {
	service NewsletterServiceInterface
}

// NewSubscribeHandler はSubscribeHandlerを生成する。
func NewSubscribeHandler(service NewsletterServiceInterface) *SubscribeHandler {
	return &SubscribeHandler{service: service}
}

// subscribeRequest はPOST /api/subscribeのリクエストボディ。
type subscribeRequest struct {
	Email string `json:"email"`
}

// subscriberCountResponse は購読者数レスポンスのdataフィールド。
type subscriberCountResponse struct {
	Count int `json:"count"`
}

// Subscribe はニュースレター購読を登録する。
// POST /api/subscribe ボディ: {"email": "<email>"}
func (h *SubscribeHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewEmailRequiredError())
		return
	}

	if err := h.service.Subscribe(r.Context(), req.Email); err != nil {
		handleServiceError(w, err)
		return
	}

	writeMessage(w, subscribeSuccessMessage)
}

// Count は購読者の総数を取得する。
// GET /api/subscribe
func (h *SubscribeHandler) Count(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.CountSubscribers(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeData(w, subscriberCountResponse{Count: count})
}
