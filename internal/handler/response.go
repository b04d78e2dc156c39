// Package handler はHTTPハンドラーとルーティングを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ashokvarma/ashokworld/internal/middleware"
	"github.com/ashokvarma/ashokworld/internal/model"
)

// successResponse は成功レスポンスの統一エンベロープ。
// {success: true, data: ...} または {success: true, message: "..."} 形式。
type successResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// writeData は {success: true, data: ...} レスポンスを書き込む。
func writeData(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(successResponse{Success: true, Data: data})
}

// writeMessage は {success: true, message: "..."} レスポンスを書き込む。
func writeMessage(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(successResponse{Success: true, Message: message})
}

// handleServiceError はサービス層のエラーをHTTPステータスにマップして書き込む。
// APIError以外のエラーは詳細をログに残し、一般的な500を返す。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		middleware.WriteInternalServerError(w)
		return
	}

	status := http.StatusBadRequest
	switch apiErr.Code {
	case model.ErrCodeAlreadySubscribed:
		status = http.StatusConflict
	case model.ErrCodePostNotFound:
		status = http.StatusNotFound
	}

	middleware.WriteErrorResponse(w, status, apiErr)
}
