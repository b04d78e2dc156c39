// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// Messageはそのままレスポンスのerrorフィールドとしてクライアントに返される。
type APIError struct {
	Code     string // エラーコード
	Message  string // ユーザー向けメッセージ
	Category string // カテゴリ: validation, content, storage, system
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeSlugRequired      = "SLUG_REQUIRED"
	ErrCodeEmailRequired     = "EMAIL_REQUIRED"
	ErrCodeInvalidEmail      = "INVALID_EMAIL"
	ErrCodeAlreadySubscribed = "ALREADY_SUBSCRIBED"
	ErrCodePostNotFound      = "POST_NOT_FOUND"
	ErrCodeInvalidCategory   = "INVALID_CATEGORY"
	ErrCodeInvalidBody       = "INVALID_BODY"
)

// NewSlugRequiredError はslug未指定エラーを生成する。
func NewSlugRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeSlugRequired,
		Message:  "Slug is required",
		Category: "validation",
	}
}

// NewEmailRequiredError はemail未指定エラーを生成する。
func NewEmailRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailRequired,
		Message:  "Email is required",
		Category: "validation",
	}
}

// NewInvalidEmailError はメールアドレス形式不正エラーを生成する。
func NewInvalidEmailError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidEmail,
		Message:  "Invalid email format",
		Category: "validation",
	}
}

// NewAlreadySubscribedError は購読済みメールアドレスの重複登録エラーを生成する。
func NewAlreadySubscribedError() *APIError {
	return &APIError{
		Code:     ErrCodeAlreadySubscribed,
		Message:  "Email already subscribed",
		Category: "validation",
	}
}

// NewPostNotFoundError は記事未検出エラーを生成する。
func NewPostNotFoundError(slug string) *APIError {
	return &APIError{
		Code:     ErrCodePostNotFound,
		Message:  fmt.Sprintf("Post not found: %s", slug),
		Category: "content",
	}
}

// NewInvalidCategoryError は無効なカテゴリエラーを生成する。
func NewInvalidCategoryError(category string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCategory,
		Message:  fmt.Sprintf("Invalid category: %s", category),
		Category: "validation",
	}
}

// NewInvalidBodyError はリクエストボディ不正エラーを生成する。
func NewInvalidBodyError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidBody,
		Message:  "Invalid request body",
		Category: "validation",
	}
}
