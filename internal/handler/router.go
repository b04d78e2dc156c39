package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ashokvarma/ashokworld/internal/middleware"
)

// HealthChecker はヘルスチェックが必要とするDB接続のインターフェース。
// 永続ストア未設定の場合はnilでよい。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	Logger            *slog.Logger
	StatusRecorder    middleware.StatusRecorder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	HealthChecker     HealthChecker

	ViewService       ViewServiceInterface
	NewsletterService NewsletterServiceInterface
	Corpus            ContentQueries
	Renderer          PostRenderer
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成した
// chi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → RateLimit(General)
//
// /healthz はレート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.StatusRecorder))

	viewHandler := NewViewHandler(deps.ViewService)
	subscribeHandler := NewSubscribeHandler(deps.NewsletterService)
	postHandler := NewPostHandler(deps.Corpus, deps.Renderer)

	// ヘルスチェック（レート制限対象外）
	r.Get("/healthz", newHealthzHandler(deps.HealthChecker))

	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// 閲覧数
		r.Route("/api/views", func(r chi.Router) {
			r.Get("/", viewHandler.GetViews)
			r.Post("/", viewHandler.IncrementViews)
		})

		// ニュースレター購読（登録には専用レート制限を追加）
		r.Route("/api/subscribe", func(r chi.Router) {
			r.With(deps.RateLimiter.SubscribeMiddleware()).Post("/", subscribeHandler.Subscribe)
			r.Get("/", subscribeHandler.Count)
		})

		// 記事読み取りAPI
		r.Route("/api/posts", func(r chi.Router) {
			r.Get("/", postHandler.ListPosts)
			r.Route("/{slug}", func(r chi.Router) {
				r.Get("/", postHandler.GetPost)
				r.Get("/related", postHandler.GetRelatedPosts)
			})
		})

		r.Get("/api/tags", postHandler.ListTags)
		r.Get("/api/categories", postHandler.ListCategories)
	})

	return r
}

// newHealthzHandler はヘルスチェックハンドラーを返す。
// 永続ストア接続の有無をstorageフィールドで報告する。
// 永続ストアに到達できない場合でもインメモリで提供を継続するため200を返す。
func newHealthzHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storage := "memory"
		if checker != nil {
			if err := checker.PingContext(r.Context()); err == nil {
				storage = "durable"
			} else {
				storage = "degraded"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status":  "ok",
			"storage": storage,
		})
	}
}
