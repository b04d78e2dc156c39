// Package view は記事閲覧数カウンタのドメインロジックを提供する。
package view

import (
	"context"
	"log/slog"
	"time"

	"github.com/ashokvarma/ashokworld/internal/metrics"
	"github.com/ashokvarma/ashokworld/internal/repository"
)

// Service は閲覧数の取得・インクリメントを提供するサービス層。
// 永続ストアを第一とし、タイムアウト・エラー時はそのリクエストに限り
// インメモリカウンタへ縮退する。リトライは行わない。
type Service struct {
	durable  repository.ViewRepository // 永続ストア。未設定（nil）の場合はメモリのみで動作する
	fallback repository.ViewRepository
	timeout  time.Duration
	recorder metrics.Recorder
}

// NewService はServiceの新しいインスタンスを生成する。
// durableにnilを渡すとインメモリカウンタのみの縮退モードで動作する。
func NewService(durable repository.ViewRepository, fallback repository.ViewRepository, timeout time.Duration, recorder metrics.Recorder) *Service {
	return &Service{
		durable:  durable,
		fallback: fallback,
		timeout:  timeout,
		recorder: recorder,
	}
}

// GetViews は指定slugの閲覧数を返す。レコードが存在しない場合は0を返す。
func (s *Service) GetViews(ctx context.Context, slug string) (int64, error) {
	if s.durable == nil {
		return s.fallback.GetViews(ctx, slug)
	}

	dctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	views, err := s.durable.GetViews(dctx, slug)
	if err != nil {
		s.degrade("GetViews", slug, err)
		return s.fallback.GetViews(ctx, slug)
	}
	return views, nil
}

// IncrementViews は指定slugの閲覧数をインクリメントし、新しい値を返す。
// 永続ストアではアトミックなUPSERTにより並行リクエスト間のlost updateを防ぐ。
func (s *Service) IncrementViews(ctx context.Context, slug string) (int64, error) {
	s.recorder.RecordViewIncrement()

	if s.durable == nil {
		return s.fallback.IncrementViews(ctx, slug)
	}

	dctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	views, err := s.durable.IncrementViews(dctx, slug)
	if err != nil {
		s.degrade("IncrementViews", slug, err)
		return s.fallback.IncrementViews(ctx, slug)
	}
	return views, nil
}

// degrade は永続ストア障害によるフォールバックをログとメトリクスに記録する。
// エラーはエンドユーザーには露出しない。
func (s *Service) degrade(op, slug string, err error) {
	s.recorder.RecordStorageFallback("views")
	slog.Warn("永続ストアが利用できないためインメモリカウンタへ縮退します",
		slog.String("op", op),
		slog.String("slug", slug),
		slog.String("error", err.Error()),
	)
}
