// Package newsletter はニュースレター購読のドメインロジックを提供する。
package newsletter

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ashokvarma/ashokworld/internal/metrics"
	"github.com/ashokvarma/ashokworld/internal/model"
	"github.com/ashokvarma/ashokworld/internal/repository"
)

// emailPattern は local@domain.tld 形式の簡易検証パターン。
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// auditActionSubscribe は購読成功時に監査ログへ記録するアクション名。
const auditActionSubscribe = "newsletter_subscribe"

// Service は購読登録・購読者数取得を提供するサービス層。
// フォールバック方針はviewサービスと同じで、永続ストア障害時は
// そのリクエストに限りインメモリストアへ縮退する。
type Service struct {
	durable  repository.SubscriberRepository // 未設定（nil）の場合はメモリのみで動作する
	fallback repository.SubscriberRepository
	audit    repository.AuditLogRepository
	timeout  time.Duration
	recorder metrics.Recorder
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	durable repository.SubscriberRepository,
	fallback repository.SubscriberRepository,
	audit repository.AuditLogRepository,
	timeout time.Duration,
	recorder metrics.Recorder,
) *Service {
	return &Service{
		durable:  durable,
		fallback: fallback,
		audit:    audit,
		timeout:  timeout,
		recorder: recorder,
	}
}

// Subscribe はメールアドレスを検証・正規化して購読者レコードを作成する。
// 形式不正はInvalidEmail、登録済みはAlreadySubscribedのAPIErrorを返す。
// それ以外のエラーはフォールバックで吸収し、エンドユーザーへは露出しない。
func (s *Service) Subscribe(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		s.recorder.RecordSubscribe("invalid")
		return model.NewEmailRequiredError()
	}
	if !emailPattern.MatchString(email) {
		s.recorder.RecordSubscribe("invalid")
		return model.NewInvalidEmailError()
	}

	// 大文字小文字を区別せず一意にするため、常に小文字で保存する
	normalized := strings.ToLower(email)

	sub := &model.Subscriber{
		Email:        normalized,
		SubscribedAt: time.Now(),
		Confirmed:    false,
	}

	if err := s.create(ctx, sub); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			s.recorder.RecordSubscribe("duplicate")
			return model.NewAlreadySubscribedError()
		}
		return err
	}

	s.recorder.RecordSubscribe("success")
	s.appendAudit(ctx, normalized)

	return nil
}

// CountSubscribers は購読者の総数を返す。
func (s *Service) CountSubscribers(ctx context.Context) (int, error) {
	if s.durable == nil {
		return s.fallback.Count(ctx)
	}

	dctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	count, err := s.durable.Count(dctx)
	if err != nil {
		s.degrade("Count", err)
		return s.fallback.Count(ctx)
	}
	return count, nil
}

// create は永続ストアへの作成を試み、障害時はインメモリストアへ縮退する。
// ErrDuplicateEmailは縮退対象ではなく、そのまま呼び出し側へ返す。
func (s *Service) create(ctx context.Context, sub *model.Subscriber) error {
	if s.durable == nil {
		return s.fallback.Create(ctx, sub)
	}

	dctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := s.durable.Create(dctx, sub)
	if err == nil || errors.Is(err, repository.ErrDuplicateEmail) {
		return err
	}

	s.degrade("Create", err)
	return s.fallback.Create(ctx, sub)
}

// appendAudit は購読成功を監査ログに追記する。
// 監査ログの失敗は購読自体を失敗させない（ログのみ）。
func (s *Service) appendAudit(ctx context.Context, email string) {
	if s.audit == nil {
		return
	}

	entry := &model.AuditLogEntry{
		ID:          uuid.New().String(),
		Action:      auditActionSubscribe,
		Details:     email,
		PerformedAt: time.Now(),
	}

	actx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.audit.Append(actx, entry); err != nil {
		s.recorder.RecordStorageFallback("audit")
		slog.Warn("監査ログの追記に失敗しました",
			slog.String("action", auditActionSubscribe),
			slog.String("error", err.Error()),
		)
	}
}

// degrade は永続ストア障害によるフォールバックをログとメトリクスに記録する。
func (s *Service) degrade(op string, err error) {
	s.recorder.RecordStorageFallback("subscribers")
	slog.Warn("永続ストアが利用できないためインメモリストアへ縮退します",
		slog.String("op", op),
		slog.String("error", err.Error()),
	)
}
