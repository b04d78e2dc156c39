package repository

import (
	"context"
	"sync"
	"time"

	"github.com/ashokvarma/ashokworld/internal/model"
)

// MemoryViewRepo はプロセス内の閲覧数カウンタ。
// 永続ストア利用不可時のフォールバックとして使う。プロセス間で共有されず、
// 再起動で失われる。単一プロセス内の並行インクリメントはミューテックスで直列化する。
type MemoryViewRepo struct {
	mu    sync.Mutex
	views map[string]int64
}

// NewMemoryViewRepo はMemoryViewRepoを生成する。
func NewMemoryViewRepo() *MemoryViewRepo {
	return &MemoryViewRepo{views: make(map[string]int64)}
}

// GetViews は指定slugの閲覧数を返す。レコードが存在しない場合は0を返す。
func (r *MemoryViewRepo) GetViews(_ context.Context, slug string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.views[slug], nil
}

// IncrementViews は指定slugの閲覧数をインクリメントし、新しい値を返す。
func (r *MemoryViewRepo) IncrementViews(_ context.Context, slug string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views[slug]++
	return r.views[slug], nil
}

// MemorySubscriberRepo はプロセス内の購読者セット。
// 永続ストア利用不可時のフォールバックとして使う。
type MemorySubscriberRepo struct {
	mu   sync.Mutex
	subs map[string]*model.Subscriber
}

// NewMemorySubscriberRepo はMemorySubscriberRepoを生成する。
func NewMemorySubscriberRepo() *MemorySubscriberRepo {
	return &MemorySubscriberRepo{subs: make(map[string]*model.Subscriber)}
}

// FindByEmail は指定メールアドレスの購読者を取得する。見つからない場合はnilを返す。
func (r *MemorySubscriberRepo) FindByEmail(_ context.Context, email string) (*model.Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.subs[email]
	if !ok {
		return nil, nil
	}
	cp := *sub
	return &cp, nil
}

// Create は購読者を作成する。既に存在する場合はErrDuplicateEmailを返す。
func (r *MemorySubscriberRepo) Create(_ context.Context, sub *model.Subscriber) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.subs[sub.Email]; exists {
		return ErrDuplicateEmail
	}
	cp := *sub
	r.subs[sub.Email] = &cp
	return nil
}

// Count は購読者の総数を返す。
func (r *MemorySubscriberRepo) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs), nil
}

// MemoryAuditRepo はプロセス内の監査ログシンク。
// 永続ストア利用不可時のフォールバックとして使う。
type MemoryAuditRepo struct {
	mu      sync.Mutex
	entries []model.AuditLogEntry
}

// NewMemoryAuditRepo はMemoryAuditRepoを生成する。
func NewMemoryAuditRepo() *MemoryAuditRepo {
	return &MemoryAuditRepo{}
}

// Append は監査ログエントリを追記する。
func (r *MemoryAuditRepo) Append(_ context.Context, entry *model.AuditLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := *entry
	if e.PerformedAt.IsZero() {
		e.PerformedAt = time.Now()
	}
	r.entries = append(r.entries, e)
	return nil
}

// Len は記録済みエントリ数を返す。テスト用。
func (r *MemoryAuditRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
