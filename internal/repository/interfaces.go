// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/ashokvarma/ashokworld/internal/model"
)

// ErrDuplicateEmail はユニーク制約違反（購読済みメールアドレス）を表す。
var ErrDuplicateEmail = errors.New("email already exists")

// ViewRepository は記事閲覧数の永続化インターフェース。
type ViewRepository interface {
	// GetViews は指定slugの閲覧数を返す。レコードが存在しない場合は0を返す。
	GetViews(ctx context.Context, slug string) (int64, error)

	// IncrementViews は指定slugの閲覧数をアトミックにインクリメントし、新しい値を返す。
	// レコードが存在しない場合はviews=1で作成する。
	// 同一slugへの並行インクリメントで更新が失われてはならない。
	IncrementViews(ctx context.Context, slug string) (int64, error)
}

// SubscriberRepository はニュースレター購読者の永続化インターフェース。
// emailは呼び出し側で小文字に正規化済みであることを前提とする。
type SubscriberRepository interface {
	// FindByEmail は指定メールアドレスの購読者を取得する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.Subscriber, error)

	// Create は購読者を作成する。
	// 既に同じemailのレコードが存在する場合はErrDuplicateEmailを返す。
	Create(ctx context.Context, sub *model.Subscriber) error

	// Count は購読者の総数を返す。
	Count(ctx context.Context) (int, error)
}

// AuditLogRepository は監査ログの追記専用インターフェース。
// コア内では書き込みのみで、参照クエリは定義しない。
type AuditLogRepository interface {
	// Append は監査ログエントリを追記する。
	Append(ctx context.Context, entry *model.AuditLogEntry) error
}
