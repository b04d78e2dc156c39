// Package model はドメインモデルを定義する。
package model

import "time"

// PostView は記事ごとの閲覧数レコードを表す。
// slugをユニークキーとし、初回インクリメント時に作成される。削除されることはない。
type PostView struct {
	Slug      string
	Views     int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Subscriber はニュースレター購読者レコードを表す。
// emailは小文字に正規化した上でユニークキーとして保存する。
type Subscriber struct {
	Email          string
	SubscribedAt   time.Time
	Confirmed      bool
	UnsubscribedAt *time.Time
}

// AuditLogEntry は管理操作の追記専用監査レコードを表す。
// コア内では書き込みのみで、参照クエリは定義しない。
type AuditLogEntry struct {
	ID          string
	Action      string
	Details     string
	PerformedAt time.Time
	PerformedBy string
}
