package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/ashokvarma/ashokworld/internal/model"
)

// uniqueViolation はPostgreSQLのunique_violationエラーコード。
const uniqueViolation = "23505"

// PostgresSubscriberRepo はPostgreSQLを使用した購読者リポジトリ。
type PostgresSubscriberRepo struct {
	db *sql.DB
}

// NewPostgresSubscriberRepo はPostgresSubscriberRepoを生成する。
func NewPostgresSubscriberRepo(db *sql.DB) *PostgresSubscriberRepo {
	return &PostgresSubscriberRepo{db: db}
}

// FindByEmail は指定メールアドレスの購読者を取得する。見つからない場合はnilを返す。
func (r *PostgresSubscriberRepo) FindByEmail(ctx context.Context, email string) (*model.Subscriber, error) {
	sub := &model.Subscriber{}
	var unsubscribedAt sql.NullTime

	err := r.db.QueryRowContext(ctx,
		`SELECT email, subscribed_at, confirmed, unsubscribed_at
		 FROM subscribers WHERE email = $1`,
		email,
	).Scan(&sub.Email, &sub.SubscribedAt, &sub.Confirmed, &unsubscribedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("購読者の検索に失敗しました: %w", err)
	}

	if unsubscribedAt.Valid {
		sub.UnsubscribedAt = &unsubscribedAt.Time
	}

	return sub, nil
}

// Create は購読者を作成する。emailのユニーク制約に違反した場合はErrDuplicateEmailを返す。
func (r *PostgresSubscriberRepo) Create(ctx context.Context, sub *model.Subscriber) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO subscribers (email, subscribed_at, confirmed)
		 VALUES ($1, $2, $3)`,
		sub.Email, sub.SubscribedAt, sub.Confirmed,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("購読者の作成に失敗しました: %w", err)
	}

	return nil
}

// Count は購読者の総数を返す。
func (r *PostgresSubscriberRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM subscribers`,
	).Scan(&count)

	if err != nil {
		return 0, fmt.Errorf("購読者数の取得に失敗しました: %w", err)
	}

	return count, nil
}
