package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresViewRepo はPostgreSQLを使用した閲覧数リポジトリ。
type PostgresViewRepo struct {
	db *sql.DB
}

// NewPostgresViewRepo はPostgresViewRepoを生成する。
func NewPostgresViewRepo(db *sql.DB) *PostgresViewRepo {
	return &PostgresViewRepo{db: db}
}

// GetViews は指定slugの閲覧数を返す。レコードが存在しない場合は0を返す。
func (r *PostgresViewRepo) GetViews(ctx context.Context, slug string) (int64, error) {
	var views int64
	err := r.db.QueryRowContext(ctx,
		`SELECT views FROM post_views WHERE slug = $1`,
		slug,
	).Scan(&views)

	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("閲覧数の取得に失敗しました: %w", err)
	}

	return views, nil
}

// IncrementViews は単一のアトミックなUPSERT文で閲覧数をインクリメントする。
// アプリケーション側のread-then-writeを避けることで、並行リクエスト間の
// lost updateを防ぐ。
func (r *PostgresViewRepo) IncrementViews(ctx context.Context, slug string) (int64, error) {
	var views int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO post_views (slug, views) VALUES ($1, 1)
		 ON CONFLICT (slug) DO UPDATE
		     SET views = post_views.views + 1, updated_at = now()
		 RETURNING views`,
		slug,
	).Scan(&views)

	if err != nil {
		return 0, fmt.Errorf("閲覧数のインクリメントに失敗しました: %w", err)
	}

	return views, nil
}
