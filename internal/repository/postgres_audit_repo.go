package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ashokvarma/ashokworld/internal/model"
)

// PostgresAuditRepo はPostgreSQLを使用した監査ログリポジトリ。
type PostgresAuditRepo struct {
	db *sql.DB
}

// NewPostgresAuditRepo はPostgresAuditRepoを生成する。
func NewPostgresAuditRepo(db *sql.DB) *PostgresAuditRepo {
	return &PostgresAuditRepo{db: db}
}

// Append は監査ログエントリを追記する。
func (r *PostgresAuditRepo) Append(ctx context.Context, entry *model.AuditLogEntry) error {
	var details, performedBy sql.NullString
	if entry.Details != "" {
		details = sql.NullString{String: entry.Details, Valid: true}
	}
	if entry.PerformedBy != "" {
		performedBy = sql.NullString{String: entry.PerformedBy, Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_log (id, action, details, performed_at, performed_by)
		 VALUES ($1, $2, $3, $4, $5)`,
		entry.ID, entry.Action, details, entry.PerformedAt, performedBy,
	)

	if err != nil {
		return fmt.Errorf("監査ログの追記に失敗しました: %w", err)
	}

	return nil
}
