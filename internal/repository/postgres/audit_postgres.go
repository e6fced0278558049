package postgres

import (
	"context"
	"database/sql"

	"docvault/internal/model"
	"docvault/internal/repository"
)

// AuditLogPostgres stores audit entries in the operation_logs table.
type AuditLogPostgres struct {
	db *sql.DB
}

func NewAuditLogPostgres(db *sql.DB) *AuditLogPostgres {
	return &AuditLogPostgres{db: db}
}

var _ repository.AuditLogRepository = (*AuditLogPostgres)(nil)

func (r *AuditLogPostgres) Append(ctx context.Context, e *model.AuditLogEntry) error {
	const q = `INSERT INTO operation_logs (id, user_id, action, created_at) VALUES ($1, $2, $3, $4)`
	_, err := r.db.ExecContext(ctx, q, e.ID, e.UserID, e.Action, e.Timestamp)
	return err
}

func (r *AuditLogPostgres) List(ctx context.Context, userID string) ([]model.AuditLogEntry, error) {
	const q = `
		SELECT id, user_id, action, created_at
		FROM operation_logs
		WHERE $1 = '' OR user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.AuditLogEntry, 0)
	for rows.Next() {
		var e model.AuditLogEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.Timestamp); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *AuditLogPostgres) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `TRUNCATE operation_logs`)
	return err
}
