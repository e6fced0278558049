// Package migration creates the docvault schema on first start.
package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type migrationStep struct {
	Name string
	SQL  string
}

// sentinelTable is created by the last step, so its presence means every earlier step ran.
// Keep it pointing at whatever the final step creates.
const sentinelTable = "public.users"

var steps = []migrationStep{
	{
		Name: "create_table_documents",
		SQL: `CREATE TABLE IF NOT EXISTS documents (
  id            TEXT        PRIMARY KEY,
  seq           BIGSERIAL   NOT NULL,
  name          TEXT        NOT NULL CHECK (name <> ''),
  mime_type     TEXT        NOT NULL,
  size          BIGINT      NOT NULL CHECK (size >= 0),
  content       TEXT        NOT NULL,
  owner_id      TEXT        NOT NULL,
  upload_time   TIMESTAMPTZ NOT NULL,
  last_modified TIMESTAMPTZ NOT NULL
);`,
	},
	{
		Name: "create_unique_index_documents_owner_name",
		SQL:  `CREATE UNIQUE INDEX IF NOT EXISTS uq_documents_owner_name ON documents (owner_id, name);`,
	},
	{
		Name: "create_index_documents_owner_upload_time",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_owner_upload_time ON documents (owner_id, upload_time DESC, seq DESC);`,
	},
	{
		Name: "create_table_operation_logs",
		SQL: `CREATE TABLE IF NOT EXISTS operation_logs (
  id         TEXT        PRIMARY KEY,
  user_id    TEXT        NOT NULL,
  action     TEXT        NOT NULL,
  created_at TIMESTAMPTZ NOT NULL
);`,
	},
	{
		Name: "create_index_operation_logs_user_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_operation_logs_user_created_at ON operation_logs (user_id, created_at DESC);`,
	},
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id       TEXT PRIMARY KEY,
  username TEXT NOT NULL,
  role     TEXT NOT NULL DEFAULT 'USER' CHECK (role IN ('ADMIN', 'USER'))
);`,
	},
}

// EnsureMigrated runs every step when the sentinel table is missing. Steps are idempotent
// and the sentinel comes last, so a run interrupted halfway is completed by the next start.
func EnsureMigrated(ctx context.Context, db *sql.DB, logger *zap.Logger, dbHost string) error {
	start := time.Now()
	log := logger.With(zap.String("component", "database"), zap.String("db_host", dbHost))

	log.Info("db_migration_check", zap.String("status", "starting"))

	var exists bool
	err := db.QueryRowContext(ctx, "SELECT to_regclass($1) IS NOT NULL", sentinelTable).Scan(&exists)
	if err != nil {
		log.Error("db_migration_failed",
			zap.String("status", "error"),
			zap.Error(err),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("db_migration_skip",
			zap.String("status", "success"),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil
	}

	log.Info("db_migration_start", zap.String("status", "in_progress"), zap.Int("steps", len(steps)))

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				zap.String("status", "error"),
				zap.String("migration_step", step.Name),
				zap.Error(err),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Info("db_migration_step",
			zap.String("status", "success"),
			zap.String("migration_step", step.Name),
			zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
		)
	}

	log.Info("db_migration_success",
		zap.String("status", "success"),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}
