package repository

import (
	"context"

	"docvault/internal/model"
)

// AuditLogRepository is an append-only store of audit entries.
type AuditLogRepository interface {
	// Append stores a new entry.
	Append(ctx context.Context, entry *model.AuditLogEntry) error
	// List returns entries for userID, or every entry when userID is empty. Order is unspecified.
	List(ctx context.Context, userID string) ([]model.AuditLogEntry, error)
	// Clear removes every entry.
	Clear(ctx context.Context) error
}

// UserDirectory is the read-only view of the external user collection.
type UserDirectory interface {
	// FindByIDs returns the users that exist among ids, keyed by ID. Unknown ids are omitted.
	FindByIDs(ctx context.Context, ids []string) (map[string]model.User, error)
}
