package collection

import (
	"context"

	"docvault/internal/model"
	"docvault/internal/repository"
	"docvault/internal/storage"
)

// AuditLog implements repository.AuditLogRepository over the `operationLogs` collection.
type AuditLog struct {
	store storage.Storage
}

func NewAuditLog(store storage.Storage) *AuditLog {
	return &AuditLog{store: store}
}

var _ repository.AuditLogRepository = (*AuditLog)(nil)

func (r *AuditLog) Append(ctx context.Context, entry *model.AuditLogEntry) error {
	return modify(ctx, r.store, AuditLogKey, func(all []model.AuditLogEntry) ([]model.AuditLogEntry, error) {
		return append(all, *entry), nil
	})
}

func (r *AuditLog) List(ctx context.Context, userID string) ([]model.AuditLogEntry, error) {
	all, err := load[model.AuditLogEntry](ctx, r.store, AuditLogKey)
	if err != nil {
		return nil, err
	}
	if userID == "" {
		return all, nil
	}
	out := make([]model.AuditLogEntry, 0, len(all))
	for _, e := range all {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

// Clear resets the collection to an empty array.
func (r *AuditLog) Clear(ctx context.Context) error {
	return r.store.Put(ctx, AuditLogKey, []byte("[]"))
}
