// Package collection stores each entity set as a flat JSON array under a fixed storage key,
// mirroring the durable schema of the `documents`, `operationLogs` and `users` collections.
package collection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"docvault/internal/storage"
)

// Fixed storage keys of the persisted collections.
const (
	DocumentsKey = "documents"
	AuditLogKey  = "operationLogs"
	UsersKey     = "users"
)

// ErrCorrupt wraps a decoding failure of a stored collection.
var ErrCorrupt = errors.New("corrupt collection")

func load[T any](ctx context.Context, store storage.Storage, key string) ([]T, error) {
	raw, err := store.Get(ctx, key)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return decode[T](key, raw)
}

func decode[T any](key string, raw []byte) ([]T, error) {
	items := []T{}
	if len(raw) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrCorrupt, key, err)
	}
	return items, nil
}

// modify runs fn on the decoded collection inside a single atomic storage update.
// fn returns the new collection; an error from fn leaves the stored value untouched.
func modify[T any](ctx context.Context, store storage.Storage, key string, fn func([]T) ([]T, error)) error {
	return store.Update(ctx, key, func(cur []byte) ([]byte, error) {
		items, err := decode[T](key, cur)
		if err != nil {
			return nil, err
		}
		next, err := fn(items)
		if err != nil {
			return nil, err
		}
		b, err := json.Marshal(next)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", key, err)
		}
		return b, nil
	})
}
