// Package storage holds the durable backends for the persisted collections.
// Each collection is a single opaque value under a fixed key; callers own the encoding.
package storage

import (
	"context"
	"errors"
)

var (
	// ErrObjectNotFound is returned by Get when no value is stored under the key.
	ErrObjectNotFound = errors.New("object not found")
	// ErrConflict is returned by Update when a concurrent writer kept winning.
	ErrConflict = errors.New("concurrent update conflict")
)

// UpdateFunc receives the current value (nil when absent) and returns the value to store.
// It may be invoked more than once when a backend retries after a conflict, so it must not
// leak partial results to the caller until Update returns.
type UpdateFunc func(current []byte) ([]byte, error)

// Storage is a keyed blob store with an atomic read-modify-write primitive.
type Storage interface {
	// Get returns the value stored under key or ErrObjectNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put replaces the value stored under key.
	Put(ctx context.Context, key string, data []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Update atomically applies fn to the value under key. An error from fn aborts the
	// update and is returned unchanged.
	Update(ctx context.Context, key string, fn UpdateFunc) error
	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error
}
