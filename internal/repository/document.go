// Package repository contains data access abstractions for documents, audit entries and users.
// Implementations live in subpackages (collection, postgres).
package repository

import (
	"context"
	"errors"
	"time"

	"docvault/internal/model"
)

var (
	// ErrDuplicateName means the owner already has a document with that name.
	ErrDuplicateName = errors.New("duplicate document name")
	// ErrNotFoundOrForbidden covers both a missing document and one owned by someone else.
	ErrNotFoundOrForbidden = errors.New("document not found or not owned by caller")
)

// DocumentRepository persists documents and enforces per-owner name uniqueness.
// The uniqueness check and the write it guards happen atomically inside each call.
type DocumentRepository interface {
	// ListByOwner returns the owner's documents, newest upload first. Documents with equal
	// upload times are ordered most recently inserted first.
	ListByOwner(ctx context.Context, ownerID string) ([]model.Document, error)

	// Create stores doc, which must already carry its ID and timestamps.
	// Returns ErrDuplicateName when the owner already uses doc.Name.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// Rename changes the name of the owner's document and sets LastModified to at.
	// The document itself is excluded from the uniqueness check. It returns the renamed
	// document and the name it had before.
	Rename(ctx context.Context, id, ownerID, newName string, at time.Time) (*model.Document, string, error)

	// Delete removes the owner's document and returns the removed record.
	Delete(ctx context.Context, id, ownerID string) (*model.Document, error)

	// Get returns the owner's document.
	Get(ctx context.Context, id, ownerID string) (*model.Document, error)
}
