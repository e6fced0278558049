package collection

import (
	"context"
	"slices"
	"time"

	"docvault/internal/model"
	"docvault/internal/repository"
	"docvault/internal/storage"
)

// Documents implements repository.DocumentRepository over the `documents` collection.
// Array order is insertion order, which gives the tie-break for equal upload times.
type Documents struct {
	store storage.Storage
}

// NewDocuments returns a document repository backed by store.
func NewDocuments(store storage.Storage) *Documents {
	return &Documents{store: store}
}

var _ repository.DocumentRepository = (*Documents)(nil)

func (r *Documents) ListByOwner(ctx context.Context, ownerID string) ([]model.Document, error) {
	all, err := load[model.Document](ctx, r.store, DocumentsKey)
	if err != nil {
		return nil, err
	}

	out := make([]model.Document, 0)
	// Walk backwards so the stable sort keeps later inserts first among equal timestamps.
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].OwnerID == ownerID {
			out = append(out, all[i])
		}
	}
	slices.SortStableFunc(out, func(a, b model.Document) int {
		return b.UploadTime.Compare(a.UploadTime)
	})
	return out, nil
}

func (r *Documents) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	err := modify(ctx, r.store, DocumentsKey, func(all []model.Document) ([]model.Document, error) {
		if nameTaken(all, doc.OwnerID, doc.Name, "") {
			return nil, repository.ErrDuplicateName
		}
		return append(all, *doc), nil
	})
	if err != nil {
		return nil, err
	}
	out := *doc
	return &out, nil
}

func (r *Documents) Rename(ctx context.Context, id, ownerID, newName string, at time.Time) (*model.Document, string, error) {
	var (
		renamed model.Document
		oldName string
	)
	err := modify(ctx, r.store, DocumentsKey, func(all []model.Document) ([]model.Document, error) {
		idx := indexOwned(all, id, ownerID)
		if idx < 0 {
			return nil, repository.ErrNotFoundOrForbidden
		}
		if nameTaken(all, ownerID, newName, id) {
			return nil, repository.ErrDuplicateName
		}
		oldName = all[idx].Name
		all[idx].Name = newName
		all[idx].LastModified = at
		renamed = all[idx]
		return all, nil
	})
	if err != nil {
		return nil, "", err
	}
	return &renamed, oldName, nil
}

func (r *Documents) Delete(ctx context.Context, id, ownerID string) (*model.Document, error) {
	var deleted model.Document
	err := modify(ctx, r.store, DocumentsKey, func(all []model.Document) ([]model.Document, error) {
		idx := indexOwned(all, id, ownerID)
		if idx < 0 {
			return nil, repository.ErrNotFoundOrForbidden
		}
		deleted = all[idx]
		return slices.Delete(all, idx, idx+1), nil
	})
	if err != nil {
		return nil, err
	}
	return &deleted, nil
}

func (r *Documents) Get(ctx context.Context, id, ownerID string) (*model.Document, error) {
	all, err := load[model.Document](ctx, r.store, DocumentsKey)
	if err != nil {
		return nil, err
	}
	idx := indexOwned(all, id, ownerID)
	if idx < 0 {
		return nil, repository.ErrNotFoundOrForbidden
	}
	doc := all[idx]
	return &doc, nil
}

func indexOwned(all []model.Document, id, ownerID string) int {
	return slices.IndexFunc(all, func(d model.Document) bool {
		return d.ID == id && d.OwnerID == ownerID
	})
}

// nameTaken reports whether ownerID has a document called name other than exceptID.
func nameTaken(all []model.Document, ownerID, name, exceptID string) bool {
	return slices.ContainsFunc(all, func(d model.Document) bool {
		return d.OwnerID == ownerID && d.Name == name && d.ID != exceptID
	})
}
