package collection

import (
	"context"

	"docvault/internal/model"
	"docvault/internal/repository"
	"docvault/internal/storage"
)

// Users reads the `users` collection written by the auth subsystem.
type Users struct {
	store storage.Storage
}

func NewUsers(store storage.Storage) *Users {
	return &Users{store: store}
}

var _ repository.UserDirectory = (*Users)(nil)

func (r *Users) FindByIDs(ctx context.Context, ids []string) (map[string]model.User, error) {
	all, err := load[model.User](ctx, r.store, UsersKey)
	if err != nil {
		return nil, err
	}
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := make(map[string]model.User, len(ids))
	for _, u := range all {
		if _, ok := want[u.ID]; ok {
			out[u.ID] = u
		}
	}
	return out, nil
}
