package service

import (
	"context"

	"docvault/internal/model"
)

// RecentLimit is the number of documents reported as recent uploads.
const RecentLimit = 5

// Stats derives per-owner statistics from the document store. Nothing is cached.
type Stats struct {
	docs *DocumentStore
}

func NewStats(docs *DocumentStore) *Stats {
	return &Stats{docs: docs}
}

// Compute returns the owner's document count, total size and most recent uploads.
func (s *Stats) Compute(ctx context.Context, ownerID string) (*model.Stats, error) {
	docs, err := s.docs.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := &model.Stats{Count: len(docs), Recent: docs[:min(len(docs), RecentLimit)]}
	for _, d := range docs {
		out.TotalSizeBytes += d.Size
	}
	return out, nil
}
