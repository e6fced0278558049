// Package app wires configuration, persistence, services and the HTTP server together.
package app

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"docvault/internal/config"
	"docvault/internal/database"
	"docvault/internal/database/migration"
	"docvault/internal/http/handler"
	"docvault/internal/repository"
	"docvault/internal/repository/collection"
	"docvault/internal/repository/postgres"
	"docvault/internal/storage"
)

// Backend bundles the repositories of one storage driver.
type Backend struct {
	Documents repository.DocumentRepository
	AuditLog  repository.AuditLogRepository
	Users     repository.UserDirectory
	Health    handler.Pinger

	closers []func() error
}

// Close releases the driver's connections.
func (b *Backend) Close() error {
	var first error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// OpenBackend connects the storage driver named by cfg.Storage.Driver.
func OpenBackend(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (*Backend, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		return collectionBackend(storage.NewMemory()), nil

	case config.DriverRedis:
		client := storage.NewRedisClient(cfg.Redis)
		store := storage.NewRedis(client, cfg.Storage.Prefix)
		if err := store.Ping(ctx); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		b := collectionBackend(store)
		b.closers = append(b.closers, client.Close)
		return b, nil

	case config.DriverMinIO:
		store, err := storage.NewMinIO(cfg.MinIO, cfg.Storage.Prefix)
		if err != nil {
			return nil, fmt.Errorf("minio: %w", err)
		}
		return collectionBackend(store), nil

	case config.DriverPostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		if err := migration.EnsureMigrated(ctx, db, logger, cfg.Database.Host); err != nil {
			_ = db.Close()
			return nil, err
		}
		return postgresBackend(db), nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func collectionBackend(store storage.Storage) *Backend {
	return &Backend{
		Documents: collection.NewDocuments(store),
		AuditLog:  collection.NewAuditLog(store),
		Users:     collection.NewUsers(store),
		Health:    store,
	}
}

func postgresBackend(db *sql.DB) *Backend {
	return &Backend{
		Documents: postgres.NewDocumentPostgres(db),
		AuditLog:  postgres.NewAuditLogPostgres(db),
		Users:     postgres.NewUserPostgres(db),
		Health:    handler.PingFunc(db.PingContext),
		closers:   []func() error{db.Close},
	}
}
