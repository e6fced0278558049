package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"docvault/internal/model"
	"docvault/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// Name uniqueness is enforced by the (owner_id, name) unique index, so the check and the
// write are one statement.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const documentColumns = `id, name, mime_type, size, content, owner_id, upload_time, last_modified`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*model.Document, error) {
	var d model.Document
	if err := row.Scan(
		&d.ID,
		&d.Name,
		&d.MimeType,
		&d.Size,
		&d.Content,
		&d.OwnerID,
		&d.UploadTime,
		&d.LastModified,
	); err != nil {
		return nil, err
	}
	return &d, nil
}

// ListByOwner returns the owner's documents; seq breaks upload_time ties by insertion order.
func (r *DocumentPostgres) ListByOwner(ctx context.Context, ownerID string) ([]model.Document, error) {
	const q = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE owner_id = $1
		ORDER BY upload_time DESC, seq DESC
	`
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + documentColumns
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.Name,
		doc.MimeType,
		doc.Size,
		doc.Content,
		doc.OwnerID,
		doc.UploadTime,
		doc.LastModified,
	)
	out, err := scanDocument(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrDuplicateName
		}
		return nil, err
	}
	return out, nil
}

// Rename updates the name of a document owned by ownerID. The previous name is read from
// the same row under FOR UPDATE so it matches the value being replaced.
func (r *DocumentPostgres) Rename(ctx context.Context, id, ownerID, newName string, at time.Time) (*model.Document, string, error) {
	const q = `
		UPDATE documents AS d
		SET name = $1, last_modified = $2
		FROM (
			SELECT id, name FROM documents WHERE id = $3 AND owner_id = $4 FOR UPDATE
		) AS prev
		WHERE d.id = prev.id
		RETURNING prev.name, d.id, d.name, d.mime_type, d.size, d.content, d.owner_id, d.upload_time, d.last_modified
	`
	var (
		oldName string
		d       model.Document
	)
	err := r.db.QueryRowContext(ctx, q, newName, at, id, ownerID).Scan(
		&oldName,
		&d.ID,
		&d.Name,
		&d.MimeType,
		&d.Size,
		&d.Content,
		&d.OwnerID,
		&d.UploadTime,
		&d.LastModified,
	)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, "", repository.ErrNotFoundOrForbidden
	case isUniqueViolation(err):
		return nil, "", repository.ErrDuplicateName
	case err != nil:
		return nil, "", err
	}
	return &d, oldName, nil
}

// Delete removes a document owned by ownerID and returns the deleted row.
func (r *DocumentPostgres) Delete(ctx context.Context, id, ownerID string) (*model.Document, error) {
	const q = `DELETE FROM documents WHERE id = $1 AND owner_id = $2 RETURNING ` + documentColumns
	out, err := scanDocument(r.db.QueryRowContext(ctx, q, id, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFoundOrForbidden
	}
	return out, err
}

// Get fetches a single document owned by ownerID.
func (r *DocumentPostgres) Get(ctx context.Context, id, ownerID string) (*model.Document, error) {
	const q = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE id = $1 AND owner_id = $2
	`
	out, err := scanDocument(r.db.QueryRowContext(ctx, q, id, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFoundOrForbidden
	}
	return out, err
}
