package service

import (
	"context"
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"docvault/internal/model"
	"docvault/internal/repository"
)

// MaxNameLength bounds document names in runes.
const MaxNameLength = 255

var nameRules = []validation.Rule{
	validation.Required,
	validation.RuneLength(1, MaxNameLength),
	validation.By(plainFileName),
}

func plainFileName(value any) error {
	s, _ := value.(string)
	if strings.ContainsAny(s, "/\\\x00") {
		return errors.New("must not contain path separators")
	}
	return nil
}

// DocumentStore validates document input, assigns identity and timestamps, and delegates
// persistence and the uniqueness invariant to a DocumentRepository.
type DocumentStore struct {
	repo  repository.DocumentRepository
	now   func() time.Time
	newID func() string
}

// NewDocumentStore constructs a DocumentStore.
func NewDocumentStore(repo repository.DocumentRepository) *DocumentStore {
	return &DocumentStore{
		repo:  repo,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// ListByOwner returns the owner's documents, newest first.
func (s *DocumentStore) ListByOwner(ctx context.Context, ownerID string) ([]model.Document, error) {
	docs, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, translate(err, "failed to load documents")
	}
	return docs, nil
}

// Create stores a new document. The name must be unused among the owner's documents.
func (s *DocumentStore) Create(ctx context.Context, draft model.DocumentDraft) (*model.Document, error) {
	if err := validateDraft(&draft); err != nil {
		return nil, newError(KindValidation, err, "%s", err.Error())
	}

	now := s.now()
	doc := &model.Document{
		ID:           s.newID(),
		Name:         draft.Name,
		MimeType:     draft.MimeType,
		Size:         draft.Size,
		Content:      draft.Content,
		OwnerID:      draft.OwnerID,
		UploadTime:   now,
		LastModified: now,
	}
	stored, err := s.repo.Create(ctx, doc)
	if errors.Is(err, repository.ErrDuplicateName) {
		return nil, newError(KindDuplicateName, err, "file %q already exists", draft.Name)
	}
	if err != nil {
		return nil, translate(err, "failed to store document")
	}
	return stored, nil
}

// Rename changes a document's name and returns it together with its previous name.
func (s *DocumentStore) Rename(ctx context.Context, id, ownerID, newName string) (*model.Document, string, error) {
	if err := validation.Validate(newName, nameRules...); err != nil {
		return nil, "", newError(KindValidation, err, "name: %s", err.Error())
	}
	doc, oldName, err := s.repo.Rename(ctx, id, ownerID, newName, s.now())
	if errors.Is(err, repository.ErrDuplicateName) {
		return nil, "", newError(KindDuplicateName, err, "file name %q already exists", newName)
	}
	if err != nil {
		return nil, "", translate(err, "failed to rename document")
	}
	return doc, oldName, nil
}

// Delete removes the owner's document and returns the removed record.
func (s *DocumentStore) Delete(ctx context.Context, id, ownerID string) (*model.Document, error) {
	doc, err := s.repo.Delete(ctx, id, ownerID)
	if err != nil {
		return nil, translate(err, "failed to delete document")
	}
	return doc, nil
}

// Get returns the owner's document.
func (s *DocumentStore) Get(ctx context.Context, id, ownerID string) (*model.Document, error) {
	doc, err := s.repo.Get(ctx, id, ownerID)
	if err != nil {
		return nil, translate(err, "failed to load document")
	}
	return doc, nil
}

func validateDraft(d *model.DocumentDraft) error {
	return validation.ValidateStruct(d,
		validation.Field(&d.OwnerID, validation.Required),
		validation.Field(&d.Name, nameRules...),
		validation.Field(&d.MimeType, validation.Required),
		validation.Field(&d.Size, validation.Min(int64(0))),
		validation.Field(&d.Content, validation.Required),
	)
}
