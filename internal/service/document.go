package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"docvault/internal/codec"
	"docvault/internal/model"
)

var tracer = otel.Tracer("docvault/service")

// FileUpload describes an uploaded file as handed over by the transport layer.
type FileUpload struct {
	Name     string
	MimeType string
	// Size is the declared length, used only to reject oversized uploads early.
	// The stored size is the number of bytes actually read from Content.
	Size    int64
	Content io.Reader
}

// Download is a document's decoded content ready to be written back out.
type Download struct {
	Name     string
	MimeType string
	Data     []byte
}

// DocumentService defines the document use cases. Every method takes the acting user
// explicitly and returns either a value or a *Error.
type DocumentService interface {
	// Upload encodes and stores a new document, then records "uploaded <name>".
	Upload(ctx context.Context, who model.Identity, f FileUpload) (*model.Document, error)

	// Delete removes a document, then records "deleted <name>".
	Delete(ctx context.Context, who model.Identity, id string) (*model.Document, error)

	// Rename renames a document, then records "renamed <old> to <new>".
	Rename(ctx context.Context, who model.Identity, id, newName string) (*model.Document, error)

	// Download returns the decoded content of a document.
	Download(ctx context.Context, who model.Identity, id string) (*Download, error)

	// Preview returns the stored document including its encoded payload.
	Preview(ctx context.Context, who model.Identity, id string) (*model.Document, error)

	// List returns the caller's documents, newest first.
	List(ctx context.Context, who model.Identity) ([]model.Document, error)

	// Stats returns the caller's document statistics.
	Stats(ctx context.Context, who model.Identity) (*model.Stats, error)
}

// Options tune optional behavior of the document service.
type Options struct {
	// AuditReads records "downloaded <name>" for successful downloads.
	AuditReads bool
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	docs   *DocumentStore
	audit  *AuditLog
	stats  *Stats
	codec  *codec.Codec
	logger *zap.Logger
	opts   Options
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(docs *DocumentStore, audit *AuditLog, c *codec.Codec, logger *zap.Logger, opts Options) DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &documentService{
		docs:   docs,
		audit:  audit,
		stats:  NewStats(docs),
		codec:  c,
		logger: logger,
		opts:   opts,
	}
}

func (s *documentService) Upload(ctx context.Context, who model.Identity, f FileUpload) (doc *model.Document, err error) {
	ctx, span := startSpan(ctx, "DocumentService.Upload", who)
	defer func() { s.finish(span, "upload", &err, recover()) }()

	if err := requireCaller(who); err != nil {
		return nil, err
	}
	mimeType := f.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	payload, size, err := s.codec.Encode(f.Content, f.Size, mimeType)
	switch {
	case errors.Is(err, codec.ErrPayloadTooLarge):
		return nil, quotaExceeded(s.codec.Limit())
	case errors.Is(err, codec.ErrReaderNil):
		return nil, newError(KindValidation, err, "file is required")
	case err != nil:
		return nil, newError(KindPersistenceFailure, err, "file read failed")
	}

	doc, err = s.docs.Create(ctx, model.DocumentDraft{
		Name:     f.Name,
		MimeType: mimeType,
		Size:     size,
		Content:  payload,
		OwnerID:  who.UserID,
	})
	if err != nil {
		return nil, err
	}

	s.audit.Append(ctx, who.UserID, "uploaded "+doc.Name)
	return doc, nil
}

func (s *documentService) Delete(ctx context.Context, who model.Identity, id string) (doc *model.Document, err error) {
	ctx, span := startSpan(ctx, "DocumentService.Delete", who)
	defer func() { s.finish(span, "delete", &err, recover()) }()

	if err := requireCaller(who); err != nil {
		return nil, err
	}
	doc, err = s.docs.Delete(ctx, id, who.UserID)
	if err != nil {
		return nil, err
	}

	s.audit.Append(ctx, who.UserID, "deleted "+doc.Name)
	return doc, nil
}

func (s *documentService) Rename(ctx context.Context, who model.Identity, id, newName string) (doc *model.Document, err error) {
	ctx, span := startSpan(ctx, "DocumentService.Rename", who)
	defer func() { s.finish(span, "rename", &err, recover()) }()

	if err := requireCaller(who); err != nil {
		return nil, err
	}
	doc, oldName, err := s.docs.Rename(ctx, id, who.UserID, newName)
	if err != nil {
		return nil, err
	}

	s.audit.Append(ctx, who.UserID, fmt.Sprintf("renamed %s to %s", oldName, doc.Name))
	return doc, nil
}

func (s *documentService) Download(ctx context.Context, who model.Identity, id string) (out *Download, err error) {
	ctx, span := startSpan(ctx, "DocumentService.Download", who)
	defer func() { s.finish(span, "download", &err, recover()) }()

	if err := requireCaller(who); err != nil {
		return nil, err
	}
	doc, err := s.docs.Get(ctx, id, who.UserID)
	if err != nil {
		return nil, err
	}
	mimeType, data, err := codec.Decode(doc.Content)
	if err != nil {
		return nil, newError(KindPersistenceFailure, err, "stored content is unreadable")
	}
	if doc.MimeType != "" {
		mimeType = doc.MimeType
	}

	if s.opts.AuditReads {
		s.audit.Append(ctx, who.UserID, "downloaded "+doc.Name)
	}
	return &Download{Name: doc.Name, MimeType: mimeType, Data: data}, nil
}

func (s *documentService) Preview(ctx context.Context, who model.Identity, id string) (doc *model.Document, err error) {
	ctx, span := startSpan(ctx, "DocumentService.Preview", who)
	defer func() { s.finish(span, "preview", &err, recover()) }()

	if err := requireCaller(who); err != nil {
		return nil, err
	}
	return s.docs.Get(ctx, id, who.UserID)
}

func (s *documentService) List(ctx context.Context, who model.Identity) (docs []model.Document, err error) {
	ctx, span := startSpan(ctx, "DocumentService.List", who)
	defer func() { s.finish(span, "list", &err, recover()) }()

	if err := requireCaller(who); err != nil {
		return nil, err
	}
	return s.docs.ListByOwner(ctx, who.UserID)
}

func (s *documentService) Stats(ctx context.Context, who model.Identity) (st *model.Stats, err error) {
	ctx, span := startSpan(ctx, "DocumentService.Stats", who)
	defer func() { s.finish(span, "stats", &err, recover()) }()

	if err := requireCaller(who); err != nil {
		return nil, err
	}
	return s.stats.Compute(ctx, who.UserID)
}

func requireCaller(who model.Identity) error {
	if who.UserID == "" {
		return newError(KindValidation, nil, "caller identity is required")
	}
	return nil
}

func startSpan(ctx context.Context, name string, who model.Identity) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attribute.String("docvault.user_id", who.UserID)))
}

// finish converts a recovered panic into a persistence failure, makes sure every returned
// error is a *Error, and closes the span.
func (s *documentService) finish(span trace.Span, op string, errp *error, recovered any) {
	defer span.End()

	if recovered != nil {
		s.logger.Error("panic in document service",
			zap.String("operation", op),
			zap.Any("panic", recovered),
			zap.Stack("stack"),
		)
		*errp = newError(KindPersistenceFailure, fmt.Errorf("panic: %v", recovered), "%s failed", op)
	}
	if *errp == nil {
		return
	}

	*errp = translate(*errp, op+" failed")
	span.RecordError(*errp)
	span.SetStatus(codes.Error, string(KindOf(*errp)))
}
