package service

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"

	"docvault/internal/codec"
	"docvault/internal/repository"
)

// Kind tags a failure returned across the service boundary.
type Kind string

const (
	KindDuplicateName       Kind = "DuplicateName"
	KindQuotaExceeded       Kind = "QuotaExceeded"
	KindNotFoundOrForbidden Kind = "NotFoundOrForbidden"
	KindValidation          Kind = "Validation"
	KindPersistenceFailure  Kind = "PersistenceFailure"
)

// Error is a tagged failure carrying a message safe to show to the end user.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinels of the same kind, so errors.Is(err, ErrDuplicateName) holds for
// every duplicate-name failure regardless of its message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

var (
	ErrDuplicateName       = &Error{Kind: KindDuplicateName}
	ErrQuotaExceeded       = &Error{Kind: KindQuotaExceeded}
	ErrNotFoundOrForbidden = &Error{Kind: KindNotFoundOrForbidden}
	ErrValidation          = &Error{Kind: KindValidation}
	ErrPersistenceFailure  = &Error{Kind: KindPersistenceFailure}
)

const msgNotFound = "document does not exist or access denied"

// KindOf returns the kind of a service error, or PersistenceFailure for anything else.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindPersistenceFailure
}

func newError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func quotaExceeded(limit int64) *Error {
	return newError(KindQuotaExceeded, codec.ErrPayloadTooLarge, "file size must not exceed %s", humanize.IBytes(uint64(limit)))
}

// translate maps lower-layer errors onto tagged failures. fallback is the message used
// when err is a storage fault.
func translate(err error, fallback string) error {
	if err == nil {
		return nil
	}
	var e *Error
	switch {
	case errors.As(err, &e):
		return e
	case errors.Is(err, repository.ErrNotFoundOrForbidden):
		return newError(KindNotFoundOrForbidden, err, msgNotFound)
	case errors.Is(err, repository.ErrDuplicateName):
		return newError(KindDuplicateName, err, "file name already exists")
	default:
		return newError(KindPersistenceFailure, err, "%s", fallback)
	}
}
