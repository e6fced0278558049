// Package codec converts raw file bytes into a self-describing data URL payload and back.
package codec

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
)

// DefaultMaxPayloadSize is the largest accepted raw payload (10 MiB).
const DefaultMaxPayloadSize int64 = 10 << 20

const (
	defaultMimeType = "application/octet-stream"
	dataPrefix      = "data:"
	base64Marker    = ";base64,"
)

var (
	ErrPayloadTooLarge  = errors.New("payload exceeds maximum size")
	ErrMalformedPayload = errors.New("malformed payload")
	ErrReaderNil        = errors.New("reader is nil")
)

// Codec encodes payloads up to a fixed size limit.
type Codec struct {
	limit int64
}

// New returns a Codec enforcing limit bytes. A non-positive limit selects DefaultMaxPayloadSize.
func New(limit int64) *Codec {
	if limit <= 0 {
		limit = DefaultMaxPayloadSize
	}
	return &Codec{limit: limit}
}

// Limit returns the maximum raw payload size in bytes.
func (c *Codec) Limit() int64 { return c.limit }

// Encode reads r and returns a data URL of the form data:<mime>;base64,<bytes> along with
// the number of raw bytes read. A declared size over the limit is rejected before r is
// touched; a stream that turns out longer than the limit is rejected after reading at most
// limit+1 bytes.
func (c *Codec) Encode(r io.Reader, declaredSize int64, mimeType string) (string, int64, error) {
	if declaredSize > c.limit {
		return "", 0, ErrPayloadTooLarge
	}
	if r == nil {
		return "", 0, ErrReaderNil
	}

	raw, err := io.ReadAll(io.LimitReader(r, c.limit+1))
	if err != nil {
		return "", 0, fmt.Errorf("read payload: %w", err)
	}
	n := int64(len(raw))
	if n > c.limit {
		return "", 0, ErrPayloadTooLarge
	}

	return EncodeBytes(raw, mimeType), n, nil
}

// Decode parses payload. Decoding does not depend on the limit.
func (c *Codec) Decode(payload string) (string, []byte, error) {
	return Decode(payload)
}

// EncodeBytes builds the data URL for raw without any size check.
func EncodeBytes(raw []byte, mimeType string) string {
	if mimeType == "" {
		mimeType = defaultMimeType
	}
	var b strings.Builder
	b.Grow(len(dataPrefix) + len(mimeType) + len(base64Marker) + base64.StdEncoding.EncodedLen(len(raw)))
	b.WriteString(dataPrefix)
	b.WriteString(mimeType)
	b.WriteString(base64Marker)
	b.WriteString(base64.StdEncoding.EncodeToString(raw))
	return b.String()
}

// Decode parses a data URL produced by Encode and returns its MIME type and raw bytes.
func Decode(payload string) (string, []byte, error) {
	if !strings.HasPrefix(payload, dataPrefix) {
		return "", nil, ErrMalformedPayload
	}
	rest := payload[len(dataPrefix):]
	idx := strings.Index(rest, base64Marker)
	if idx < 0 {
		return "", nil, ErrMalformedPayload
	}
	mimeType := rest[:idx]
	if mimeType == "" {
		mimeType = defaultMimeType
	}

	raw, err := base64.StdEncoding.DecodeString(rest[idx+len(base64Marker):])
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if raw == nil {
		raw = []byte{}
	}
	return mimeType, raw, nil
}
