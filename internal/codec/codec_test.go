package codec

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingReader fails the test if anything reads from it.
type failingReader struct{ t *testing.T }

func (f failingReader) Read(p []byte) (int, error) {
	f.t.Fatal("reader must not be consumed")
	return 0, errors.New("unreachable")
}

func TestCodec_RoundTrip(t *testing.T) {
	c := New(1024)

	tests := []struct {
		name string
		raw  []byte
		mime string
	}{
		{name: "empty", raw: []byte{}, mime: "text/plain"},
		{name: "text", raw: []byte("hello world"), mime: "text/plain"},
		{name: "binary", raw: []byte{0x00, 0xff, 0x10, 0x80}, mime: "application/octet-stream"},
		{name: "exactly at limit", raw: bytes.Repeat([]byte{'x'}, 1024), mime: "text/plain"},
		{name: "no mime", raw: []byte("abc"), mime: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, n, err := c.Encode(bytes.NewReader(tt.raw), int64(len(tt.raw)), tt.mime)
			require.NoError(t, err)
			assert.Equal(t, int64(len(tt.raw)), n)
			assert.True(t, strings.HasPrefix(payload, "data:"))

			mime, got, err := c.Decode(payload)
			require.NoError(t, err)
			assert.Equal(t, tt.raw, got)
			if tt.mime == "" {
				assert.Equal(t, "application/octet-stream", mime)
			} else {
				assert.Equal(t, tt.mime, mime)
			}
		})
	}
}

func TestCodec_Encode_DeclaredSizeOverLimit(t *testing.T) {
	c := New(10)

	payload, _, err := c.Encode(failingReader{t}, 11, "text/plain")

	assert.ErrorIs(t, err, ErrPayloadTooLarge)
	assert.Empty(t, payload)
}

func TestCodec_Encode_StreamOverLimit(t *testing.T) {
	c := New(10)

	// Declared size lies; the stream itself is longer than the limit.
	payload, _, err := c.Encode(strings.NewReader("01234567890"), 3, "text/plain")

	assert.ErrorIs(t, err, ErrPayloadTooLarge)
	assert.Empty(t, payload)
}

func TestCodec_Encode_CountsBytesRead(t *testing.T) {
	c := New(10)

	payload, n, err := c.Encode(strings.NewReader("abcdef"), 0, "text/plain")

	require.NoError(t, err)
	assert.Equal(t, int64(6), n)
	_, raw, err := c.Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, []byte("abcdef"), raw)
}

func TestCodec_Encode_NilReader(t *testing.T) {
	_, _, err := New(0).Encode(nil, 1, "text/plain")
	assert.ErrorIs(t, err, ErrReaderNil)
}

func TestNew_DefaultLimit(t *testing.T) {
	assert.Equal(t, DefaultMaxPayloadSize, New(0).Limit())
	assert.Equal(t, int64(10*1024*1024), DefaultMaxPayloadSize)
	assert.Equal(t, int64(5), New(5).Limit())
}

func TestDecode_Malformed(t *testing.T) {
	tests := []string{
		"",
		"hello",
		"data:text/plain,plain-not-base64",
		"data:text/plain;base64,@@@",
	}
	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			_, _, err := Decode(in)
			assert.ErrorIs(t, err, ErrMalformedPayload)
		})
	}
}

func TestEncodeBytes(t *testing.T) {
	assert.Equal(t, "data:text/plain;base64,aGk=", EncodeBytes([]byte("hi"), "text/plain"))
}
