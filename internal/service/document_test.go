package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"docvault/internal/codec"
	"docvault/internal/model"
	"docvault/internal/repository/collection"
	repoMocks "docvault/internal/repository/mocks"
	storageMocks "docvault/internal/storage/mocks"
)

func upload(name, mimeType string, size int) FileUpload {
	return FileUpload{
		Name:     name,
		MimeType: mimeType,
		Size:     int64(size),
		Content:  bytes.NewReader(bytes.Repeat([]byte("x"), size)),
	}
}

func actions(t *testing.T, f *fixture, who model.Identity) []string {
	t.Helper()
	views, err := f.audit.ListFor(context.Background(), who)
	require.NoError(t, err)
	out := make([]string, 0, len(views))
	for _, v := range views {
		out = append(out, v.Action)
	}
	return out
}

func names(docs []model.Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Name)
	}
	return out
}

func TestDocumentService_UploadThenStats(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	a, err := f.svc.Upload(ctx, alice, upload("a.txt", "text/plain", 100))
	require.NoError(t, err)
	b, err := f.svc.Upload(ctx, alice, upload("b.txt", "text/plain", 200))
	require.NoError(t, err)

	assert.Equal(t, "U1", a.OwnerID)
	assert.True(t, strings.HasPrefix(a.Content, "data:text/plain;base64,"))
	assert.True(t, b.UploadTime.After(a.UploadTime))

	st, err := f.svc.Stats(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Count)
	assert.Equal(t, int64(300), st.TotalSizeBytes)
	assert.Equal(t, []string{"b.txt", "a.txt"}, names(st.Recent))

	assert.Equal(t, []string{"uploaded b.txt", "uploaded a.txt"}, actions(t, f, alice))
}

func TestDocumentService_DeleteThenRenameIntoFreedName(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	a, err := f.svc.Upload(ctx, alice, upload("a.txt", "text/plain", 100))
	require.NoError(t, err)
	b, err := f.svc.Upload(ctx, alice, upload("b.txt", "text/plain", 200))
	require.NoError(t, err)

	_, err = f.svc.Delete(ctx, alice, a.ID)
	require.NoError(t, err)
	renamed, err := f.svc.Rename(ctx, alice, b.ID, "a.txt")
	require.NoError(t, err)

	assert.Equal(t, "a.txt", renamed.Name)
	assert.True(t, renamed.LastModified.After(renamed.UploadTime))

	docs, err := f.svc.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, b.ID, docs[0].ID)
	assert.Equal(t, "a.txt", docs[0].Name)

	assert.Equal(t, []string{
		"renamed b.txt to a.txt",
		"deleted a.txt",
		"uploaded b.txt",
		"uploaded a.txt",
	}, actions(t, f, alice))
}

func TestDocumentService_CrossUserAccessIsRejected(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	doc, err := f.svc.Upload(ctx, alice, upload("a.txt", "text/plain", 10))
	require.NoError(t, err)

	_, err = f.svc.Rename(ctx, bob, doc.ID, "stolen.txt")
	assert.ErrorIs(t, err, ErrNotFoundOrForbidden)
	_, err = f.svc.Delete(ctx, bob, doc.ID)
	assert.ErrorIs(t, err, ErrNotFoundOrForbidden)
	_, err = f.svc.Download(ctx, bob, doc.ID)
	assert.ErrorIs(t, err, ErrNotFoundOrForbidden)
	_, err = f.svc.Preview(ctx, bob, doc.ID)
	assert.ErrorIs(t, err, ErrNotFoundOrForbidden)

	// A missing id and a foreign id are indistinguishable.
	_, missingErr := f.svc.Delete(ctx, bob, "no-such-id")
	assert.Equal(t, err.Error(), missingErr.Error())

	assert.Empty(t, actions(t, f, bob))
	docs, err := f.svc.List(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, docs)

	kept, err := f.svc.Preview(ctx, alice, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "a.txt", kept.Name)
}

func TestDocumentService_AuditVisibility(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	require.NoError(t, f.store.Put(ctx, collection.UsersKey, []byte(`[
		{"id":"U1","username":"alice","role":"USER"},
		{"id":"U2","username":"bob","role":"USER"}
	]`)))

	_, err := f.svc.Upload(ctx, alice, upload("a.txt", "text/plain", 1))
	require.NoError(t, err)
	_, err = f.svc.Upload(ctx, bob, upload("b.txt", "text/plain", 1))
	require.NoError(t, err)

	all, err := f.audit.ListFor(ctx, admin)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "bob", all[0].Username)
	assert.Equal(t, "alice", all[1].Username)

	own, err := f.audit.ListFor(ctx, bob)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "uploaded b.txt", own[0].Action)
}

func TestDocumentService_DuplicateUpload(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	_, err := f.svc.Upload(ctx, alice, upload("a.txt", "text/plain", 1))
	require.NoError(t, err)
	_, err = f.svc.Upload(ctx, alice, upload("a.txt", "text/plain", 2))
	assert.ErrorIs(t, err, ErrDuplicateName)
	assert.Equal(t, KindDuplicateName, KindOf(err))

	// Other owners may reuse the name, and names compare case-sensitively.
	_, err = f.svc.Upload(ctx, bob, upload("a.txt", "text/plain", 1))
	assert.NoError(t, err)
	_, err = f.svc.Upload(ctx, alice, upload("A.txt", "text/plain", 1))
	assert.NoError(t, err)

	assert.Equal(t, []string{"uploaded A.txt", "uploaded a.txt"}, actions(t, f, alice))
}

func TestDocumentService_ConcurrentUploadsOfSameName(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	const workers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
		dupes   int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Upload(ctx, alice, upload("race.txt", "text/plain", 4))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				success++
			case errors.Is(err, ErrDuplicateName):
				dupes++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, success)
	assert.Equal(t, workers-1, dupes)
	docs, err := f.svc.List(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestDocumentService_Quota(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	t.Run("declared size over limit", func(t *testing.T) {
		_, err := f.svc.Upload(ctx, alice, FileUpload{
			Name:     "big.bin",
			MimeType: "application/octet-stream",
			Size:     codec.DefaultMaxPayloadSize + 1,
			Content:  strings.NewReader(""),
		})
		assert.ErrorIs(t, err, ErrQuotaExceeded)
		assert.EqualError(t, err, "file size must not exceed 10 MiB")
	})

	t.Run("exactly at limit", func(t *testing.T) {
		_, err := f.svc.Upload(ctx, alice, upload("edge.bin", "application/octet-stream", int(codec.DefaultMaxPayloadSize)))
		assert.NoError(t, err)
	})

	t.Run("stream longer than declared", func(t *testing.T) {
		small := NewDocumentService(f.docs, f.audit, codec.New(16), zap.NewNop(), Options{})
		_, err := small.Upload(ctx, alice, FileUpload{
			Name:    "liar.bin",
			Size:    1,
			Content: bytes.NewReader(make([]byte, 17)),
		})
		assert.ErrorIs(t, err, ErrQuotaExceeded)
		assert.EqualError(t, err, "file size must not exceed 16 B")
	})

	assert.Equal(t, []string{"uploaded edge.bin"}, actions(t, f, alice))
}

func TestDocumentService_Validation(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	tests := []struct {
		name string
		who  model.Identity
		file FileUpload
	}{
		{name: "anonymous caller", who: model.Identity{}, file: upload("a.txt", "text/plain", 1)},
		{name: "empty name", who: alice, file: upload("", "text/plain", 1)},
		{name: "nested path", who: alice, file: upload("dir/a.txt", "text/plain", 1)},
		{name: "missing content", who: alice, file: FileUpload{Name: "a.txt"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Upload(ctx, tt.who, tt.file)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	doc, err := f.svc.Upload(ctx, alice, upload("ok.txt", "text/plain", 1))
	require.NoError(t, err)
	_, err = f.svc.Rename(ctx, alice, doc.ID, "")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.svc.Rename(ctx, alice, doc.ID, `..\ok.txt`)
	assert.ErrorIs(t, err, ErrValidation)

	assert.Equal(t, []string{"uploaded ok.txt"}, actions(t, f, alice))
}

func TestDocumentService_RenameEdgeCases(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	a, err := f.svc.Upload(ctx, alice, upload("a.txt", "text/plain", 1))
	require.NoError(t, err)
	_, err = f.svc.Upload(ctx, alice, upload("b.txt", "text/plain", 1))
	require.NoError(t, err)

	_, err = f.svc.Rename(ctx, alice, a.ID, "a.txt")
	assert.NoError(t, err, "renaming to the current name is allowed")

	_, err = f.svc.Rename(ctx, alice, a.ID, "b.txt")
	assert.ErrorIs(t, err, ErrDuplicateName)

	_, err = f.svc.Rename(ctx, alice, "missing", "c.txt")
	assert.ErrorIs(t, err, ErrNotFoundOrForbidden)

	assert.Equal(t, []string{"renamed a.txt to a.txt", "uploaded b.txt", "uploaded a.txt"}, actions(t, f, alice))
}

func TestDocumentService_DownloadAndPreview(t *testing.T) {
	ctx := context.Background()

	for _, auditReads := range []bool{false, true} {
		f := newFixture(t, Options{AuditReads: auditReads})
		doc, err := f.svc.Upload(ctx, alice, FileUpload{
			Name:     "hello.txt",
			MimeType: "text/plain",
			Size:     5,
			Content:  strings.NewReader("hello"),
		})
		require.NoError(t, err)

		dl, err := f.svc.Download(ctx, alice, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, "hello.txt", dl.Name)
		assert.Equal(t, "text/plain", dl.MimeType)
		assert.Equal(t, []byte("hello"), dl.Data)

		pv, err := f.svc.Preview(ctx, alice, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, doc.Content, pv.Content)

		want := []string{"uploaded hello.txt"}
		if auditReads {
			want = []string{"downloaded hello.txt", "uploaded hello.txt"}
		}
		assert.Equal(t, want, actions(t, f, alice))
	}
}

func TestAuditLog_AnonymousRequesterSeesNothing(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	_, err := f.svc.Upload(ctx, alice, upload("a.txt", "text/plain", 1))
	require.NoError(t, err)

	views, err := f.audit.ListFor(ctx, model.Identity{Role: model.RoleUser})

	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, views)
}

func TestDocumentService_UploadStoresBytesRead(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	for _, declared := range []int64{0, 1, 9000} {
		name := fmt.Sprintf("declared-%d.bin", declared)
		doc, err := f.svc.Upload(ctx, alice, FileUpload{
			Name:    name,
			Size:    declared,
			Content: bytes.NewReader(bytes.Repeat([]byte("x"), 5000)),
		})
		require.NoError(t, err, name)
		assert.Equal(t, int64(5000), doc.Size, name)
	}

	st, err := f.svc.Stats(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(15000), st.TotalSizeBytes)
}

func TestDocumentService_DefaultMimeType(t *testing.T) {
	f := newFixture(t, Options{})

	doc, err := f.svc.Upload(context.Background(), alice, FileUpload{Name: "blob", Size: 3, Content: strings.NewReader("abc")})

	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", doc.MimeType)
}

func TestDocumentService_StatsIsIdempotent(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	for i, n := range []string{"1", "2", "3", "4", "5", "6", "7"} {
		_, err := f.svc.Upload(ctx, alice, upload(n+".txt", "text/plain", i+1))
		require.NoError(t, err)
	}

	first, err := f.svc.Stats(ctx, alice)
	require.NoError(t, err)
	second, err := f.svc.Stats(ctx, alice)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 7, first.Count)
	assert.Equal(t, int64(28), first.TotalSizeBytes)
	assert.Equal(t, []string{"7.txt", "6.txt", "5.txt", "4.txt", "3.txt"}, names(first.Recent))

	empty, err := f.svc.Stats(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Count)
	assert.Equal(t, int64(0), empty.TotalSizeBytes)
	assert.Empty(t, empty.Recent)
}

type panicReader struct{}

func (panicReader) Read([]byte) (int, error) { panic("reader exploded") }

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestDocumentService_FailuresAreTagged(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	_, err := f.svc.Upload(ctx, alice, FileUpload{Name: "p.bin", Size: 1, Content: panicReader{}})
	assert.ErrorIs(t, err, ErrPersistenceFailure)
	assert.EqualError(t, err, "upload failed")

	_, err = f.svc.Upload(ctx, alice, FileUpload{Name: "e.bin", Size: 1, Content: errReader{}})
	assert.ErrorIs(t, err, ErrPersistenceFailure)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	assert.Empty(t, actions(t, f, alice))
}

func TestDocumentService_StorageFailure(t *testing.T) {
	ctx := context.Background()
	mStore := new(storageMocks.MockStorage)
	mStore.On("Update", mock.Anything, collection.DocumentsKey, mock.Anything).Return(errors.New("disk gone"))
	mStore.On("Get", mock.Anything, collection.DocumentsKey).Return(nil, errors.New("disk gone"))

	mAudit := new(repoMocks.MockAuditLogRepository)
	audit, err := NewAuditLog(mAudit, new(repoMocks.MockUserDirectory), zap.NewNop(), nil)
	require.NoError(t, err)
	svc := NewDocumentService(NewDocumentStore(collection.NewDocuments(mStore)), audit, codec.New(0), zap.NewNop(), Options{})

	_, err = svc.Upload(ctx, alice, upload("a.txt", "text/plain", 1))
	assert.ErrorIs(t, err, ErrPersistenceFailure)
	_, err = svc.List(ctx, alice)
	assert.ErrorIs(t, err, ErrPersistenceFailure)
	_, err = svc.Stats(ctx, alice)
	assert.ErrorIs(t, err, ErrPersistenceFailure)

	mAudit.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestDocumentService_AuditFailureDoesNotFailOperation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})

	mAudit := new(repoMocks.MockAuditLogRepository)
	mAudit.On("Append", mock.Anything, mock.Anything).Return(errors.New("log store down"))
	audit, err := NewAuditLog(mAudit, new(repoMocks.MockUserDirectory), zap.NewNop(), nil)
	require.NoError(t, err)
	svc := NewDocumentService(f.docs, audit, codec.New(0), zap.NewNop(), Options{})

	doc, err := svc.Upload(ctx, alice, upload("a.txt", "text/plain", 1))
	require.NoError(t, err)
	_, err = svc.Rename(ctx, alice, doc.ID, "b.txt")
	require.NoError(t, err)
	_, err = svc.Delete(ctx, alice, doc.ID)
	require.NoError(t, err)

	assert.Equal(t, float64(3), testutil.ToFloat64(audit.failures))
}
