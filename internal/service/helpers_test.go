package service

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"docvault/internal/codec"
	"docvault/internal/model"
	"docvault/internal/repository/collection"
	"docvault/internal/storage"
)

var (
	alice = model.Identity{UserID: "U1", Username: "alice", Role: model.RoleUser}
	bob   = model.Identity{UserID: "U2", Username: "bob", Role: model.RoleUser}
	admin = model.Identity{UserID: "A1", Username: "root", Role: model.RoleAdmin}
)

// fakeClock returns strictly increasing times, one second apart.
type fakeClock struct {
	mu  sync.Mutex
	cur time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{cur: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(time.Second)
	return c.cur
}

// sequentialIDs returns an id generator producing prefix-1, prefix-2, ...
func sequentialIDs(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

type fixture struct {
	store   storage.Storage
	docs    *DocumentStore
	audit   *AuditLog
	svc     DocumentService
	reg     *prometheus.Registry
	clock   *fakeClock
	auditDB *collection.AuditLog
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	store := storage.NewMemory()
	clock := newFakeClock()

	docs := NewDocumentStore(collection.NewDocuments(store))
	docs.now = clock.Now
	docs.newID = sequentialIDs("doc")

	reg := prometheus.NewRegistry()
	auditRepo := collection.NewAuditLog(store)
	audit, err := NewAuditLog(auditRepo, collection.NewUsers(store), zap.NewNop(), reg)
	require.NoError(t, err)
	audit.now = clock.Now
	audit.newID = sequentialIDs("log")

	return &fixture{
		store:   store,
		docs:    docs,
		audit:   audit,
		svc:     NewDocumentService(docs, audit, codec.New(0), zap.NewNop(), opts),
		reg:     reg,
		clock:   clock,
		auditDB: auditRepo,
	}
}
