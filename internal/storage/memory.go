package storage

import (
	"context"
	"sync"
)

// memoryStorage keeps values in process memory. It is safe for concurrent use.
type memoryStorage struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemory returns an empty in-process Storage.
func NewMemory() Storage {
	return &memoryStorage{data: make(map[string][]byte)}
}

func (m *memoryStorage) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return clone(v), nil
}

func (m *memoryStorage) Put(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = clone(data)
	return nil
}

func (m *memoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memoryStorage) Update(_ context.Context, key string, fn UpdateFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	next, err := fn(clone(m.data[key]))
	if err != nil {
		return err
	}
	m.data[key] = clone(next)
	return nil
}

func (m *memoryStorage) Ping(context.Context) error { return nil }

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
