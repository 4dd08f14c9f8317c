package storage

import (
	"context"
	"io"
	"sync"
)

// MemoryStore keeps uploads in-process. Used for local runs and tests.
type MemoryStore struct {
	mu      sync.Mutex
	baseURL string
	objects map[string][]byte
	types   map[string]string
	// Err, when set, is returned by every Put.
	Err error
}

func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		baseURL: baseURL,
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

func (m *MemoryStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = b
	m.types[key] = contentType
	return m.baseURL + "/" + key, nil
}

func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	delete(m.types, key)
	return nil
}

func (m *MemoryStore) Close() error { return nil }

// Object returns the stored bytes and content type for key.
func (m *MemoryStore) Object(key string) ([]byte, string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[key]
	return b, m.types[key], ok
}

// Len reports how many objects are stored.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
