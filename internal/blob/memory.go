package blob

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

type memBlob struct {
	data        []byte
	contentType string
	createdAt   time.Time
	deleted     bool
}

// MemoryStore is an in-process StoreItf for tests and local runs.
type MemoryStore struct {
	mu    sync.Mutex
	blobs map[string]*memBlob
	// now is swappable so retention tests can control blob age.
	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string]*memBlob), now: time.Now}
}

// SetClock overrides the creation timestamp source. Test helper.
func (m *MemoryStore) SetClock(now func() time.Time) { m.now = now }

func (m *MemoryStore) Put(_ context.Context, key string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	m.blobs[key] = &memBlob{data: cp, contentType: contentType, createdAt: m.now().UTC()}
	return nil
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.blobs[key]
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(b.data))
	copy(cp, b.data)
	return cp, nil
}

func (m *MemoryStore) List(_ context.Context, prefix string) ([]Info, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Info
	for k, b := range m.blobs {
		if strings.HasPrefix(k, prefix) {
			out = append(out, Info{
				Key:       k,
				Size:      int64(len(b.data)),
				CreatedAt: b.createdAt,
				Deleted:   b.deleted,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *MemoryStore) Tag(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.blobs[key]
	if !ok {
		return ErrNotFound
	}
	b.deleted = true
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[key]; !ok {
		return ErrNotFound
	}
	delete(m.blobs, key)
	return nil
}
