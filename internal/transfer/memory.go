package transfer

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	updatedAt time.Time
}

// MemoryStore is a process-local BlobStore. Entries older than the TTL are
// invisible to Get and removed by Purge.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]memoryEntry
	ttl   time.Duration
	now   func() time.Time
}

// NewMemoryStore creates a store whose entries expire after ttl. A ttl of
// zero or less keeps entries until they are deleted.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		items: make(map[string]memoryEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (m *MemoryStore) expired(e memoryEntry, now time.Time) bool {
	return m.ttl > 0 && now.Sub(e.updatedAt) >= m.ttl
}

// Get returns a copy of the stored value.
func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	e, ok := m.items[key]
	m.mu.RUnlock()

	if !ok || m.expired(e, m.now()) {
		return nil, ErrNotFound
	}
	return append([]byte(nil), e.value...), nil
}

// Set stores a copy of value.
func (m *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	m.items[key] = memoryEntry{
		value:     append([]byte(nil), value...),
		updatedAt: m.now(),
	}
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Purge(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()

	purged := 0
	for k, e := range m.items {
		if m.expired(e, now) {
			delete(m.items, k)
			purged++
		}
	}
	return purged, nil
}

// Len returns the number of entries, expired or not.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
