package persist

import (
	"context"
	"sync"
)

// MemoryKV is an in-process KV used by tests and dry runs.
type MemoryKV struct {
	mu        sync.Mutex
	values    map[string][]byte
	revisions map[string]int64
	writes    int
}

var _ KV = (*MemoryKV)(nil)

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string][]byte), revisions: make(map[string]int64)}
}

func (m *MemoryKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, rev, err := m.GetWithRevision(ctx, key)
	return v, rev > 0, err
}

func (m *MemoryKV) GetWithRevision(_ context.Context, key string) ([]byte, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return nil, 0, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, m.revisions[key], nil
}

func (m *MemoryKV) Revision(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revisions[key], nil
}

// Put writes unconditionally, like another process would.
func (m *MemoryKV) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putLocked(key, value)
	return nil
}

func (m *MemoryKV) CompareAndPut(_ context.Context, key string, value []byte, rev int64) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.revisions[key] != rev {
		return 0, false, nil
	}
	return m.putLocked(key, value), true, nil
}

func (m *MemoryKV) putLocked(key string, value []byte) int64 {
	v := make([]byte, len(value))
	copy(v, value)
	m.values[key] = v
	m.revisions[key]++
	m.writes++
	return m.revisions[key]
}

// Writes reports how many writes succeeded.
func (m *MemoryKV) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
