package store

import (
	"bytes"
	"context"
	"sync"
)

// KV is the key/value blob capability the store persists through. Setting an
// empty (or all-whitespace) value deletes the key.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

func isBlank(v []byte) bool { return len(bytes.TrimSpace(v)) == 0 }

// MemoryKV keeps blobs in process memory.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return bytes.Clone(v), true, nil
}

func (m *MemoryKV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if isBlank(value) {
		delete(m.data, key)
		return nil
	}
	m.data[key] = bytes.Clone(value)
	return nil
}
