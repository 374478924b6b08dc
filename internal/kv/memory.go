package kv

import (
	"context"
	"sort"
	"sync"
)

// Memory is an in-process Storage. Values are copied on the way in and out.
type Memory struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

var _ Storage = (*Memory)(nil)

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string][]byte)}
}

// Get returns a copy of the value for key, or nil when absent.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.entries[key]
	if !ok {
		return nil, nil
	}
	return cloneBytes(v), nil
}

// Set stores a copy of value under key.
func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = cloneBytes(value)
	return nil
}

// Remove deletes the given keys.
func (m *Memory) Remove(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range keys {
		delete(m.entries, k)
	}
	return nil
}

// Keys lists the stored keys in lexical order.
func (m *Memory) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }

func cloneBytes(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	dup := make([]byte, len(b))
	copy(dup, b)
	return dup
}
