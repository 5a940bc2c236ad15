package kv

import (
	"context"
	"fmt"
	"sync"
)

// Memory is an in-process Store. Values are copied on the way in and out.
//
// With a quota it behaves like browser local storage: a Set that would push
// the total size of keys and values past the quota fails with
// ErrQuotaExceeded and leaves the previous value in place.
type Memory struct {
	mu      sync.Mutex
	entries map[string][]byte
	quota   int
	used    int
}

// MemoryOption configures a Memory store.
type MemoryOption func(*Memory)

// WithQuota limits the total bytes (keys plus values) a Memory store holds.
// Zero or negative means unlimited.
func WithQuota(bytes int) MemoryOption {
	return func(m *Memory) {
		m.quota = bytes
	}
}

// NewMemory creates an empty in-memory store.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{entries: make(map[string][]byte)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	used := m.used
	if old, ok := m.entries[key]; ok {
		used -= len(key) + len(old)
	}
	used += len(key) + len(value)
	if m.quota > 0 && used > m.quota {
		return fmt.Errorf("set %q (%d bytes): %w", key, len(value), ErrQuotaExceeded)
	}
	m.entries[key] = append([]byte(nil), value...)
	m.used = used
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.entries[key]; ok {
		m.used -= len(key) + len(old)
		delete(m.entries, key)
	}
	return nil
}

func (m *Memory) Close() error { return nil }
