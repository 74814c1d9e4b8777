// internal/kv/kv.go
//
// Durable key-value slots for client-local state (stats ledger blob,
// anonymous installation id).
//
// Implementations:
//   - Memory: map-based, RWMutex-guarded; lost on restart (tests, dev).
//   - SQLite: one row per key in the kv table.
//   - Prefixed: namespaces any Store, one namespace per player.

package kv

import (
	"context"
	"sync"
)

// Store is a string key-value store.
type Store interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set writes value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu   sync.RWMutex      // guards data
	data map[string]string // keyed by Store key
}

// NewMemory constructs an empty in-memory Store.
func NewMemory() Store {
	return &memory{data: make(map[string]string)}
}

func (m *memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

type prefixed struct {
	inner  Store
	prefix string
}

// Prefixed scopes every key of inner under prefix + ":".
func Prefixed(inner Store, prefix string) Store {
	return &prefixed{inner: inner, prefix: prefix + ":"}
}

func (p *prefixed) Get(ctx context.Context, key string) (string, bool, error) {
	return p.inner.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key, value string) error {
	return p.inner.Set(ctx, p.prefix+key, value)
}
