package kv

import (
	"context"
	"fmt"
	"sync"
)

// Op names a Store method, used to inject failures into MemoryStore.
type Op string

const (
	OpGet    Op = "get"
	OpSet    Op = "set"
	OpDelete Op = "delete"
	OpList   Op = "list"
	OpClear  Op = "clear"
)

// MemoryStore is a Store backed by a map. It is used by tests and by the
// CLI when no database path is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	data    map[string][]byte
	failErr error
	failOps map[Op]bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// FailWith makes the listed operations (all of them when none are given)
// return err. FailWith(nil) restores normal behaviour.
func (m *MemoryStore) FailWith(err error, ops ...Op) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failErr = err
	m.failOps = nil
	if len(ops) > 0 {
		m.failOps = make(map[Op]bool, len(ops))
		for _, op := range ops {
			m.failOps[op] = true
		}
	}
}

func (m *MemoryStore) fail(op Op, key string) error {
	if m.failErr == nil {
		return nil
	}
	if m.failOps != nil && !m.failOps[op] {
		return nil
	}
	if key == "" {
		return fmt.Errorf("failed to %s kv: %w", op, m.failErr)
	}
	return fmt.Errorf("failed to %s kv[%s]: %w", op, key, m.failErr)
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.fail(OpGet, key); err != nil {
		return nil, err
	}
	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte{}, v...), nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(OpSet, key); err != nil {
		return err
	}
	m.data[key] = append([]byte{}, value...)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(OpDelete, key); err != nil {
		return err
	}
	delete(m.data, key)
	return nil
}

func (m *MemoryStore) List(_ context.Context) (map[string][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.fail(OpList, ""); err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(m.data))
	for k, v := range m.data {
		out[k] = append([]byte{}, v...)
	}
	return out, nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(OpClear, ""); err != nil {
		return err
	}
	m.data = make(map[string][]byte)
	return nil
}

func (m *MemoryStore) ReplaceAll(_ context.Context, pairs map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(OpClear, ""); err != nil {
		return err
	}
	if err := m.fail(OpSet, ""); err != nil {
		return err
	}
	data := make(map[string][]byte, len(pairs))
	for k, v := range pairs {
		data[k] = append([]byte{}, v...)
	}
	m.data = data
	return nil
}
