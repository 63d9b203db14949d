package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/babylog/internal/common"
)

// ErrUnchanged may be returned by a MutateList callback to skip the write.
var ErrUnchanged = errors.New("unchanged")

// JSONStore layers JSON encoding and per-key mutual exclusion over a Store.
// Every read-modify-write of a key must hold that key's lock; plain reads
// do not need it.
type JSONStore struct {
	store Store

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewJSONStore(store Store) *JSONStore {
	return &JSONStore{store: store, locks: make(map[string]*sync.Mutex)}
}

// Raw returns the underlying byte store.
func (j *JSONStore) Raw() Store {
	return j.store
}

// Lock acquires the mutex for key and returns its release function.
// Locks are not reentrant.
func (j *JSONStore) Lock(key string) (unlock func()) {
	j.mu.Lock()
	l, ok := j.locks[key]
	if !ok {
		l = &sync.Mutex{}
		j.locks[key] = l
	}
	j.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// Load decodes key into dst. found is false when the key is absent.
func (j *JSONStore) Load(ctx context.Context, key string, dst any) (found bool, err error) {
	raw, err := j.store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("%w: %w", common.ErrStorage, err)
	}
	if raw == nil {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return true, fmt.Errorf("%w: kv[%s]: %w", common.ErrCorruptData, key, err)
	}
	return true, nil
}

// Save encodes v and writes it under key.
func (j *JSONStore) Save(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode kv[%s]: %w", key, err)
	}
	if err := j.store.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("%w: %w", common.ErrStorage, err)
	}
	return nil
}

// Remove deletes key.
func (j *JSONStore) Remove(ctx context.Context, key string) error {
	if err := j.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("%w: %w", common.ErrStorage, err)
	}
	return nil
}

// GetString reads key as raw text; "" when absent.
func (j *JSONStore) GetString(ctx context.Context, key string) (string, error) {
	raw, err := j.store.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrStorage, err)
	}
	return string(raw), nil
}

// SetString writes s under key as raw text.
func (j *JSONStore) SetString(ctx context.Context, key, s string) error {
	if err := j.store.Set(ctx, key, []byte(s)); err != nil {
		return fmt.Errorf("%w: %w", common.ErrStorage, err)
	}
	return nil
}

// LoadList reads a JSON array stored under key; nil when absent.
func LoadList[T any](ctx context.Context, j *JSONStore, key string) ([]T, error) {
	var list []T
	if _, err := j.Load(ctx, key, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// MutateList runs fn over the list stored under key while holding the key's
// lock and saves the result. An error from fn aborts without writing;
// ErrUnchanged aborts without writing and without error.
func MutateList[T any](ctx context.Context, j *JSONStore, key string, fn func([]T) ([]T, error)) error {
	unlock := j.Lock(key)
	defer unlock()

	list, err := LoadList[T](ctx, j, key)
	if err != nil {
		return err
	}
	next, err := fn(list)
	if errors.Is(err, ErrUnchanged) {
		return nil
	}
	if err != nil {
		return err
	}
	if next == nil {
		next = []T{}
	}
	return j.Save(ctx, key, next)
}
