package repomanager

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/babylog/internal/server/repositories/babies"
	"github.com/dmitrijs2005/babylog/internal/server/repositories/entries"
)

// MemoryRepositoryManager serves the -memory dev mode and tests.
// Transactions run one at a time against copies that replace the live
// state on success, so writes must go through WithTx.
type MemoryRepositoryManager struct {
	txMu sync.Mutex

	mu      sync.RWMutex
	babies  *babies.MemoryRepository
	entries *entries.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		babies:  babies.NewMemoryRepository(),
		entries: entries.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *MemoryRepositoryManager) Repositories() Repositories {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Repositories{Babies: m.babies, Entries: m.entries}
}

func (m *MemoryRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.RLock()
	b, e := m.babies.Clone(), m.entries.Clone()
	m.mu.RUnlock()

	if err := fn(ctx, Repositories{Babies: b, Entries: e}); err != nil {
		return err
	}

	m.mu.Lock()
	m.babies, m.entries = b, e
	m.mu.Unlock()
	return nil
}

func (m *MemoryRepositoryManager) Close() error { return nil }
