package babies

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/dmitrijs2005/babylog/internal/common"
	"github.com/dmitrijs2005/babylog/internal/server/models"
)

// MemoryRepository keeps babies in process memory. Safe for concurrent use.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]models.Baby
	now   func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[string]models.Baby), now: time.Now}
}

// Clone returns an independent copy, used for copy-on-write transactions.
func (r *MemoryRepository) Clone() *MemoryRepository {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return &MemoryRepository{items: maps.Clone(r.items), now: r.now}
}

func (r *MemoryRepository) Create(_ context.Context, baby *models.Baby) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[baby.ID]; ok {
		return fmt.Errorf("db error: duplicate baby id %s", baby.ID)
	}
	baby.Version = 0
	baby.CreatedAt = r.now().UTC()
	r.items[baby.ID] = *baby
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*models.Baby, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.items[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &b, nil
}

func (r *MemoryRepository) IncrementVersion(_ context.Context, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.items[id]
	if !ok {
		return 0, common.ErrNotFound
	}
	b.Version++
	r.items[id] = b
	return b.Version, nil
}

func (r *MemoryRepository) SetPhotoKey(_ context.Context, id, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.items[id]
	if !ok {
		return common.ErrNotFound
	}
	b.PhotoKey = key
	r.items[id] = b
	return nil
}
