package entries

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/dmitrijs2005/babylog/internal/common"
	"github.com/dmitrijs2005/babylog/internal/server/models"
)

// MemoryRepository keeps entries in process memory. Safe for concurrent use.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]models.Entry
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[string]models.Entry)}
}

// Clone returns an independent copy, used for copy-on-write transactions.
func (r *MemoryRepository) Clone() *MemoryRepository {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return &MemoryRepository{items: maps.Clone(r.items)}
}

func (r *MemoryRepository) Upsert(_ context.Context, entry *models.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.items[entry.ID]; ok && cur.BabyID != entry.BabyID {
		return fmt.Errorf("%w: %s", common.ErrEntryConflict, entry.ID)
	}
	e := *entry
	e.Payload = slices.Clone(entry.Payload)
	r.items[entry.ID] = e
	return nil
}

func (r *MemoryRepository) SelectUpdated(_ context.Context, babyID string, minVersion int64) ([]*models.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*models.Entry
	for _, e := range r.items {
		if e.BabyID == babyID && e.Version > minVersion {
			e.Payload = slices.Clone(e.Payload)
			result = append(result, &e)
		}
	}
	slices.SortFunc(result, func(a, b *models.Entry) int {
		if c := cmp.Compare(a.Version, b.Version); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return result, nil
}
