package entries

import (
	"context"

	"github.com/dmitrijs2005/babylog/internal/server/models"
)

type Repository interface {
	// Upsert writes entry by id. An id already owned by another baby yields
	// common.ErrEntryConflict.
	Upsert(ctx context.Context, entry *models.Entry) error
	// SelectUpdated returns the baby's entries with version > minVersion,
	// ordered by version then id.
	SelectUpdated(ctx context.Context, babyID string, minVersion int64) ([]*models.Entry, error)
}
