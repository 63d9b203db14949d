// Package babies stores remote baby profiles and their version counters.
package babies

import (
	"context"

	"github.com/dmitrijs2005/babylog/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, baby *models.Baby) error
	Get(ctx context.Context, id string) (*models.Baby, error)
	// IncrementVersion bumps the counter and returns the new value.
	IncrementVersion(ctx context.Context, id string) (int64, error)
	SetPhotoKey(ctx context.Context, id, key string) error
}
