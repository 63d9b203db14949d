// Package repomanager vends the repositories of the sync server, bound either
// to PostgreSQL or to process memory, and runs work inside transactions.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/babylog/internal/server/repositories/babies"
	"github.com/dmitrijs2005/babylog/internal/server/repositories/entries"
)

// Repositories is one consistent view of storage: either the pool or a
// single transaction.
type Repositories struct {
	Babies  babies.Repository
	Entries entries.Repository
}

type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	// Repositories returns repositories outside of any transaction.
	Repositories() Repositories
	// WithTx runs fn atomically: its writes are kept only when it returns nil.
	WithTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error
	Close() error
}
