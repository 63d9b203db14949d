// Package entries provides storage for synced log entries.
package entries

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/babylog/internal/common"
	"github.com/dmitrijs2005/babylog/internal/dbx"
	"github.com/dmitrijs2005/babylog/internal/server/models"
)

// PostgresRepository implements entry storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert inserts or replaces an entry by ID for a specific baby. If the id
// exists for another baby no row is updated and ErrEntryConflict is returned.
func (r *PostgresRepository) Upsert(ctx context.Context, entry *models.Entry) error {
	query := `
		INSERT INTO baby_entries (id, baby_id, payload, version)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id)
		DO UPDATE SET
			payload = EXCLUDED.payload,
			version = EXCLUDED.version
			WHERE baby_entries.baby_id = EXCLUDED.baby_id;
	`
	res, err := r.db.ExecContext(ctx, query, entry.ID, entry.BabyID, string(entry.Payload), entry.Version)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return fmt.Errorf("%w: %s", common.ErrEntryConflict, entry.ID)
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

func (r *PostgresRepository) SelectUpdated(ctx context.Context, babyID string, minVersion int64) ([]*models.Entry, error) {
	query := `
		SELECT id, payload, version FROM baby_entries
		WHERE baby_id = $1 AND version > $2
		ORDER BY version, id
	`
	rows, err := r.db.QueryContext(ctx, query, babyID, minVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	var result []*models.Entry
	for rows.Next() {
		item := models.Entry{BabyID: babyID}
		if err := rows.Scan(&item.ID, &item.Payload, &item.Version); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
