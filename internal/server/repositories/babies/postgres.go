package babies

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/babylog/internal/common"
	"github.com/dmitrijs2005/babylog/internal/dbx"
	"github.com/dmitrijs2005/babylog/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts baby and fills in the server-assigned version and creation time.
func (r *PostgresRepository) Create(ctx context.Context, baby *models.Baby) error {
	query := `
		INSERT INTO babies (id, name, date_of_birth)
		VALUES ($1, $2, $3)
		RETURNING version, created_at
	`
	err := r.db.QueryRowContext(ctx, query, baby.ID, baby.Name, baby.DateOfBirth).
		Scan(&baby.Version, &baby.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Baby, error) {
	query := `
		SELECT id, name, date_of_birth, photo_key, version, created_at FROM babies
		WHERE id = $1
	`
	b := &models.Baby{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&b.ID, &b.Name, &b.DateOfBirth, &b.PhotoKey, &b.Version, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return b, nil
}

func (r *PostgresRepository) IncrementVersion(ctx context.Context, id string) (int64, error) {
	query := `
		UPDATE babies SET version = version + 1
		WHERE id = $1
		RETURNING version
	`
	var version int64
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return version, nil
}

func (r *PostgresRepository) SetPhotoKey(ctx context.Context, id, key string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE babies SET photo_key = $2 WHERE id = $1`, id, key)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
