package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/babylog/internal/server/models"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) (*PostgresRepositoryManager, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresRepositoryManager(db), mock
}

func TestPostgres_Repositories(t *testing.T) {
	m, mock := newManager(t)
	r := m.Repositories()
	assert.NotNil(t, r.Babies)
	assert.NotNil(t, r.Entries)

	var _ RepositoryManager = m
	mock.ExpectClose()
	require.NoError(t, m.Close())
}

func TestPostgres_WithTx(t *testing.T) {
	ctx := context.Background()

	t.Run("commits", func(t *testing.T) {
		m, mock := newManager(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`UPDATE babies SET version`).WithArgs("b1").
			WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(int64(2)))
		mock.ExpectExec(`INSERT INTO baby_entries`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := m.WithTx(ctx, func(ctx context.Context, r Repositories) error {
			v, err := r.Babies.IncrementVersion(ctx, "b1")
			if err != nil {
				return err
			}
			return r.Entries.Upsert(ctx, &models.Entry{ID: "e1", BabyID: "b1", Payload: []byte(`{}`), Version: v})
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back", func(t *testing.T) {
		m, mock := newManager(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		boom := errors.New("boom")
		err := m.WithTx(ctx, func(context.Context, Repositories) error { return boom })
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRunMigrations(t *testing.T) {
	m, _ := newManager(t)

	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if dir != "." {
			return errors.New("unexpected dir")
		}
		return nil
	}
	require.NoError(t, m.RunMigrations(context.Background()))

	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	assert.EqualError(t, m.RunMigrations(context.Background()), "migrate: boom")
}
