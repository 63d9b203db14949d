package babies

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/babylog/internal/common"
	"github.com/dmitrijs2005/babylog/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	created := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO babies (id, name, date_of_birth)`)).
		WithArgs("b1", "Emma", int64(1700000000000)).
		WillReturnRows(sqlmock.NewRows([]string{"version", "created_at"}).AddRow(int64(0), created))

	b := &models.Baby{ID: "b1", Name: "Emma", DateOfBirth: 1700000000000}
	require.NoError(t, repo.Create(context.Background(), b))
	assert.Equal(t, created, b.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())

	mock.ExpectQuery(`INSERT INTO babies`).WillReturnError(errors.New("duplicate"))
	assert.EqualError(t, repo.Create(context.Background(), b), "db error: duplicate")
}

func TestGet(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	created := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	q := `SELECT id, name, date_of_birth, photo_key, version, created_at FROM babies\s+WHERE id = \$1`

	mock.ExpectQuery(q).WithArgs("b1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "date_of_birth", "photo_key", "version", "created_at"}).
			AddRow("b1", "Emma", int64(5), "photos/k", int64(7), created))
	got, err := repo.Get(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, &models.Baby{ID: "b1", Name: "Emma", DateOfBirth: 5, PhotoKey: "photos/k", Version: 7, CreatedAt: created}, got)

	mock.ExpectQuery(q).WithArgs("nope").WillReturnError(sql.ErrNoRows)
	_, err = repo.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrNotFound)

	mock.ExpectQuery(q).WithArgs("b1").WillReturnError(errors.New("down"))
	_, err = repo.Get(context.Background(), "b1")
	assert.EqualError(t, err, "db error: down")
}

func TestIncrementVersion(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	q := `UPDATE babies SET version = version \+ 1\s+WHERE id = \$1\s+RETURNING version`

	mock.ExpectQuery(q).WithArgs("b1").WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(int64(4)))
	v, err := repo.IncrementVersion(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), v)

	mock.ExpectQuery(q).WithArgs("b2").WillReturnError(sql.ErrNoRows)
	_, err = repo.IncrementVersion(context.Background(), "b2")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSetPhotoKey(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	q := `UPDATE babies SET photo_key = \$2 WHERE id = \$1`

	mock.ExpectExec(q).WithArgs("b1", "k").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SetPhotoKey(context.Background(), "b1", "k"))

	mock.ExpectExec(q).WithArgs("b2", "k").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.SetPhotoKey(context.Background(), "b2", "k"), common.ErrNotFound)

	mock.ExpectExec(q).WithArgs("b1", "k").WillReturnError(errors.New("down"))
	assert.EqualError(t, repo.SetPhotoKey(context.Background(), "b1", "k"), "db error: down")
}
