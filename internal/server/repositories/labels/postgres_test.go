package labels

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/taskmanager/internal/common"
	"github.com/dmitrijs2005/taskmanager/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

func TestCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	q := `^INSERT\s+INTO\s+labels\s*\(name\)\s*VALUES\s*\(\$1\)\s*RETURNING\s+id,\s*created_at$`
	mock.ExpectQuery(q).WithArgs("feature").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), time.Now()))
	mock.ExpectQuery(q).WithArgs("feature").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "labels_name_key"})

	got, err := repo.Create(context.Background(), &models.Label{Name: "feature"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)

	_, err = repo.Create(context.Background(), &models.Label{Name: "feature"})
	assert.ErrorIs(t, err, common.ErrAlreadyExists)
}

func TestGet(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	cols := []string{"id", "name", "created_at"}

	mock.ExpectQuery(`FROM\s+labels\s+WHERE\s+id\s*=\s*\$1$`).WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(int64(2), "bug", time.Now()))
	mock.ExpectQuery(`FROM\s+labels\s+WHERE\s+name\s*=\s*\$1$`).WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	got, err := repo.GetByID(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "bug", got.Name)

	_, err = repo.GetByName(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestList(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM\s+labels\s+ORDER\s+BY\s+id$`).
		WillReturnError(errors.New("db down"))

	_, err := repo.List(context.Background())
	assert.ErrorContains(t, err, "db error: db down")
}

func TestUpdateAndDelete(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`^UPDATE\s+labels\s+SET\s+name\s*=\s*\$2\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs(int64(1), "feature-x").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectExec(`^DELETE\s+FROM\s+labels`).WithArgs(int64(1)).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	got, err := repo.Update(context.Background(), &models.Label{ID: 1, Name: "feature-x"})
	require.NoError(t, err)
	assert.Equal(t, "feature-x", got.Name)

	assert.ErrorIs(t, repo.Delete(context.Background(), 1), common.ErrInUse)
}
