package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/taskmanager/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func newRepo(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	repo := NewPostgresRepository(db)
	repo.now = func() time.Time { return fixedNow }
	return repo, mock
}

func TestDigest(t *testing.T) {
	d := Digest("abc")
	assert.Len(t, d, 64)
	assert.Equal(t, d, Digest("abc"))
	assert.NotEqual(t, d, Digest("abd"))
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", d)
}

func TestCreate_StoresDigest(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectExec(`INSERT\s+INTO\s+refresh_tokens\s+\(user_id,\s*token_hash,\s*expires_at\)`).
		WithArgs(int64(1), Digest("tok123"), fixedNow.Add(30*time.Minute)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), 1, "tok123", 30*time.Minute))
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectExec(`INSERT\s+INTO\s+refresh_tokens`).
		WithArgs(int64(1), Digest("tok123"), sqlmock.AnyArg()).
		WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), 1, "tok123", time.Hour)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert refresh token: db error: db down")
}

func TestConsume(t *testing.T) {
	expires := fixedNow.Add(10 * time.Minute)

	tests := []struct {
		name    string
		setup   func(e *sqlmock.ExpectedQuery)
		wantErr error
	}{
		{
			name: "consumed",
			setup: func(e *sqlmock.ExpectedQuery) {
				e.WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "token_hash", "expires_at", "created_at"}).
					AddRow(int64(5), int64(1), Digest("tok123"), expires, fixedNow))
			},
		},
		{
			name: "already consumed",
			setup: func(e *sqlmock.ExpectedQuery) {
				e.WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "token_hash", "expires_at", "created_at"}))
			},
			wantErr: common.ErrorNotFound,
		},
		{
			name:    "missing",
			setup:   func(e *sqlmock.ExpectedQuery) { e.WillReturnError(sql.ErrNoRows) },
			wantErr: common.ErrorNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newRepo(t)
			tt.setup(mock.ExpectQuery(`^DELETE\s+FROM\s+refresh_tokens\s+WHERE\s+token_hash\s*=\s*\$1\s+RETURNING\s+id,\s*user_id,\s*token_hash,\s*expires_at,\s*created_at$`).
				WithArgs(Digest("tok123")))

			got, err := repo.Consume(context.Background(), "tok123")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(5), got.ID)
			assert.Equal(t, int64(1), got.UserID)
			assert.Equal(t, Digest("tok123"), got.TokenHash)
			assert.True(t, got.Expires.Equal(expires))
		})
	}
}

func TestConsume_DBError(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectQuery(`^DELETE\s+FROM\s+refresh_tokens`).
		WithArgs(Digest("tok")).
		WillReturnError(errors.New("db err"))

	_, err := repo.Consume(context.Background(), "tok")
	assert.EqualError(t, err, "db error: db err")
}

func TestDeleteByUser(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectExec(`^DELETE\s+FROM\s+refresh_tokens\s+WHERE\s+user_id\s*=\s*\$1$`).
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, repo.DeleteByUser(context.Background(), 9))
}

func TestDeleteExpired(t *testing.T) {
	repo, mock := newRepo(t)
	q := `^DELETE\s+FROM\s+refresh_tokens\s+WHERE\s+expires_at\s*<=\s*\$1$`

	mock.ExpectExec(q).WithArgs(fixedNow).WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(q).WithArgs(fixedNow).WillReturnError(errors.New("timeout"))

	n, err := repo.DeleteExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	_, err = repo.DeleteExpired(context.Background())
	assert.EqualError(t, err, "db error: timeout")
}
