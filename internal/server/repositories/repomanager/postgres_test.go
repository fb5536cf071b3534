package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/beppofit-auth/internal/dbx"
	"github.com/dmitrijs2005/beppofit-auth/internal/server/repositories/users"
	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func stubGooseUp(t *testing.T, fn func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error) {
	t.Helper()
	orig := gooseUpContext
	gooseUpContext = fn
	t.Cleanup(func() { gooseUpContext = orig })
}

func TestUsers_ReturnsPostgresRepo(t *testing.T) {
	db, _ := newDB(t)

	u := NewPostgresRepositoryManager().Users(db)
	_, ok := u.(*users.PostgresRepository)
	assert.True(t, ok, "Users() = %T", u)
}

func TestUsers_RunsInsideTransaction(t *testing.T) {
	db, mock := newDB(t)
	m := NewPostgresRepositoryManager()
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET verification_token")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := dbx.NewSQLRunner(db, nil).InTx(context.Background(), func(ctx context.Context, tx dbx.DBTX) error {
		ok, err := m.Users(tx).SetVerificationToken(ctx, id, "tok", time.Now().Add(time.Hour))
		if err != nil {
			return err
		}
		assert.True(t, ok)
		return nil
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_Success(t *testing.T) {
	db, _ := newDB(t)

	var gotDir string
	stubGooseUp(t, func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	})

	require.NoError(t, NewPostgresRepositoryManager().RunMigrations(context.Background(), db))
	assert.Equal(t, ".", gotDir)
}

func TestRunMigrations_Error(t *testing.T) {
	db, _ := newDB(t)

	boom := errors.New("boom")
	stubGooseUp(t, func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error {
		return boom
	})

	err := NewPostgresRepositoryManager().RunMigrations(context.Background(), db)
	assert.ErrorIs(t, err, boom)
}
