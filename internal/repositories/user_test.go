package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestUserReadRepository_GetByUsername(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserReadRepository(db)

	joinAt := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"username", "password", "first_name", "last_name", "phone", "join_at", "last_login_at"}).
		AddRow("alice", "hash", "Alice", "Anderson", "+14150000000", joinAt, nil)

	mock.ExpectQuery(`FROM users\s+WHERE username`).
		WithArgs("alice").
		WillReturnRows(rows)

	user, err := repo.GetByUsername(context.Background(), "alice")
	assert.NoError(t, err)
	assert.NotNil(t, user)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "hash", user.Password)
	assert.Equal(t, joinAt, user.JoinAt)
	assert.Nil(t, user.LastLoginAt)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserReadRepository_GetByUsername_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserReadRepository(db)

	mock.ExpectQuery(`FROM users\s+WHERE username`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"username"}))

	user, err := repo.GetByUsername(context.Background(), "ghost")
	assert.NoError(t, err)
	assert.Nil(t, user)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserReadRepository_GetByUsername_Error(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserReadRepository(db)

	mock.ExpectQuery(`FROM users\s+WHERE username`).
		WithArgs("alice").
		WillReturnError(errors.New("connection refused"))

	user, err := repo.GetByUsername(context.Background(), "alice")
	assert.Error(t, err)
	assert.Nil(t, user)
}

func TestUserReadRepository_List(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserReadRepository(db)

	rows := sqlmock.NewRows([]string{"username", "first_name", "last_name"}).
		AddRow("alice", "Alice", "Anderson").
		AddRow("bob", "Bob", "Brown")

	mock.ExpectQuery(`ORDER BY username`).WillReturnRows(rows)

	users, err := repo.List(context.Background())
	assert.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserReadRepository_List_Empty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserReadRepository(db)

	mock.ExpectQuery(`ORDER BY username`).
		WillReturnRows(sqlmock.NewRows([]string{"username", "first_name", "last_name"}))

	users, err := repo.List(context.Background())
	assert.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestUserWriteRepository_Save(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserWriteRepository(db)

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs("alice", "hash", "Alice", "Anderson", "+14150000000").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Save(context.Background(), "alice", "hash", "Alice", "Anderson", "+14150000000")
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserWriteRepository_Save_DuplicateUsername(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserWriteRepository(db)

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs("alice", "hash", "Alice", "Anderson", "+14150000000").
		WillReturnError(errors.New(`duplicate key value violates unique constraint "users_pkey"`))

	err := repo.Save(context.Background(), "alice", "hash", "Alice", "Anderson", "+14150000000")
	assert.Error(t, err)
}

func TestUserWriteRepository_UpdateLastLogin(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserWriteRepository(db)

	loginAt := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	mock.ExpectQuery(`UPDATE users`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"last_login_at"}).AddRow(loginAt))

	ts, err := repo.UpdateLastLogin(context.Background(), "alice")
	assert.NoError(t, err)
	assert.NotNil(t, ts)
	assert.Equal(t, loginAt, *ts)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserWriteRepository_UpdateLastLogin_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserWriteRepository(db)

	mock.ExpectQuery(`UPDATE users`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"last_login_at"}))

	ts, err := repo.UpdateLastLogin(context.Background(), "ghost")
	assert.NoError(t, err)
	assert.Nil(t, ts)
}
