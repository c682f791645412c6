//go:build integration

package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupPostgres(t *testing.T) (*sqlx.DB, func()) {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_PASSWORD": "secret", "POSTGRES_DB": "testdb", "POSTGRES_USER": "postgres"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(30 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	assert.NoError(t, err)

	host, err := container.Host(ctx)
	assert.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	assert.NoError(t, err)

	dsn := fmt.Sprintf("postgres://postgres:secret@%s:%s/testdb?sslmode=disable", host, port.Port())

	var db *sqlx.DB
	for i := 0; i < 10; i++ {
		db, err = sqlx.Connect("pgx", dsn)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	assert.NoError(t, err)

	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			username VARCHAR(50) PRIMARY KEY,
			password VARCHAR(255) NOT NULL,
			first_name VARCHAR(50) NOT NULL,
			last_name VARCHAR(50) NOT NULL,
			phone VARCHAR(30) NOT NULL,
			join_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			last_login_at TIMESTAMPTZ
		);`,
		`CREATE TABLE IF NOT EXISTS messages (
			id BIGSERIAL PRIMARY KEY,
			from_username VARCHAR(50) NOT NULL REFERENCES users(username),
			to_username VARCHAR(50) NOT NULL REFERENCES users(username),
			body TEXT NOT NULL,
			sent_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			read_at TIMESTAMPTZ
		);`,
	}

	for _, m := range migrations {
		_, err = db.Exec(m)
		assert.NoError(t, err)
	}

	return db, func() {
		db.Close()
		container.Terminate(ctx)
	}
}

func registerTestUser(t *testing.T, writeRepo *UserWriteRepository, username, firstName, lastName, phone string) {
	t.Helper()
	err := writeRepo.Save(context.Background(), username, "hash", firstName, lastName, phone)
	assert.NoError(t, err)
}

func TestUserRepository_RoundTrip(t *testing.T) {
	db, teardown := setupPostgres(t)
	defer teardown()

	readRepo := NewUserReadRepository(db)
	writeRepo := NewUserWriteRepository(db)
	ctx := context.Background()

	registerTestUser(t, writeRepo, "alice", "Alice", "Anderson", "+14150000000")
	registerTestUser(t, writeRepo, "bob", "Bob", "Brown", "+14155559999")

	// Duplicate insert must fail and leave a single row
	err := writeRepo.Save(ctx, "alice", "otherhash", "Alice", "Anderson", "+14150000000")
	assert.Error(t, err)

	users, err := readRepo.List(ctx)
	assert.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)

	user, err := readRepo.GetByUsername(ctx, "alice")
	assert.NoError(t, err)
	assert.NotNil(t, user)
	assert.Nil(t, user.LastLoginAt)

	ts, err := writeRepo.UpdateLastLogin(ctx, "alice")
	assert.NoError(t, err)
	assert.NotNil(t, ts)

	user, err = readRepo.GetByUsername(ctx, "alice")
	assert.NoError(t, err)
	assert.NotNil(t, user.LastLoginAt)

	// Unknown usernames resolve to nil, not errors
	ghost, err := readRepo.GetByUsername(ctx, "ghost")
	assert.NoError(t, err)
	assert.Nil(t, ghost)

	missing, err := writeRepo.UpdateLastLogin(ctx, "ghost")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMessageRepository_RoundTrip(t *testing.T) {
	db, teardown := setupPostgres(t)
	defer teardown()

	userWrite := NewUserWriteRepository(db)
	readRepo := NewMessageReadRepository(db)
	writeRepo := NewMessageWriteRepository(db)
	ctx := context.Background()

	registerTestUser(t, userWrite, "alice", "Alice", "Anderson", "+14150000000")
	registerTestUser(t, userWrite, "bob", "Bob", "Brown", "+14155559999")

	// bob sends alice "hi"
	msg, err := writeRepo.Save(ctx, "bob", "alice", "hi")
	assert.NoError(t, err)
	assert.NotZero(t, msg.ID)
	assert.Nil(t, msg.ReadAt)

	detail, err := readRepo.GetByID(ctx, msg.ID)
	assert.NoError(t, err)
	assert.Equal(t, "bob", detail.FromUser.Username)
	assert.Equal(t, "alice", detail.ToUser.Username)
	assert.Nil(t, detail.ReadAt)

	inbox, err := readRepo.ListInbox(ctx, "alice")
	assert.NoError(t, err)
	assert.Len(t, inbox, 1)
	assert.Equal(t, "bob", inbox[0].FromUser.Username)

	outbox, err := readRepo.ListOutbox(ctx, "bob")
	assert.NoError(t, err)
	assert.Len(t, outbox, 1)
	assert.Equal(t, "alice", outbox[0].ToUser.Username)

	// First mark wins; re-marking keeps the original timestamp
	read, err := writeRepo.MarkRead(ctx, msg.ID)
	assert.NoError(t, err)
	assert.False(t, read.ReadAt.IsZero())

	again, err := writeRepo.MarkRead(ctx, msg.ID)
	assert.NoError(t, err)
	assert.True(t, read.ReadAt.Equal(again.ReadAt))

	detail, err = readRepo.GetByID(ctx, msg.ID)
	assert.NoError(t, err)
	assert.NotNil(t, detail.ReadAt)

	// Unknown ids resolve to nil, not errors
	missing, err := readRepo.GetByID(ctx, 424242)
	assert.NoError(t, err)
	assert.Nil(t, missing)

	// Unknown recipient violates the FK
	_, err = writeRepo.Save(ctx, "bob", "ghost", "hello?")
	assert.Error(t, err)
}
