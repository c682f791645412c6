package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/messagely/server/internal/logger"
	"github.com/messagely/server/internal/models"
)

// UserReadRepository provides read access to the users relation.
type UserReadRepository struct {
	db *sqlx.DB
}

func NewUserReadRepository(db *sqlx.DB) *UserReadRepository {
	return &UserReadRepository{db: db}
}

// GetByUsername returns the user record or nil when the username is unknown.
func (r *UserReadRepository) GetByUsername(ctx context.Context, username string) (*models.UserDB, error) {
	const query = `
		SELECT username, password, first_name, last_name, phone, join_at, last_login_at
		FROM users
		WHERE username = $1
	`

	var user models.UserDB
	err := r.db.GetContext(ctx, &user, query, username)

	logger.Log.Debugw("query executed",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{username},
		"error", err,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// List returns summaries of all users ordered by username.
func (r *UserReadRepository) List(ctx context.Context) ([]models.UserSummary, error) {
	const query = `
		SELECT username, first_name, last_name
		FROM users
		ORDER BY username
	`

	users := make([]models.UserSummary, 0)
	err := r.db.SelectContext(ctx, &users, query)

	logger.Log.Debugw("query executed",
		"query", strings.Join(strings.Fields(query), " "),
		"rows", len(users),
		"error", err,
	)

	if err != nil {
		return nil, err
	}

	return users, nil
}

// UserWriteRepository provides write access to the users relation.
type UserWriteRepository struct {
	db *sqlx.DB
}

func NewUserWriteRepository(db *sqlx.DB) *UserWriteRepository {
	return &UserWriteRepository{db: db}
}

// Save inserts a new user. Usernames are immutable, so this is a plain
// insert, never an upsert.
func (r *UserWriteRepository) Save(ctx context.Context, username, password, firstName, lastName, phone string) error {
	const query = `
		INSERT INTO users (username, password, first_name, last_name, phone, join_at)
		VALUES ($1, $2, $3, $4, $5, now())
	`
	args := []any{username, password, firstName, lastName, phone}

	_, err := r.db.ExecContext(ctx, query, args...)

	logger.Log.Debugw("query executed",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{username, firstName, lastName, phone},
		"error", err,
	)

	return err
}

// UpdateLastLogin stamps last_login_at and returns the new timestamp,
// or nil when the username is unknown.
func (r *UserWriteRepository) UpdateLastLogin(ctx context.Context, username string) (*time.Time, error) {
	const query = `
		UPDATE users
		SET last_login_at = now()
		WHERE username = $1
		RETURNING last_login_at
	`

	var ts time.Time
	err := r.db.GetContext(ctx, &ts, query, username)

	logger.Log.Debugw("query executed",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{username},
		"error", err,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &ts, nil
}
