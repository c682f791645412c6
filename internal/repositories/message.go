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

// MessageReadRepository provides read access to the messages relation.
type MessageReadRepository struct {
	db *sqlx.DB
}

func NewMessageReadRepository(db *sqlx.DB) *MessageReadRepository {
	return &MessageReadRepository{db: db}
}

type messageDetailRow struct {
	ID     int64      `db:"id"`
	Body   string     `db:"body"`
	SentAt time.Time  `db:"sent_at"`
	ReadAt *time.Time `db:"read_at"`

	FromUsername    string     `db:"from_username"`
	FromFirstName   string     `db:"from_first_name"`
	FromLastName    string     `db:"from_last_name"`
	FromPhone       string     `db:"from_phone"`
	FromJoinAt      time.Time  `db:"from_join_at"`
	FromLastLoginAt *time.Time `db:"from_last_login_at"`

	ToUsername    string     `db:"to_username"`
	ToFirstName   string     `db:"to_first_name"`
	ToLastName    string     `db:"to_last_name"`
	ToPhone       string     `db:"to_phone"`
	ToJoinAt      time.Time  `db:"to_join_at"`
	ToLastLoginAt *time.Time `db:"to_last_login_at"`
}

// GetByID returns a message with both endpoint profiles resolved in a
// single join, or nil when the id is unknown.
func (r *MessageReadRepository) GetByID(ctx context.Context, id int64) (*models.MessageDetail, error) {
	const query = `
		SELECT m.id, m.body, m.sent_at, m.read_at,
		       f.username AS from_username,
		       f.first_name AS from_first_name,
		       f.last_name AS from_last_name,
		       f.phone AS from_phone,
		       f.join_at AS from_join_at,
		       f.last_login_at AS from_last_login_at,
		       t.username AS to_username,
		       t.first_name AS to_first_name,
		       t.last_name AS to_last_name,
		       t.phone AS to_phone,
		       t.join_at AS to_join_at,
		       t.last_login_at AS to_last_login_at
		FROM messages m
		JOIN users f ON f.username = m.from_username
		JOIN users t ON t.username = m.to_username
		WHERE m.id = $1
	`

	var row messageDetailRow
	err := r.db.GetContext(ctx, &row, query, id)

	logger.Log.Debugw("query executed",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{id},
		"error", err,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &models.MessageDetail{
		ID:     row.ID,
		Body:   row.Body,
		SentAt: row.SentAt,
		ReadAt: row.ReadAt,
		FromUser: models.UserProfile{
			Username:    row.FromUsername,
			FirstName:   row.FromFirstName,
			LastName:    row.FromLastName,
			Phone:       row.FromPhone,
			JoinAt:      row.FromJoinAt,
			LastLoginAt: row.FromLastLoginAt,
		},
		ToUser: models.UserProfile{
			Username:    row.ToUsername,
			FirstName:   row.ToFirstName,
			LastName:    row.ToLastName,
			Phone:       row.ToPhone,
			JoinAt:      row.ToJoinAt,
			LastLoginAt: row.ToLastLoginAt,
		},
	}, nil
}

type counterpartyRow struct {
	ID        int64      `db:"id"`
	Body      string     `db:"body"`
	SentAt    time.Time  `db:"sent_at"`
	ReadAt    *time.Time `db:"read_at"`
	Username  string     `db:"username"`
	FirstName string     `db:"first_name"`
	LastName  string     `db:"last_name"`
}

// ListInbox returns all messages sent to the given user with each
// sender's summary resolved in one join, ordered by sent time.
func (r *MessageReadRepository) ListInbox(ctx context.Context, username string) ([]models.InboxMessage, error) {
	const query = `
		SELECT m.id, m.body, m.sent_at, m.read_at,
		       u.username, u.first_name, u.last_name
		FROM messages m
		JOIN users u ON u.username = m.from_username
		WHERE m.to_username = $1
		ORDER BY m.sent_at, m.id
	`

	rows := make([]counterpartyRow, 0)
	err := r.db.SelectContext(ctx, &rows, query, username)

	logger.Log.Debugw("query executed",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{username},
		"rows", len(rows),
		"error", err,
	)

	if err != nil {
		return nil, err
	}

	messages := make([]models.InboxMessage, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, models.InboxMessage{
			ID:     row.ID,
			Body:   row.Body,
			SentAt: row.SentAt,
			ReadAt: row.ReadAt,
			FromUser: models.UserSummary{
				Username:  row.Username,
				FirstName: row.FirstName,
				LastName:  row.LastName,
			},
		})
	}

	return messages, nil
}

// ListOutbox returns all messages sent by the given user with each
// recipient's summary resolved in one join, ordered by sent time.
func (r *MessageReadRepository) ListOutbox(ctx context.Context, username string) ([]models.OutboxMessage, error) {
	const query = `
		SELECT m.id, m.body, m.sent_at, m.read_at,
		       u.username, u.first_name, u.last_name
		FROM messages m
		JOIN users u ON u.username = m.to_username
		WHERE m.from_username = $1
		ORDER BY m.sent_at, m.id
	`

	rows := make([]counterpartyRow, 0)
	err := r.db.SelectContext(ctx, &rows, query, username)

	logger.Log.Debugw("query executed",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{username},
		"rows", len(rows),
		"error", err,
	)

	if err != nil {
		return nil, err
	}

	messages := make([]models.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, models.OutboxMessage{
			ID:     row.ID,
			Body:   row.Body,
			SentAt: row.SentAt,
			ReadAt: row.ReadAt,
			ToUser: models.UserSummary{
				Username:  row.Username,
				FirstName: row.FirstName,
				LastName:  row.LastName,
			},
		})
	}

	return messages, nil
}

// MessageWriteRepository provides write access to the messages relation.
type MessageWriteRepository struct {
	db *sqlx.DB
}

func NewMessageWriteRepository(db *sqlx.DB) *MessageWriteRepository {
	return &MessageWriteRepository{db: db}
}

// Save inserts a new message. sent_at is set server-side and read_at
// starts out null.
func (r *MessageWriteRepository) Save(ctx context.Context, fromUsername, toUsername, body string) (*models.MessageDB, error) {
	const query = `
		INSERT INTO messages (from_username, to_username, body, sent_at)
		VALUES ($1, $2, $3, now())
		RETURNING id, from_username, to_username, body, sent_at, read_at
	`
	args := []any{fromUsername, toUsername, body}

	var msg models.MessageDB
	err := r.db.GetContext(ctx, &msg, query, args...)

	logger.Log.Debugw("query executed",
		"query", strings.Join(strings.Fields(query), " "),
		"args", args,
		"error", err,
	)

	if err != nil {
		return nil, err
	}

	return &msg, nil
}

// MarkRead stamps read_at unless it is already set, so the first mark
// wins and re-marking returns the original timestamp. Returns nil when
// the id is unknown.
func (r *MessageWriteRepository) MarkRead(ctx context.Context, id int64) (*models.MessageRead, error) {
	const query = `
		UPDATE messages
		SET read_at = COALESCE(read_at, now())
		WHERE id = $1
		RETURNING id, read_at
	`

	var read models.MessageRead
	err := r.db.GetContext(ctx, &read, query, id)

	logger.Log.Debugw("query executed",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{id},
		"error", err,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &read, nil
}
