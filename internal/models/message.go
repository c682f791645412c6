package models

import "time"

// MessageDB represents a message record in the database
type MessageDB struct {
	ID           int64      `json:"id" db:"id"`                     // Primary key
	FromUsername string     `json:"from_username" db:"from_username"` // Sender, references users
	ToUsername   string     `json:"to_username" db:"to_username"`     // Recipient, references users
	Body         string     `json:"body" db:"body"`                   // Message text
	SentAt       time.Time  `json:"sent_at" db:"sent_at"`             // Set at creation
	ReadAt       *time.Time `json:"read_at" db:"read_at"`             // Null until marked read by the recipient
}

// MessageDetail is a message with both endpoint profiles resolved.
type MessageDetail struct {
	ID       int64       `json:"id"`
	Body     string      `json:"body"`
	SentAt   time.Time   `json:"sent_at"`
	ReadAt   *time.Time  `json:"read_at"`
	FromUser UserProfile `json:"from_user"`
	ToUser   UserProfile `json:"to_user"`
}

// InboxMessage is a received message with the sender's summary resolved.
type InboxMessage struct {
	ID       int64       `json:"id"`
	Body     string      `json:"body"`
	SentAt   time.Time   `json:"sent_at"`
	ReadAt   *time.Time  `json:"read_at"`
	FromUser UserSummary `json:"from_user"`
}

// OutboxMessage is a sent message with the recipient's summary resolved.
type OutboxMessage struct {
	ID     int64       `json:"id"`
	Body   string      `json:"body"`
	SentAt time.Time   `json:"sent_at"`
	ReadAt *time.Time  `json:"read_at"`
	ToUser UserSummary `json:"to_user"`
}

// MessageRead is the result of marking a message as read.
type MessageRead struct {
	ID     int64     `json:"id" db:"id"`
	ReadAt time.Time `json:"read_at" db:"read_at"`
}
