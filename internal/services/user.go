package services

import (
	"context"

	"github.com/messagely/server/internal/logger"
	"github.com/messagely/server/internal/models"
)

// MailboxReader defines read operations over a user's messages.
type MailboxReader interface {
	ListInbox(ctx context.Context, username string) ([]models.InboxMessage, error)
	ListOutbox(ctx context.Context, username string) ([]models.OutboxMessage, error)
}

// UserService answers user listing, profile and mailbox queries.
type UserService struct {
	users   UserReader
	mailbox MailboxReader
}

// NewUserService creates a new UserService instance.
func NewUserService(users UserReader, mailbox MailboxReader) *UserService {
	return &UserService{
		users:   users,
		mailbox: mailbox,
	}
}

// List returns summaries of all users.
func (svc *UserService) List(ctx context.Context) ([]models.UserSummary, error) {
	users, err := svc.users.List(ctx)
	if err != nil {
		logger.Log.Errorw("failed to list users", "err", err)
		return nil, err
	}
	return users, nil
}

// Get returns the full profile for a username.
func (svc *UserService) Get(ctx context.Context, username string) (*models.UserProfile, error) {
	user, err := svc.users.GetByUsername(ctx, username)
	if err != nil {
		logger.Log.Errorw("failed to get user", "err", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	profile := user.Profile()
	return &profile, nil
}

// Inbox returns all messages sent to the user.
func (svc *UserService) Inbox(ctx context.Context, username string) ([]models.InboxMessage, error) {
	if err := svc.ensureExists(ctx, username); err != nil {
		return nil, err
	}

	messages, err := svc.mailbox.ListInbox(ctx, username)
	if err != nil {
		logger.Log.Errorw("failed to list inbox", "username", username, "err", err)
		return nil, err
	}
	return messages, nil
}

// Outbox returns all messages sent by the user.
func (svc *UserService) Outbox(ctx context.Context, username string) ([]models.OutboxMessage, error) {
	if err := svc.ensureExists(ctx, username); err != nil {
		return nil, err
	}

	messages, err := svc.mailbox.ListOutbox(ctx, username)
	if err != nil {
		logger.Log.Errorw("failed to list outbox", "username", username, "err", err)
		return nil, err
	}
	return messages, nil
}

func (svc *UserService) ensureExists(ctx context.Context, username string) error {
	user, err := svc.users.GetByUsername(ctx, username)
	if err != nil {
		logger.Log.Errorw("failed to get user", "err", err)
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	return nil
}
