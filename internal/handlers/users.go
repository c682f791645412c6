package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/messagely/server/internal/logger"
	"github.com/messagely/server/internal/models"
	"github.com/messagely/server/internal/services"
)

// UserLister defines the interface for the user listing service.
type UserLister interface {
	List(ctx context.Context) ([]models.UserSummary, error)
}

// UserGetter defines the interface for the user profile service.
type UserGetter interface {
	Get(ctx context.Context, username string) (*models.UserProfile, error)
}

// MailboxProvider defines the interface for a user's message queries.
type MailboxProvider interface {
	Inbox(ctx context.Context, username string) ([]models.InboxMessage, error)
	Outbox(ctx context.Context, username string) ([]models.OutboxMessage, error)
}

// UsersResponse wraps the user listing
// swagger:model UsersResponse
type UsersResponse struct {
	Users []models.UserSummary `json:"users"`
}

// UserResponse wraps a single full profile
// swagger:model UserResponse
type UserResponse struct {
	User models.UserProfile `json:"user"`
}

// InboxResponse wraps messages sent to a user
// swagger:model InboxResponse
type InboxResponse struct {
	Messages []models.InboxMessage `json:"messages"`
}

// OutboxResponse wraps messages sent by a user
// swagger:model OutboxResponse
type OutboxResponse struct {
	Messages []models.OutboxMessage `json:"messages"`
}

// NewListUsersHandler returns an HTTP handler listing all users.
// @Summary List users
// @Description Returns summaries (username, first_name, last_name) of all users.
// @Tags users
// @Produce json
// @Success 200 {object} handlers.UsersResponse
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users [get]
func NewListUsersHandler(svc UserLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := svc.List(r.Context())
		if err != nil {
			logger.Log.Errorw("internal server error", "err", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		writeJSON(w, http.StatusOK, UsersResponse{Users: users})
	}
}

// NewGetUserHandler returns an HTTP handler for a user's full profile.
// @Summary Get user
// @Description Returns the full profile of the authenticated user.
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} handlers.UserResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/{username} [get]
func NewGetUserHandler(svc UserGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := chi.URLParam(r, "username")

		user, err := svc.Get(r.Context(), username)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrUserNotFound):
				writeError(w, http.StatusNotFound, "user does not exist")
			default:
				logger.Log.Errorw("internal server error", "err", err)
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
			return
		}

		writeJSON(w, http.StatusOK, UserResponse{User: *user})
	}
}

// NewUserInboxHandler returns an HTTP handler for messages sent to a user.
// @Summary Messages to user
// @Description Returns all messages sent to the authenticated user, each with the sender's summary.
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} handlers.InboxResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/{username}/to [get]
func NewUserInboxHandler(svc MailboxProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := chi.URLParam(r, "username")

		messages, err := svc.Inbox(r.Context(), username)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrUserNotFound):
				writeError(w, http.StatusNotFound, "user does not exist")
			default:
				logger.Log.Errorw("internal server error", "err", err)
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
			return
		}

		writeJSON(w, http.StatusOK, InboxResponse{Messages: messages})
	}
}

// NewUserOutboxHandler returns an HTTP handler for messages sent by a user.
// @Summary Messages from user
// @Description Returns all messages sent by the authenticated user, each with the recipient's summary.
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} handlers.OutboxResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/{username}/from [get]
func NewUserOutboxHandler(svc MailboxProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := chi.URLParam(r, "username")

		messages, err := svc.Outbox(r.Context(), username)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrUserNotFound):
				writeError(w, http.StatusNotFound, "user does not exist")
			default:
				logger.Log.Errorw("internal server error", "err", err)
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
			return
		}

		writeJSON(w, http.StatusOK, OutboxResponse{Messages: messages})
	}
}
