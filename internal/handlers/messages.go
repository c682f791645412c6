package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/messagely/server/internal/logger"
	"github.com/messagely/server/internal/middlewares"
	"github.com/messagely/server/internal/models"
	"github.com/messagely/server/internal/services"
)

// MessageSender defines the interface for sending messages.
type MessageSender interface {
	Send(ctx context.Context, fromUsername, toUsername, body string) (*models.MessageDB, error)
}

// MessageGetter defines the interface for reading a single message.
type MessageGetter interface {
	Get(ctx context.Context, actor string, id int64) (*models.MessageDetail, error)
}

// MessageReadMarker defines the interface for marking a message read.
type MessageReadMarker interface {
	MarkRead(ctx context.Context, actor string, id int64) (*models.MessageRead, error)
}

// SendMessageRequest represents the JSON body for sending a message
// swagger:model SendMessageRequest
type SendMessageRequest struct {
	// Recipient username
	// required: true
	// example: bob
	ToUsername string `json:"to_username"`

	// Message text
	// required: true
	// example: hi
	Body string `json:"body"`
}

// SentMessageResponse wraps a freshly created message
// swagger:model SentMessageResponse
type SentMessageResponse struct {
	Message models.MessageDB `json:"message"`
}

// MessageDetailResponse wraps message detail with both profiles
// swagger:model MessageDetailResponse
type MessageDetailResponse struct {
	Message models.MessageDetail `json:"message"`
}

// MessageReadResponse wraps the read-mark result
// swagger:model MessageReadResponse
type MessageReadResponse struct {
	Message models.MessageRead `json:"message"`
}

// messageID parses the {id} URL parameter.
func messageID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// NewSendMessageHandler returns an HTTP handler that sends a message
// from the authenticated user.
// @Summary Send message
// @Description Creates a message from the authenticated user to the given recipient.
// @Tags messages
// @Accept json
// @Produce json
// @Param sendMessageRequest body handlers.SendMessageRequest true "Message to send"
// @Success 201 {object} handlers.SentMessageResponse
// @Failure 400 {object} models.ErrorResponse "Missing fields"
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse "Unknown recipient"
// @Security BearerAuth
// @Router /messages [post]
func NewSendMessageHandler(svc MessageSender) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SendMessageRequest

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if req.ToUsername == "" || req.Body == "" {
			writeError(w, http.StatusBadRequest, "to_username and body are required")
			return
		}

		fromUsername := middlewares.GetUsernameFromContext(r.Context())

		msg, err := svc.Send(r.Context(), fromUsername, req.ToUsername, req.Body)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrUserNotFound):
				writeError(w, http.StatusNotFound, "recipient does not exist")
			default:
				logger.Log.Errorw("internal server error", "err", err)
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
			return
		}

		writeJSON(w, http.StatusCreated, SentMessageResponse{Message: *msg})
	}
}

// NewGetMessageHandler returns an HTTP handler for message detail.
// The authenticated user must be the sender or the recipient.
// @Summary Get message
// @Description Returns message detail with both endpoint profiles resolved.
// @Tags messages
// @Produce json
// @Param id path int true "Message ID"
// @Success 200 {object} handlers.MessageDetailResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /messages/{id} [get]
func NewGetMessageHandler(svc MessageGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := messageID(r)
		if err != nil {
			writeError(w, http.StatusNotFound, "message does not exist")
			return
		}

		actor := middlewares.GetUsernameFromContext(r.Context())

		msg, err := svc.Get(r.Context(), actor, id)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrMessageNotFound):
				writeError(w, http.StatusNotFound, "message does not exist")
			case errors.Is(err, services.ErrNotAllowed):
				writeError(w, http.StatusUnauthorized, "not authorized")
			default:
				logger.Log.Errorw("internal server error", "err", err)
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
			return
		}

		writeJSON(w, http.StatusOK, MessageDetailResponse{Message: *msg})
	}
}

// NewMarkMessageReadHandler returns an HTTP handler that marks a
// message as read. Only the recipient may mark a message.
// @Summary Mark message read
// @Description Sets the message's read timestamp. First mark wins; re-marking returns the original timestamp.
// @Tags messages
// @Produce json
// @Param id path int true "Message ID"
// @Success 200 {object} handlers.MessageReadResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /messages/{id}/read [post]
func NewMarkMessageReadHandler(svc MessageReadMarker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := messageID(r)
		if err != nil {
			writeError(w, http.StatusNotFound, "message does not exist")
			return
		}

		actor := middlewares.GetUsernameFromContext(r.Context())

		read, err := svc.MarkRead(r.Context(), actor, id)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrMessageNotFound):
				writeError(w, http.StatusNotFound, "message does not exist")
			case errors.Is(err, services.ErrNotAllowed):
				writeError(w, http.StatusUnauthorized, "not authorized")
			default:
				logger.Log.Errorw("internal server error", "err", err)
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
			return
		}

		writeJSON(w, http.StatusOK, MessageReadResponse{Message: *read})
	}
}
