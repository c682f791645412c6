package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/messagely/server/internal/logger"
	"github.com/messagely/server/internal/services"
)

// Registerer defines the interface that the registration service must implement.
type Registerer interface {
	Register(ctx context.Context, username, password, firstName, lastName, phone string) (string, error)
}

// RegisterRequest represents the JSON body for user registration
// swagger:model RegisterRequest
type RegisterRequest struct {
	// Username
	// required: true
	// example: alice
	Username string `json:"username"`

	// Password
	// required: true
	// example: secret123
	Password string `json:"password"`

	// First name
	// required: true
	// example: Alice
	FirstName string `json:"first_name"`

	// Last name
	// required: true
	// example: Anderson
	LastName string `json:"last_name"`

	// Phone
	// required: true
	// example: +14150000000
	Phone string `json:"phone"`
}

// TokenResponse carries a freshly issued bearer token
// swagger:model TokenResponse
type TokenResponse struct {
	// Signed bearer token
	// example: JWT_TOKEN
	Token string `json:"token"`
}

// NewRegisterHandler returns an HTTP handler for user registration.
// @Summary Register a new user
// @Description Creates a user account, records the first login and returns a bearer token. The password is hashed before storing.
// @Tags auth
// @Accept json
// @Produce json
// @Param registerRequest body handlers.RegisterRequest true "User registration request"
// @Success 201 {object} handlers.TokenResponse "User registered, token issued"
// @Failure 400 {object} models.ErrorResponse "Missing fields or duplicate username"
// @Router /auth/register [post]
func NewRegisterHandler(svc Registerer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if req.Username == "" || req.Password == "" || req.FirstName == "" || req.LastName == "" || req.Phone == "" {
			writeError(w, http.StatusBadRequest, "all fields are required: username, password, first_name, last_name, phone")
			return
		}

		token, err := svc.Register(r.Context(), req.Username, req.Password, req.FirstName, req.LastName, req.Phone)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrUsernameTaken):
				writeError(w, http.StatusBadRequest, "username already exists")
			default:
				logger.Log.Errorw("internal server error", "err", err)
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
			return
		}

		writeJSON(w, http.StatusCreated, TokenResponse{Token: token})
	}
}
