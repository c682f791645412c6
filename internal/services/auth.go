package services

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/messagely/server/internal/logger"
	"github.com/messagely/server/internal/models"
)

// Error variables
var (
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user does not exist")
)

// UserReader defines read-only operations for users.
type UserReader interface {
	GetByUsername(ctx context.Context, username string) (*models.UserDB, error)
	List(ctx context.Context) ([]models.UserSummary, error)
}

// UserWriter defines write operations for users.
type UserWriter interface {
	Save(ctx context.Context, username, password, firstName, lastName, phone string) error
	UpdateLastLogin(ctx context.Context, username string) (*time.Time, error)
}

// TokenIssuer defines an interface for issuing signed bearer tokens.
type TokenIssuer interface {
	Generate(ctx context.Context, username string) (string, error)
}

// AuthService handles registration, authentication and login.
type AuthService struct {
	reader UserReader
	writer UserWriter
	jwt    TokenIssuer
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(reader UserReader, writer UserWriter, jwt TokenIssuer) *AuthService {
	return &AuthService{
		reader: reader,
		writer: writer,
		jwt:    jwt,
	}
}

// Register creates a new user and logs them in, returning a token.
func (svc *AuthService) Register(ctx context.Context, username, password, firstName, lastName, phone string) (string, error) {
	user, err := svc.reader.GetByUsername(ctx, username)
	if err != nil {
		logger.Log.Errorw("failed to check user exists", "err", err)
		return "", err
	}
	if user != nil {
		logger.Log.Infow("username already taken", "username", username)
		return "", ErrUsernameTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "err", err)
		return "", err
	}

	if err := svc.writer.Save(ctx, username, string(hashedPassword), firstName, lastName, phone); err != nil {
		logger.Log.Errorw("failed to save user", "err", err)
		return "", err
	}

	// Registration counts as a login.
	if _, err := svc.writer.UpdateLastLogin(ctx, username); err != nil {
		logger.Log.Errorw("failed to record login", "err", err)
		return "", err
	}

	token, err := svc.jwt.Generate(ctx, username)
	if err != nil {
		logger.Log.Errorw("failed to generate token", "err", err)
		return "", err
	}

	return token, nil
}

// Authenticate reports whether the username/password pair is valid.
// Unknown usernames and wrong passwords both return false without an
// error, so callers cannot distinguish the two cases.
func (svc *AuthService) Authenticate(ctx context.Context, username, password string) (bool, error) {
	user, err := svc.reader.GetByUsername(ctx, username)
	if err != nil {
		logger.Log.Errorw("failed to get user", "err", err)
		return false, err
	}
	if user == nil {
		return false, nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return false, nil
	}

	return true, nil
}

// Login authenticates a user, records the login and returns a token.
func (svc *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	ok, err := svc.Authenticate(ctx, username, password)
	if err != nil {
		return "", err
	}
	if !ok {
		logger.Log.Infow("invalid credentials", "username", username)
		return "", ErrInvalidCredentials
	}

	if _, err := svc.writer.UpdateLastLogin(ctx, username); err != nil {
		logger.Log.Errorw("failed to record login", "err", err)
		return "", err
	}

	token, err := svc.jwt.Generate(ctx, username)
	if err != nil {
		logger.Log.Errorw("failed to generate token", "err", err)
		return "", err
	}

	return token, nil
}
