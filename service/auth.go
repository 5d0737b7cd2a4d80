package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gofrs/uuid/v5"

	"notekeeper/auth"
	"notekeeper/errs"
	"notekeeper/models"
)

// AuthService defines authentication operations.
type AuthService interface {
	// Login checks the credentials and issues a bearer token for the user.
	Login(ctx context.Context, username, password string) (token string, expiresAt time.Time, err error)
	// Register provisions a user with a salted Argon2id password hash.
	Register(ctx context.Context, username, password string) (*models.User, error)
}

type AuthServiceImpl struct {
	users  UserRepository
	tokens *auth.Tokens
	clock  Clock
	verify func(password string, salt, hash []byte) bool
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users UserRepository, tokens *auth.Tokens) *AuthServiceImpl {
	return &AuthServiceImpl{users: users, tokens: tokens, verify: auth.VerifyPassword}
}

// Unknown usernames are checked against this pair so they cost one Argon2id
// run like a wrong password does.
var (
	dummySalt = make([]byte, auth.SaltLen)
	dummyHash = make([]byte, 32)
)

// Login returns errs.ErrUnauthorized when no user has exactly this username and
// password. Any other failure is returned as is.
func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	u, err := s.users.GetUserByUsername(ctx, username)
	if errors.Is(err, errs.ErrNotFound) {
		s.verify(password, dummySalt, dummyHash)
		return "", time.Time{}, errs.ErrUnauthorized
	}
	if err != nil {
		return "", time.Time{}, fmt.Errorf("load user: %w", err)
	}
	if !s.verify(password, u.PasswordSalt, u.PasswordHash) {
		return "", time.Time{}, errs.ErrUnauthorized
	}

	token, exp, err := s.tokens.Issue(u.Username)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("issue token: %w", err)
	}
	return token, exp, nil
}

// Register creates a user. Blank input is a validation error and a taken
// username is errs.ErrConflict.
func (s *AuthServiceImpl) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", errs.ErrValidation)
	}
	if utf8.RuneCountInString(username) > MaxNameLen {
		return nil, fmt.Errorf("%w: username is longer than %d characters", errs.ErrValidation, MaxNameLen)
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	salt, err := auth.NewSalt()
	if err != nil {
		return nil, err
	}
	u := &models.User{
		ID:           id,
		Username:     username,
		PasswordHash: auth.HashPassword(password, salt),
		PasswordSalt: salt,
		CreatedAt:    s.clock.now(),
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
