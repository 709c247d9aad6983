// Package service holds the application logic between the HTTP handlers and
// the repositories: account registration and login, and the favorites
// workflow with its activity events.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/iliyamo/recipe-favorites/internal/model"
	"github.com/iliyamo/recipe-favorites/internal/repository"
	"github.com/iliyamo/recipe-favorites/internal/utils"
)

var (
	ErrMissingFields      = errors.New("email and password are required")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrAlreadyExists      = errors.New("user already exists")
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("incorrect password")
	ErrPasswordTooLong    = errors.New("password must be at most 72 bytes")
)

// bcrypt rejects passwords longer than this many bytes.
const maxPasswordBytes = 72

// UserStore is the slice of the user repository the auth flow needs.
type UserStore interface {
	Create(ctx context.Context, email, passwordHash string) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
}

// AuthResult is returned by a successful register or login.
type AuthResult struct {
	Token   string           `json:"token"`
	Expires time.Time        `json:"expires"`
	User    model.PublicUser `json:"user"`
}

type AuthService struct {
	users      UserStore
	secret     string
	ttl        time.Duration
	bcryptCost int
}

func NewAuthService(users UserStore, secret string, ttl time.Duration, bcryptCost int) *AuthService {
	return &AuthService{users: users, secret: secret, ttl: ttl, bcryptCost: bcryptCost}
}

// Register creates an account and returns a token for it.  A registration
// that loses a race on the same email still reports ErrAlreadyExists since
// the unique key on users.email rejects the second insert.
func (s *AuthService) Register(ctx context.Context, email, password string) (AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return AuthResult{}, ErrMissingFields
	}
	if len(password) > maxPasswordBytes {
		return AuthResult{}, ErrPasswordTooLong
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return AuthResult{}, ErrInvalidEmail
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return AuthResult{}, ErrAlreadyExists
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return AuthResult{}, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := utils.HashPassword(password, s.bcryptCost)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}
	u, err := s.users.Create(ctx, email, hash)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return AuthResult{}, ErrAlreadyExists
		}
		return AuthResult{}, fmt.Errorf("create user: %w", err)
	}
	return s.issue(u)
}

// Login checks the credentials and returns a fresh token.  An unknown email
// and a wrong password are reported as different errors.
func (s *AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return AuthResult{}, ErrMissingFields
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return AuthResult{}, ErrNotFound
		}
		return AuthResult{}, fmt.Errorf("lookup user: %w", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return AuthResult{}, ErrInvalidCredentials
	}
	return s.issue(u)
}

func (s *AuthService) issue(u model.User) (AuthResult, error) {
	at, err := utils.NewAccessToken(s.secret, u.ID, s.ttl)
	if err != nil {
		return AuthResult{}, fmt.Errorf("sign token: %w", err)
	}
	return AuthResult{Token: at.Token, Expires: at.Exp, User: u.Public()}, nil
}
