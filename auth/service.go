// Package auth issues and checks the bearer tokens that identify users, and
// handles signup and login.
package auth

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"smart-notes/apperr"
	"smart-notes/models"
	"smart-notes/store"
)

var ErrInvalidCredentials = apperr.Auth("Invalid credentials")

// UserRepository is the user storage the service needs. Lookups return
// store.ErrUserNotFound for unknown users and Create returns
// store.ErrUserExists on a username or email clash.
type UserRepository interface {
	Create(ctx context.Context, username, email, passwordHash string) (models.User, error)
	ByEmail(ctx context.Context, email string) (models.User, error)
	ByID(ctx context.Context, id int) (models.User, error)
}

type Service struct {
	users    UserRepository
	tokens   *TokenManager
	hashCost int
}

type Option func(*Service)

// WithHashCost overrides the bcrypt cost.
func WithHashCost(cost int) Option {
	return func(s *Service) { s.hashCost = cost }
}

func NewService(users UserRepository, tokens *TokenManager, opts ...Option) *Service {
	s := &Service{users: users, tokens: tokens, hashCost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates the user and logs them in.
func (s *Service) Register(ctx context.Context, username, email, password string) (models.User, string, error) {
	if username == "" || email == "" || password == "" {
		return models.User{}, "", apperr.Validation("username, email and password are required")
	}

	hash, err := hashPassword(password, s.hashCost)
	if err != nil {
		return models.User{}, "", err
	}

	user, err := s.users.Create(ctx, username, email, hash)
	if err != nil {
		return models.User{}, "", err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return models.User{}, "", err
	}
	return user, token, nil
}

// Authenticate checks an email and password pair.
func (s *Service) Authenticate(ctx context.Context, email, password string) (models.User, string, error) {
	if email == "" || password == "" {
		return models.User{}, "", ErrInvalidCredentials
	}

	user, err := s.users.ByEmail(ctx, email)
	if errors.Is(err, store.ErrUserNotFound) {
		return models.User{}, "", ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, "", err
	}
	if !checkPassword(user.PasswordHash, password) {
		return models.User{}, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return models.User{}, "", err
	}
	return user, token, nil
}

// Resolve turns an Authorization header into the user it identifies.
func (s *Service) Resolve(ctx context.Context, header string) (models.User, error) {
	raw, err := BearerToken(header)
	if err != nil {
		return models.User{}, err
	}

	userID, err := s.tokens.Parse(raw)
	if err != nil {
		return models.User{}, err
	}

	user, err := s.users.ByID(ctx, userID)
	if errors.Is(err, store.ErrUserNotFound) {
		return models.User{}, errors.Wrapf(ErrInvalidToken, "user %d not found", userID)
	}
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}
