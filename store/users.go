package store

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"smart-notes/apperr"
	"smart-notes/models"
)

var (
	ErrUserExists   = apperr.Conflict("User with that username or email already exists")
	ErrUserNotFound = errors.New("user not found")
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// Create inserts a user unless one with the same username or email exists.
// The check and the insert share a transaction; the unique indexes catch the
// remaining race.
func (s *UserStore) Create(ctx context.Context, username, email, passwordHash string) (models.User, error) {
	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now(),
	}

	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM users WHERE username = ? OR email = ?", username, email,
		).Scan(&exists)
		if err != nil {
			return errors.Wrap(err, "check existing user")
		}
		if exists > 0 {
			return ErrUserExists
		}

		res, err := tx.ExecContext(ctx,
			"INSERT INTO users (username, email, password_hash, created_at) VALUES (?, ?, ?, ?)",
			username, email, passwordHash, user.CreatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrUserExists
			}
			return errors.Wrap(err, "insert user")
		}
		id, err := res.LastInsertId()
		if err != nil {
			return errors.Wrap(err, "user id")
		}
		user.ID = int(id)
		return nil
	})
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (s *UserStore) ByEmail(ctx context.Context, email string) (models.User, error) {
	return s.one(ctx, "SELECT id, username, email, password_hash, created_at FROM users WHERE email = ?", email)
}

func (s *UserStore) ByID(ctx context.Context, id int) (models.User, error) {
	return s.one(ctx, "SELECT id, username, email, password_hash, created_at FROM users WHERE id = ?", id)
}

func (s *UserStore) one(ctx context.Context, query string, arg any) (models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, timestamp{&u.CreatedAt})
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, errors.Wrap(err, "query user")
	}
	return u, nil
}
