package auth

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"smart-notes/apperr"
	"smart-notes/db"
	"smart-notes/models"
	"smart-notes/store"
)

func newTestService(t *testing.T) (*Service, *store.UserStore) {
	t.Helper()
	conn, err := db.Connect(context.Background(), db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	users := store.NewUserStore(conn)
	svc := NewService(users, NewTokenManager(testSecret, time.Hour), WithHashCost(bcrypt.MinCost))
	return svc, users
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc, users := newTestService(t)

	user, token, err := svc.Register(ctx, "a", "a@x.com", "p")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "a", user.Username)
	assert.Equal(t, "a@x.com", user.Email)
	require.NotEmpty(t, token)

	t.Run("Token resolves to the new user", func(t *testing.T) {
		resolved, err := svc.Resolve(ctx, "Bearer "+token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, resolved.ID)
		assert.Equal(t, "a", resolved.Username)
	})

	t.Run("Password is stored hashed", func(t *testing.T) {
		stored, err := users.ByEmail(ctx, "a@x.com")
		require.NoError(t, err)
		assert.NotEqual(t, "p", stored.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("p")))
	})

	t.Run("Duplicate username", func(t *testing.T) {
		_, _, err := svc.Register(ctx, "a", "other@x.com", "p")
		assert.ErrorIs(t, err, store.ErrUserExists)
		assert.Equal(t, apperr.KindConflict, apperr.From(err).Kind)
	})

	t.Run("Duplicate email", func(t *testing.T) {
		_, _, err := svc.Register(ctx, "other", "a@x.com", "p")
		assert.ErrorIs(t, err, store.ErrUserExists)
	})

	t.Run("Missing fields", func(t *testing.T) {
		for _, in := range [][3]string{{"", "b@x.com", "p"}, {"b", "", "p"}, {"b", "b@x.com", ""}} {
			_, _, err := svc.Register(ctx, in[0], in[1], in[2])
			assert.Equal(t, apperr.KindValidation, apperr.From(err).Kind, "input %v", in)
		}
	})

	t.Run("Password over the bcrypt limit", func(t *testing.T) {
		long := make([]byte, 73)
		for i := range long {
			long[i] = 'x'
		}
		_, _, err := svc.Register(ctx, "long", "long@x.com", string(long))
		assert.ErrorIs(t, err, ErrPasswordTooLong)
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	registered, _, err := svc.Register(ctx, "a", "a@x.com", "p")
	require.NoError(t, err)

	t.Run("Valid credentials", func(t *testing.T) {
		user, token, err := svc.Authenticate(ctx, "a@x.com", "p")
		require.NoError(t, err)
		assert.Equal(t, registered.ID, user.ID)

		resolved, err := svc.Resolve(ctx, "Bearer "+token)
		require.NoError(t, err)
		assert.Equal(t, registered.ID, resolved.ID)
	})

	t.Run("Wrong password", func(t *testing.T) {
		_, _, err := svc.Authenticate(ctx, "a@x.com", "wrong")
		assert.Equal(t, ErrInvalidCredentials, err)
	})

	t.Run("Unknown email", func(t *testing.T) {
		_, _, err := svc.Authenticate(ctx, "nobody@x.com", "p")
		assert.Equal(t, ErrInvalidCredentials, err)
	})

	t.Run("Username is not a login", func(t *testing.T) {
		_, _, err := svc.Authenticate(ctx, "a", "p")
		assert.Equal(t, ErrInvalidCredentials, err)
	})

	t.Run("Empty input", func(t *testing.T) {
		_, _, err := svc.Authenticate(ctx, "", "")
		assert.Equal(t, ErrInvalidCredentials, err)
	})
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	alice, aliceToken, err := svc.Register(ctx, "alice", "alice@x.com", "p")
	require.NoError(t, err)
	bob, bobToken, err := svc.Register(ctx, "bob", "bob@x.com", "p")
	require.NoError(t, err)

	t.Run("Each token resolves to its own user", func(t *testing.T) {
		got, err := svc.Resolve(ctx, "Bearer "+aliceToken)
		require.NoError(t, err)
		assert.Equal(t, alice.ID, got.ID)

		got, err = svc.Resolve(ctx, "Bearer "+bobToken)
		require.NoError(t, err)
		assert.Equal(t, bob.ID, got.ID)
	})

	t.Run("Missing header", func(t *testing.T) {
		_, err := svc.Resolve(ctx, "")
		assert.Equal(t, ErrMissingToken, err)
	})

	t.Run("Wrong scheme", func(t *testing.T) {
		_, err := svc.Resolve(ctx, aliceToken)
		assert.Equal(t, ErrMalformedToken, err)
	})

	t.Run("Bad signature", func(t *testing.T) {
		forged, err := NewTokenManager([]byte("attacker"), 0).Issue(alice.ID)
		require.NoError(t, err)
		_, err = svc.Resolve(ctx, "Bearer "+forged)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("User does not exist", func(t *testing.T) {
		ghost, err := NewTokenManager(testSecret, time.Hour).Issue(9999)
		require.NoError(t, err)
		_, err = svc.Resolve(ctx, "Bearer "+ghost)
		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.Equal(t, "Token is invalid", apperr.From(err).Message)
	})
}

type failingUsers struct{ err error }

func (f failingUsers) Create(context.Context, string, string, string) (models.User, error) {
	return models.User{}, f.err
}
func (f failingUsers) ByEmail(context.Context, string) (models.User, error) { return models.User{}, f.err }
func (f failingUsers) ByID(context.Context, int) (models.User, error)      { return models.User{}, f.err }

func TestStorageFailuresAreServerErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("connection reset")
	tokens := NewTokenManager(testSecret, time.Hour)
	svc := NewService(failingUsers{err: boom}, tokens, WithHashCost(bcrypt.MinCost))

	_, _, err := svc.Register(ctx, "a", "a@x.com", "p")
	assert.Equal(t, apperr.KindServer, apperr.From(err).Kind)

	_, _, err = svc.Authenticate(ctx, "a@x.com", "p")
	assert.Equal(t, apperr.KindServer, apperr.From(err).Kind)

	token, err := tokens.Issue(1)
	require.NoError(t, err)
	_, err = svc.Resolve(ctx, "Bearer "+token)
	assert.Equal(t, apperr.KindServer, apperr.From(err).Kind)
}
