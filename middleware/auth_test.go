package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"smart-notes/auth"
	"smart-notes/db"
	"smart-notes/models"
	"smart-notes/store"
)

var jwtSecret = []byte("middleware-test-secret")

func newTestResolver(t *testing.T) (*auth.Service, models.User) {
	t.Helper()
	conn, err := db.Connect(context.Background(), db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	svc := auth.NewService(store.NewUserStore(conn), auth.NewTokenManager(jwtSecret, 24*time.Hour),
		auth.WithHashCost(bcrypt.MinCost))
	user, _, err := svc.Register(context.Background(), "mw", "mw@example.com", "password")
	require.NoError(t, err)
	return svc, user
}

func createTestToken(t *testing.T, userID int, expiresAt time.Time) string {
	t.Helper()
	claims := auth.Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret)
	require.NoError(t, err)
	return signed
}

func TestRequireAuth(t *testing.T) {
	resolver, user := newTestResolver(t)
	log, _ := test.NewNullLogger()
	protect := RequireAuth(resolver, log)

	var called bool
	var seen models.User
	handler := protect(func(w http.ResponseWriter, r *http.Request, u models.User) {
		called = true
		seen = u
		w.WriteHeader(http.StatusOK)
	})

	serve := func(header string) *httptest.ResponseRecorder {
		called = false
		seen = models.User{}
		req := httptest.NewRequest(http.MethodGet, "/api/notes", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	message := func(rr *httptest.ResponseRecorder) string {
		var body map[string]string
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		return body["message"]
	}

	t.Run("Valid token", func(t *testing.T) {
		rr := serve("Bearer " + createTestToken(t, user.ID, time.Now().Add(time.Hour)))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, called)
	})

	t.Run("Identity is passed to the handler", func(t *testing.T) {
		serve("Bearer " + createTestToken(t, user.ID, time.Now().Add(time.Hour)))
		require.True(t, called)
		assert.Equal(t, user.ID, seen.ID)
		assert.Equal(t, "mw", seen.Username)
		assert.Equal(t, "mw@example.com", seen.Email)
	})

	t.Run("Missing Authorization header", func(t *testing.T) {
		rr := serve("")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "Token is missing", message(rr))
		assert.False(t, called)
	})

	t.Run("Invalid token format", func(t *testing.T) {
		rr := serve("InvalidToken")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.False(t, called)
	})

	t.Run("Expired token", func(t *testing.T) {
		rr := serve("Bearer " + createTestToken(t, user.ID, time.Now().Add(-24*time.Hour)))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "Token is invalid", message(rr))
		assert.False(t, called)
	})

	t.Run("Token with wrong signature", func(t *testing.T) {
		parts := strings.Split(createTestToken(t, user.ID, time.Now().Add(time.Hour)), ".")
		require.Len(t, parts, 3)
		first := "X"
		if strings.HasPrefix(parts[2], "X") {
			first = "Y"
		}
		tampered := parts[0] + "." + parts[1] + "." + first + parts[2][1:]

		rr := serve("Bearer " + tampered)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.False(t, called)
	})

	t.Run("Token for a user that does not exist", func(t *testing.T) {
		rr := serve("Bearer " + createTestToken(t, user.ID+100, time.Now().Add(time.Hour)))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "Token is invalid", message(rr))
		assert.False(t, called)
	})
}
