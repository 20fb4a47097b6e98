package middleware

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"smart-notes/models"
	"smart-notes/respond"
)

// Resolver maps an Authorization header value to the user it identifies.
type Resolver interface {
	Resolve(ctx context.Context, header string) (models.User, error)
}

// UserHandlerFunc is a handler for routes that need an authenticated user.
type UserHandlerFunc func(w http.ResponseWriter, r *http.Request, user models.User)

// RequireAuth wraps handlers so they only run for requests carrying a valid
// bearer token. The resolved user is handed to the handler as an argument.
func RequireAuth(resolver Resolver, log logrus.FieldLogger) func(UserHandlerFunc) http.HandlerFunc {
	return func(next UserHandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			user, err := resolver.Resolve(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				log.WithError(err).WithField("path", r.URL.Path).Debug("Auth Middleware - rejected request")
				respond.Error(w, r, log, err)
				return
			}
			next(w, r, user)
		}
	}
}
