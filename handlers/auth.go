package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"smart-notes/apperr"
	"smart-notes/models"
	"smart-notes/respond"
)

// Authenticator is the part of auth.Service the signup and login routes use.
type Authenticator interface {
	Register(ctx context.Context, username, email, password string) (models.User, string, error)
	Authenticate(ctx context.Context, email, password string) (models.User, string, error)
}

type AuthHandler struct {
	auth Authenticator
	log  logrus.FieldLogger
}

func NewAuthHandler(auth Authenticator, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

var errBadBody = apperr.Validation("Invalid request body")

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errBadBody
	}
	return nil
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decode(r, &req); err != nil {
		respond.Error(w, r, h.log, err)
		return
	}

	user, token, err := h.auth.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		respond.Error(w, r, h.log, err)
		return
	}

	h.log.WithField("user_id", user.ID).Info("user signed up")
	respond.JSON(w, http.StatusCreated, authResponse{Token: token, User: user})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		respond.Error(w, r, h.log, err)
		return
	}

	user, token, err := h.auth.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		respond.Error(w, r, h.log, err)
		return
	}

	respond.JSON(w, http.StatusOK, authResponse{Token: token, User: user})
}
