package main

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"smart-notes/auth"
	"smart-notes/config"
	"smart-notes/handlers"
	appmw "smart-notes/middleware"
	"smart-notes/respond"
	"smart-notes/store"
)

func newRouter(cfg config.Config, database *sql.DB, log *logrus.Logger) http.Handler {
	authSvc := auth.NewService(store.NewUserStore(database), auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL))
	authH := handlers.NewAuthHandler(authSvc, log)
	notesH := handlers.NewNoteHandler(store.NewNoteStore(database), log)
	protect := appmw.RequireAuth(authSvc, log)

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(appmw.RequestLogger(log))
	r.Use(chimw.Recoverer)
	r.Use(appmw.CORS(cfg.CORSOrigins))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusNotFound, respond.Message{Message: "Not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusMethodNotAllowed, respond.Message{Message: "Method not allowed"})
	})

	api := func(r chi.Router) {
		r.Post("/signup", authH.Signup)
		r.Post("/login", authH.Login)
		r.Get("/db-test", notesH.DBTest)

		r.Get("/notes", protect(notesH.List))
		r.Post("/notes", protect(notesH.Create))
		r.Get("/notes/{id}", protect(notesH.Get))
		r.Put("/notes/{id}", protect(notesH.Update))
		r.Delete("/notes/{id}", protect(notesH.Delete))
	}

	if cfg.APIPrefix == "" {
		api(r)
	} else {
		r.Route(cfg.APIPrefix, api)
	}
	return r
}
