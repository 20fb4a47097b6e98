package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"smart-notes/models"
	"smart-notes/respond"
	"smart-notes/store"
)

// NoteStore is implemented by store.NoteStore. Every per-note call is keyed
// by the owner as well as the note id.
type NoteStore interface {
	List(ctx context.Context, userID int) ([]models.Note, error)
	Get(ctx context.Context, userID, noteID int) (models.Note, error)
	Create(ctx context.Context, userID int, in models.NoteInput) (models.Note, error)
	Update(ctx context.Context, userID, noteID int, patch models.NotePatch) (models.Note, error)
	Delete(ctx context.Context, userID, noteID int) error
	Count(ctx context.Context) (int, error)
}

type NoteHandler struct {
	notes NoteStore
	log   logrus.FieldLogger
}

func NewNoteHandler(notes NoteStore, log logrus.FieldLogger) *NoteHandler {
	return &NoteHandler{notes: notes, log: log}
}

type noteResponse struct {
	Message string      `json:"message"`
	Note    models.Note `json:"note"`
}

// noteID reads the {id} URL param. Anything that is not a positive integer
// cannot name a note, so it is reported the same way as a missing one.
func noteID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		return 0, store.ErrNoteNotFound
	}
	return id, nil
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request, user models.User) {
	notes, err := h.notes.List(r.Context(), user.ID)
	if err != nil {
		respond.Error(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, notes)
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request, user models.User) {
	id, err := noteID(r)
	if err != nil {
		respond.Error(w, r, h.log, err)
		return
	}
	note, err := h.notes.Get(r.Context(), user.ID, id)
	if err != nil {
		respond.Error(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, note)
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request, user models.User) {
	var in models.NoteInput
	if err := decode(r, &in); err != nil {
		respond.Error(w, r, h.log, err)
		return
	}

	note, err := h.notes.Create(r.Context(), user.ID, in)
	if err != nil {
		respond.Error(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusCreated, noteResponse{Message: "Note created", Note: note})
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request, user models.User) {
	id, err := noteID(r)
	if err != nil {
		respond.Error(w, r, h.log, err)
		return
	}

	var patch models.NotePatch
	if err := decode(r, &patch); err != nil {
		respond.Error(w, r, h.log, err)
		return
	}

	note, err := h.notes.Update(r.Context(), user.ID, id, patch)
	if err != nil {
		respond.Error(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, noteResponse{Message: "Note updated", Note: note})
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request, user models.User) {
	id, err := noteID(r)
	if err != nil {
		respond.Error(w, r, h.log, err)
		return
	}
	if err := h.notes.Delete(r.Context(), user.ID, id); err != nil {
		respond.Error(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, respond.Message{Message: "Note deleted"})
}

// DBTest reports whether the database answers, along with the note count.
func (h *NoteHandler) DBTest(w http.ResponseWriter, r *http.Request) {
	count, err := h.notes.Count(r.Context())
	if err != nil {
		h.log.WithError(err).Error("db-test failed")
		respond.JSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": err.Error()})
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"success": true, "note_count": count})
}
