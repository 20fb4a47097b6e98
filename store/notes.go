package store

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"smart-notes/apperr"
	"smart-notes/models"
)

// ErrNoteNotFound covers both a missing note and a note owned by someone
// else, so callers cannot probe for other users' ids.
var ErrNoteNotFound = apperr.NotFound("Note not found")

const noteColumns = "id, title, content, tags, pinned, user_id, created_at"

// NoteStore scopes every query to the owning user.
type NoteStore struct {
	db *sql.DB
}

func NewNoteStore(db *sql.DB) *NoteStore {
	return &NoteStore{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (models.Note, error) {
	var n models.Note
	var tags string
	err := row.Scan(&n.ID, &n.Title, &n.Content, &tags, &n.Pinned, &n.UserID, timestamp{&n.CreatedAt})
	n.Tags = models.Tags(tags)
	return n, err
}

// List returns the user's notes in insertion order.
func (s *NoteStore) List(ctx context.Context, userID int) ([]models.Note, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+noteColumns+" FROM notes WHERE user_id = ? ORDER BY id ASC", userID)
	if err != nil {
		return nil, errors.Wrap(err, "list notes")
	}
	defer rows.Close()

	notes := []models.Note{}
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan note")
		}
		notes = append(notes, note)
	}
	return notes, errors.Wrap(rows.Err(), "list notes")
}

func (s *NoteStore) Get(ctx context.Context, userID, noteID int) (models.Note, error) {
	return getNote(ctx, s.db, userID, noteID)
}

func (s *NoteStore) Create(ctx context.Context, userID int, in models.NoteInput) (models.Note, error) {
	note := models.Note{
		Title:     in.Title,
		Content:   in.Content,
		Tags:      in.Tags,
		Pinned:    in.Pinned,
		UserID:    userID,
		CreatedAt: now(),
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO notes (title, content, tags, pinned, user_id, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		note.Title, note.Content, string(note.Tags), note.Pinned, userID, note.CreatedAt,
	)
	if err != nil {
		return models.Note{}, errors.Wrap(err, "insert note")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Note{}, errors.Wrap(err, "note id")
	}
	note.ID = int(id)
	return note, nil
}

// Update overwrites only the fields set in patch. The statement matches on
// id and owner together; the re-read under the same predicate tells a hit
// from a miss.
func (s *NoteStore) Update(ctx context.Context, userID, noteID int, patch models.NotePatch) (models.Note, error) {
	var note models.Note
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`UPDATE notes SET
				title = COALESCE(?, title),
				content = COALESCE(?, content),
				tags = COALESCE(?, tags),
				pinned = COALESCE(?, pinned)
			WHERE id = ? AND user_id = ?`,
			optional(patch.Title), optional(patch.Content), optionalTags(patch.Tags), optional(patch.Pinned),
			noteID, userID,
		)
		if err != nil {
			return errors.Wrap(err, "update note")
		}
		note, err = getNote(ctx, tx, userID, noteID)
		return err
	})
	if err != nil {
		return models.Note{}, err
	}
	return note, nil
}

func (s *NoteStore) Delete(ctx context.Context, userID, noteID int) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM notes WHERE id = ? AND user_id = ?", noteID, userID)
	if err != nil {
		return errors.Wrap(err, "delete note")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "delete note")
	}
	if affected == 0 {
		return ErrNoteNotFound
	}
	return nil
}

// Count is the number of notes across all users.
func (s *NoteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM notes").Scan(&count)
	return count, errors.Wrap(err, "count notes")
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getNote(ctx context.Context, q queryer, userID, noteID int) (models.Note, error) {
	note, err := scanNote(q.QueryRowContext(ctx,
		"SELECT "+noteColumns+" FROM notes WHERE id = ? AND user_id = ?", noteID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Note{}, ErrNoteNotFound
	}
	if err != nil {
		return models.Note{}, errors.Wrap(err, "get note")
	}
	return note, nil
}

// optional turns an unset field into SQL NULL so COALESCE keeps the column.
func optional[T string | bool](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}

func optionalTags(v *models.Tags) any {
	if v == nil {
		return nil
	}
	return string(*v)
}
