package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"-"`
}

type Note struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      Tags      `json:"tags"`
	Pinned    bool      `json:"pinned"`
	UserID    int       `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// NoteInput is the body of a create request. Absent fields stay zero.
type NoteInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Tags    Tags   `json:"tags"`
	Pinned  bool   `json:"pinned"`
}

// NotePatch is the body of an update request. A nil field is left untouched.
type NotePatch struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
	Tags    *Tags   `json:"tags"`
	Pinned  *bool   `json:"pinned"`
}

// Empty reports whether the patch changes nothing.
func (p NotePatch) Empty() bool {
	return p.Title == nil && p.Content == nil && p.Tags == nil && p.Pinned == nil
}

// Tags is free-form text. Clients may also send a list of strings, which is
// stored comma separated.
type Tags string

func (t *Tags) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = Tags(s)
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("tags must be a string or a list of strings")
	}
	parts := make([]string, 0, len(list))
	for _, tag := range list {
		if tag = strings.TrimSpace(tag); tag != "" {
			parts = append(parts, tag)
		}
	}
	*t = Tags(strings.Join(parts, ", "))
	return nil
}
