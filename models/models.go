package models

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash []byte    `json:"-"`
	PasswordSalt []byte    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Note struct {
	ID             uuid.UUID      `json:"id"`
	Title          string         `json:"title"`
	Content        string         `json:"content"`
	Archived       bool           `json:"archived"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	NoteCategories []NoteCategory `json:"noteCategories"`
}

type Category struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// NoteCategory links one note to one category. The pair is unique.
type NoteCategory struct {
	NoteID     uuid.UUID `json:"noteId"`
	CategoryID uuid.UUID `json:"categoryId"`
	Category   Category  `json:"category"`
}

// CategoryIDs returns the ids of the categories linked to the note.
func (n *Note) CategoryIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(n.NoteCategories))
	for _, nc := range n.NoteCategories {
		ids = append(ids, nc.CategoryID)
	}
	return ids
}

// HasCategory reports whether the note is linked to the category.
func (n *Note) HasCategory(id uuid.UUID) bool {
	for _, nc := range n.NoteCategories {
		if nc.CategoryID == id {
			return true
		}
	}
	return false
}
