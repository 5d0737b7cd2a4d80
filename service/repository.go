// Package service contains the application services for authentication,
// notes, categories and note/category links.
package service

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"

	"notekeeper/models"
)

// UserRepository provides access to stored users.
type UserRepository interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// NoteRepository provides access to stored notes.
type NoteRepository interface {
	ListNotes(ctx context.Context, archived bool) ([]models.Note, error)
	GetNote(ctx context.Context, id uuid.UUID) (*models.Note, error)
	CreateNote(ctx context.Context, n *models.Note) error
	UpdateNote(ctx context.Context, n *models.Note) error
	// SetArchived must be a single conditional update; ErrNotFound when no row matched.
	SetArchived(ctx context.Context, id uuid.UUID, archived bool, at time.Time) error
	DeleteNote(ctx context.Context, id uuid.UUID) error
}

// CategoryRepository provides access to stored categories.
type CategoryRepository interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error)
	CategoryNameTaken(ctx context.Context, name string, exclude uuid.UUID) (bool, error)
	CreateCategory(ctx context.Context, c *models.Category) error
	UpdateCategory(ctx context.Context, c *models.Category) error
	CategoryInUse(ctx context.Context, id uuid.UUID) (bool, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

// LinkRepository provides access to note/category links.
type LinkRepository interface {
	NoteExists(ctx context.Context, id uuid.UUID) (bool, error)
	CategoryExists(ctx context.Context, id uuid.UUID) (bool, error)
	LinkExists(ctx context.Context, noteID, categoryID uuid.UUID) (bool, error)
	ListNoteCategories(ctx context.Context, noteID uuid.UUID) ([]models.Category, error)
	AddLink(ctx context.Context, noteID, categoryID uuid.UUID) error
	RemoveLink(ctx context.Context, noteID, categoryID uuid.UUID) error
	ReplaceNoteCategories(ctx context.Context, noteID uuid.UUID, categoryIDs []uuid.UUID) error
}

// Clock returns the current time. Services store it in UTC at microsecond
// precision, the finest all supported databases keep.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC().Truncate(time.Microsecond)
	}
	return c().UTC().Truncate(time.Microsecond)
}
