package service

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"notekeeper/models"
)

// NoteService defines note operations.
type NoteService interface {
	ListActive(ctx context.Context) ([]models.Note, error)
	ListArchived(ctx context.Context) ([]models.Note, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Note, error)
	Create(ctx context.Context, title, content string) (*models.Note, error)
	Update(ctx context.Context, id uuid.UUID, title, content string, archived bool) error
	Delete(ctx context.Context, id uuid.UUID) error
	Archive(ctx context.Context, id uuid.UUID) error
	Unarchive(ctx context.Context, id uuid.UUID) error
}

type NoteServiceImpl struct {
	notes NoteRepository
	clock Clock
}

// NewNoteService constructs NoteService. A nil clock uses time.Now.
func NewNoteService(notes NoteRepository, clock Clock) *NoteServiceImpl {
	return &NoteServiceImpl{notes: notes, clock: clock}
}

// ListActive returns the non-archived notes with their links.
func (s *NoteServiceImpl) ListActive(ctx context.Context) ([]models.Note, error) {
	return s.notes.ListNotes(ctx, false)
}

// ListArchived returns the archived notes with their links.
func (s *NoteServiceImpl) ListArchived(ctx context.Context) ([]models.Note, error) {
	return s.notes.ListNotes(ctx, true)
}

func (s *NoteServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Note, error) {
	return s.notes.GetNote(ctx, id)
}

// Create stores a new active note with a server generated id.
func (s *NoteServiceImpl) Create(ctx context.Context, title, content string) (*models.Note, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	now := s.clock.now()
	n := &models.Note{
		ID:             id,
		Title:          title,
		Content:        content,
		CreatedAt:      now,
		UpdatedAt:      now,
		NoteCategories: []models.NoteCategory{},
	}
	if err := s.notes.CreateNote(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// Update overwrites title, content and archived. Concurrent updates are last
// write wins; category links are not touched.
func (s *NoteServiceImpl) Update(ctx context.Context, id uuid.UUID, title, content string, archived bool) error {
	return s.notes.UpdateNote(ctx, &models.Note{
		ID:        id,
		Title:     title,
		Content:   content,
		Archived:  archived,
		UpdatedAt: s.clock.now(),
	})
}

// Delete removes the note and its links.
func (s *NoteServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return s.notes.DeleteNote(ctx, id)
}

func (s *NoteServiceImpl) Archive(ctx context.Context, id uuid.UUID) error {
	return s.notes.SetArchived(ctx, id, true, s.clock.now())
}

func (s *NoteServiceImpl) Unarchive(ctx context.Context, id uuid.UUID) error {
	return s.notes.SetArchived(ctx, id, false, s.clock.now())
}
