package service

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"notekeeper/errs"
	"notekeeper/models"
)

// LinkService manages the note/category association.
type LinkService interface {
	ListForNote(ctx context.Context, noteID uuid.UUID) ([]models.Category, error)
	Add(ctx context.Context, noteID, categoryID uuid.UUID) error
	Remove(ctx context.Context, noteID, categoryID uuid.UUID) error
	Replace(ctx context.Context, noteID uuid.UUID, categoryIDs []uuid.UUID) error
}

type LinkServiceImpl struct {
	links LinkRepository
}

// NewLinkService constructs LinkService.
func NewLinkService(links LinkRepository) *LinkServiceImpl {
	return &LinkServiceImpl{links: links}
}

// ListForNote returns the note's categories, or errs.ErrNotFound for an unknown note.
func (s *LinkServiceImpl) ListForNote(ctx context.Context, noteID uuid.UUID) ([]models.Category, error) {
	return s.links.ListNoteCategories(ctx, noteID)
}

// Add links the category to the note. Both must exist and the pair must not.
func (s *LinkServiceImpl) Add(ctx context.Context, noteID, categoryID uuid.UUID) error {
	ok, err := s.links.NoteExists(ctx, noteID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("note %s: %w", noteID, errs.ErrNotFound)
	}
	ok, err = s.links.CategoryExists(ctx, categoryID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("category %s: %w", categoryID, errs.ErrNotFound)
	}
	ok, err = s.links.LinkExists(ctx, noteID, categoryID)
	if err != nil {
		return err
	}
	if ok {
		return fmt.Errorf("%w: the note already has that category", errs.ErrConflict)
	}
	return s.links.AddLink(ctx, noteID, categoryID)
}

// Remove unlinks the pair, or returns errs.ErrNotFound if it is not linked.
func (s *LinkServiceImpl) Remove(ctx context.Context, noteID, categoryID uuid.UUID) error {
	return s.links.RemoveLink(ctx, noteID, categoryID)
}

// Replace sets the note's categories to exactly categoryIDs in one transaction.
func (s *LinkServiceImpl) Replace(ctx context.Context, noteID uuid.UUID, categoryIDs []uuid.UUID) error {
	return s.links.ReplaceNoteCategories(ctx, noteID, categoryIDs)
}
