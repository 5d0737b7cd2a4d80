package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gofrs/uuid/v5"

	"notekeeper/errs"
	"notekeeper/models"
)

// CategoryService defines category operations.
type CategoryService interface {
	ListAll(ctx context.Context) ([]models.Category, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	Create(ctx context.Context, name string) (*models.Category, error)
	Update(ctx context.Context, id uuid.UUID, name string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type CategoryServiceImpl struct {
	cats CategoryRepository
}

// NewCategoryService constructs CategoryService.
func NewCategoryService(cats CategoryRepository) *CategoryServiceImpl {
	return &CategoryServiceImpl{cats: cats}
}

// ListAll returns every category ordered by name.
func (s *CategoryServiceImpl) ListAll(ctx context.Context) ([]models.Category, error) {
	return s.cats.ListCategories(ctx)
}

func (s *CategoryServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return s.cats.GetCategory(ctx, id)
}

// Create trims name and stores a new category. Blank names are a validation
// error; a name already in use is errs.ErrConflict.
func (s *CategoryServiceImpl) Create(ctx context.Context, name string) (*models.Category, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	taken, err := s.cats.CategoryNameTaken(ctx, name, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: a category with that name already exists", errs.ErrConflict)
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	c := &models.Category{ID: id, Name: name}
	if err := s.cats.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Update renames the category with the same rules as Create; the category's
// own current name does not count as a conflict.
func (s *CategoryServiceImpl) Update(ctx context.Context, id uuid.UUID, name string) error {
	name, err := normalizeName(name)
	if err != nil {
		return err
	}
	if _, err := s.cats.GetCategory(ctx, id); err != nil {
		return err
	}
	taken, err := s.cats.CategoryNameTaken(ctx, name, id)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%w: another category with that name already exists", errs.ErrConflict)
	}
	return s.cats.UpdateCategory(ctx, &models.Category{ID: id, Name: name})
}

// Delete removes a category that no note references. A referenced category
// is kept and errs.ErrInUse is returned.
func (s *CategoryServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.cats.GetCategory(ctx, id); err != nil {
		return err
	}
	inUse, err := s.cats.CategoryInUse(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return fmt.Errorf("%w: the category is assigned to one or more notes", errs.ErrInUse)
	}
	return s.cats.DeleteCategory(ctx, id)
}

// MaxNameLen bounds category names and usernames in characters. Both are
// unique keys, which MySQL stores as VARCHAR(255).
const MaxNameLen = 255

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: category name must not be empty", errs.ErrValidation)
	}
	if utf8.RuneCountInString(name) > MaxNameLen {
		return "", fmt.Errorf("%w: category name is longer than %d characters", errs.ErrValidation, MaxNameLen)
	}
	return name, nil
}
