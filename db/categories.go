package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gofrs/uuid/v5"

	"notekeeper/errs"
	"notekeeper/models"
)

// ListCategories returns all categories ordered by name.
func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.query(ctx, s.db, "SELECT id, name FROM categories ORDER BY name ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cats := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// GetCategory loads a category by id.
func (s *Store) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var c models.Category
	err := s.queryRow(ctx, s.db, "SELECT id, name FROM categories WHERE id = ?", id).Scan(&c.ID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CategoryNameTaken reports whether another category (id != exclude) has name.
func (s *Store) CategoryNameTaken(ctx context.Context, name string, exclude uuid.UUID) (bool, error) {
	n, err := s.count(ctx, s.db, "SELECT COUNT(*) FROM categories WHERE name = ? AND id <> ?", name, exclude)
	return n > 0, err
}

// CreateCategory inserts c. A concurrent insert of the same name surfaces as ErrConflict.
func (s *Store) CreateCategory(ctx context.Context, c *models.Category) error {
	_, err := s.exec(ctx, s.db, "INSERT INTO categories (id, name) VALUES (?, ?)", c.ID, c.Name)
	if isUniqueViolation(err) {
		return errs.ErrConflict
	}
	return err
}

// UpdateCategory renames c.
func (s *Store) UpdateCategory(ctx context.Context, c *models.Category) error {
	res, err := s.exec(ctx, s.db, "UPDATE categories SET name = ? WHERE id = ?", c.Name, c.ID)
	if isUniqueViolation(err) {
		return errs.ErrConflict
	}
	if err != nil {
		return err
	}
	return affectedOne(res, errs.ErrNotFound)
}

// CategoryInUse reports whether any link references the category.
func (s *Store) CategoryInUse(ctx context.Context, id uuid.UUID) (bool, error) {
	n, err := s.count(ctx, s.db, "SELECT COUNT(*) FROM note_categories WHERE category_id = ?", id)
	return n > 0, err
}

// DeleteCategory removes an unreferenced category. The restricting foreign key
// turns a link added after the caller's usage check into ErrInUse.
func (s *Store) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	res, err := s.exec(ctx, s.db, "DELETE FROM categories WHERE id = ?", id)
	if isForeignKeyViolation(err) {
		return errs.ErrInUse
	}
	if err != nil {
		return err
	}
	return affectedOne(res, errs.ErrNotFound)
}

// CategoryExists reports whether a category with id exists.
func (s *Store) CategoryExists(ctx context.Context, id uuid.UUID) (bool, error) {
	n, err := s.count(ctx, s.db, "SELECT COUNT(*) FROM categories WHERE id = ?", id)
	return n > 0, err
}
