package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"notekeeper/errs"
	"notekeeper/models"
)

func (s *Store) noteCategories(ctx context.Context, q querier, noteID uuid.UUID) ([]models.Category, error) {
	rows, err := s.query(ctx, q, `
SELECT c.id, c.name
FROM note_categories nc
JOIN categories c ON c.id = nc.category_id
WHERE nc.note_id = ?
ORDER BY c.name`, noteID)
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

// ListNoteCategories returns the categories linked to the note, or ErrNotFound
// when the note does not exist.
func (s *Store) ListNoteCategories(ctx context.Context, noteID uuid.UUID) ([]models.Category, error) {
	ok, err := s.NoteExists(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.ErrNotFound
	}
	return s.noteCategories(ctx, s.db, noteID)
}

// LinkExists reports whether the (note, category) pair is stored.
func (s *Store) LinkExists(ctx context.Context, noteID, categoryID uuid.UUID) (bool, error) {
	n, err := s.count(ctx, s.db,
		"SELECT COUNT(*) FROM note_categories WHERE note_id = ? AND category_id = ?", noteID, categoryID)
	return n > 0, err
}

// AddLink stores the pair. A duplicate pair yields ErrConflict and a missing
// note or category yields ErrNotFound.
func (s *Store) AddLink(ctx context.Context, noteID, categoryID uuid.UUID) error {
	_, err := s.exec(ctx, s.db,
		"INSERT INTO note_categories (note_id, category_id) VALUES (?, ?)", noteID, categoryID)
	switch {
	case isUniqueViolation(err):
		return errs.ErrConflict
	case isForeignKeyViolation(err):
		return errs.ErrNotFound
	}
	return err
}

// RemoveLink deletes the pair, or returns ErrNotFound if it is not stored.
func (s *Store) RemoveLink(ctx context.Context, noteID, categoryID uuid.UUID) error {
	res, err := s.exec(ctx, s.db,
		"DELETE FROM note_categories WHERE note_id = ? AND category_id = ?", noteID, categoryID)
	if err != nil {
		return err
	}
	return affectedOne(res, errs.ErrNotFound)
}

// ReplaceNoteCategories makes the note's links equal to categoryIDs inside a
// single transaction. Either every change is applied or none is.
func (s *Store) ReplaceNoteCategories(ctx context.Context, noteID uuid.UUID, categoryIDs []uuid.UUID) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	n, err := s.count(ctx, tx, "SELECT COUNT(*) FROM notes WHERE id = ?", noteID)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("note %s: %w", noteID, errs.ErrNotFound)
	}

	want := make(map[uuid.UUID]struct{}, len(categoryIDs))
	for _, id := range categoryIDs {
		if _, dup := want[id]; dup {
			continue
		}
		n, err := s.count(ctx, tx, "SELECT COUNT(*) FROM categories WHERE id = ?", id)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("category %s: %w", id, errs.ErrNotFound)
		}
		want[id] = struct{}{}
	}

	existing, err := s.noteCategories(ctx, tx, noteID)
	if err != nil {
		return err
	}
	have := make(map[uuid.UUID]struct{}, len(existing))
	for _, c := range existing {
		have[c.ID] = struct{}{}
		if _, keep := want[c.ID]; keep {
			continue
		}
		if _, err := s.exec(ctx, tx,
			"DELETE FROM note_categories WHERE note_id = ? AND category_id = ?", noteID, c.ID); err != nil {
			return err
		}
	}
	for _, id := range categoryIDs {
		if _, ok := have[id]; ok {
			continue
		}
		have[id] = struct{}{}
		if _, err := s.exec(ctx, tx,
			"INSERT INTO note_categories (note_id, category_id) VALUES (?, ?)", noteID, id); err != nil {
			if isForeignKeyViolation(err) {
				return errs.ErrNotFound
			}
			return err
		}
	}
	return tx.Commit()
}

var _ querier = (*sql.Tx)(nil)
