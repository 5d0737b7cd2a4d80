package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"
)

// ErrSync wraps the first failing call of SyncCategories.
var ErrSync = errors.New("error syncing")

// Diff returns the ids to add (desired but not existing) and to remove
// (existing but not desired). Both keep the order of their input and contain
// no duplicates.
func Diff(desired, existing []uuid.UUID) (add, remove []uuid.UUID) {
	want := make(map[uuid.UUID]bool, len(desired))
	for _, id := range desired {
		want[id] = true
	}
	have := make(map[uuid.UUID]bool, len(existing))
	for _, id := range existing {
		have[id] = true
	}

	seen := make(map[uuid.UUID]bool, len(desired)+len(existing))
	for _, id := range desired {
		if !have[id] && !seen[id] {
			add = append(add, id)
			seen[id] = true
		}
	}
	for _, id := range existing {
		if !want[id] && !seen[id] {
			remove = append(remove, id)
			seen[id] = true
		}
	}
	return add, remove
}

// SyncCategories makes the note's categories equal to desired with one call
// per change: removals first, then additions. A removal answered with 404 or
// an addition answered with 409 already has the wanted outcome and counts as
// done. Any other failure stops the sync, so earlier changes stay applied.
func (c *Client) SyncCategories(ctx context.Context, noteID uuid.UUID, desired []uuid.UUID) error {
	existing, err := c.NoteCategories(ctx, noteID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSync, err)
	}
	ids := make([]uuid.UUID, 0, len(existing))
	for _, cat := range existing {
		ids = append(ids, cat.ID)
	}

	add, remove := Diff(desired, ids)
	for _, id := range remove {
		if err := c.RemoveNoteCategory(ctx, noteID, id); err != nil && !IsNotFound(err) {
			return fmt.Errorf("%w: remove %s: %w", ErrSync, id, err)
		}
	}
	for _, id := range add {
		if err := c.AddNoteCategory(ctx, noteID, id); err != nil && !IsConflict(err) {
			return fmt.Errorf("%w: add %s: %w", ErrSync, id, err)
		}
	}
	return nil
}
