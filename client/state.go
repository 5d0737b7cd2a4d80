package client

import (
	"context"
	"strings"

	"github.com/gofrs/uuid/v5"

	"notekeeper/models"
)

// State is everything a client screen shows. The zero value is the logged
// out state.
type State struct {
	Token          string
	ShowArchived   bool
	Query          string
	CategoryFilter uuid.UUID // uuid.Nil shows every category
	Notes          []models.Note
	Categories     []models.Category
	Flash          string
}

// LoggedIn reports whether a token is held.
func (s *State) LoggedIn() bool { return s.Token != "" }

// Reset clears the state on logout.
func (s *State) Reset() { *s = State{} }

// Fail records msg as the flash message.
func (s *State) Fail(msg string) { s.Flash = msg }

// Visible returns the loaded notes matching Query and CategoryFilter. Query
// matches title or content as a case-insensitive substring.
func (s *State) Visible() []models.Note {
	q := strings.ToLower(s.Query)
	out := make([]models.Note, 0, len(s.Notes))
	for _, n := range s.Notes {
		if q != "" &&
			!strings.Contains(strings.ToLower(n.Title), q) &&
			!strings.Contains(strings.ToLower(n.Content), q) {
			continue
		}
		if s.CategoryFilter != uuid.Nil && !n.HasCategory(s.CategoryFilter) {
			continue
		}
		out = append(out, n)
	}
	return out
}

// CategoryName returns the loaded name of id, or "" when unknown.
func (s *State) CategoryName(id uuid.UUID) string {
	for _, c := range s.Categories {
		if c.ID == id {
			return c.Name
		}
	}
	return ""
}

// NoteCount returns how many loaded notes carry the category.
func (s *State) NoteCount(categoryID uuid.UUID) int {
	n := 0
	for i := range s.Notes {
		if s.Notes[i].HasCategory(categoryID) {
			n++
		}
	}
	return n
}

// Refresh reloads the notes for the current view and the categories. The
// flash message is cleared first and set again on failure.
func (s *State) Refresh(ctx context.Context, c *Client) error {
	s.Flash = ""

	var (
		notes []models.Note
		err   error
	)
	if s.ShowArchived {
		notes, err = c.ArchivedNotes(ctx)
	} else {
		notes, err = c.ActiveNotes(ctx)
	}
	if err != nil {
		s.Fail("error loading notes")
		return err
	}
	cats, err := c.Categories(ctx)
	if err != nil {
		s.Fail("error loading categories")
		return err
	}
	s.Notes, s.Categories = notes, cats
	return nil
}
