package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"notekeeper/client"
	"notekeeper/models"
)

var idPool = func() []uuid.UUID {
	ids := make([]uuid.UUID, 12)
	for i := range ids {
		ids[i] = uuid.Must(uuid.NewV4())
	}
	return ids
}()

func TestDiffProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		desired := rapid.SliceOf(rapid.SampledFrom(idPool)).Draw(t, "desired")
		mask := rapid.SliceOfN(rapid.Bool(), len(idPool), len(idPool)).Draw(t, "existing")
		var existing []uuid.UUID
		for i, in := range mask {
			if in {
				existing = append(existing, idPool[i])
			}
		}

		add, remove := client.Diff(desired, existing)

		for _, id := range add {
			if !slices.Contains(desired, id) || slices.Contains(existing, id) {
				t.Fatalf("add contains %s", id)
			}
		}
		for _, id := range remove {
			if slices.Contains(desired, id) || !slices.Contains(existing, id) {
				t.Fatalf("remove contains %s", id)
			}
		}

		// Applying the diff to existing yields exactly the desired set.
		result := map[uuid.UUID]bool{}
		for _, id := range existing {
			result[id] = true
		}
		for _, id := range remove {
			delete(result, id)
		}
		for _, id := range add {
			if result[id] {
				t.Fatalf("%s added twice", id)
			}
			result[id] = true
		}
		want := map[uuid.UUID]bool{}
		for _, id := range desired {
			want[id] = true
		}
		if len(result) != len(want) {
			t.Fatalf("got %d ids, want %d", len(result), len(want))
		}
		for id := range want {
			if !result[id] {
				t.Fatalf("missing %s", id)
			}
		}
	})
}

func TestDiffKeepsOrder(t *testing.T) {
	a, b, c, d := idPool[0], idPool[1], idPool[2], idPool[3]

	add, remove := client.Diff([]uuid.UUID{c, a, c, b}, []uuid.UUID{d, b})
	assert.Equal(t, []uuid.UUID{c, a}, add)
	assert.Equal(t, []uuid.UUID{d}, remove)

	add, remove = client.Diff(nil, nil)
	assert.Empty(t, add)
	assert.Empty(t, remove)
}

func TestSyncCategories(t *testing.T) {
	c := newServer(t)
	ctx := context.Background()

	note, err := c.CreateNote(ctx, "T", "")
	require.NoError(t, err)
	var ids []uuid.UUID
	for _, name := range []string{"A", "B", "C"} {
		cat, err := c.CreateCategory(ctx, name)
		require.NoError(t, err)
		ids = append(ids, cat.ID)
	}

	require.NoError(t, c.SyncCategories(ctx, note.ID, ids[:2]))
	assertLinked(t, c, note.ID, ids[0], ids[1])

	require.NoError(t, c.SyncCategories(ctx, note.ID, ids[1:]))
	assertLinked(t, c, note.ID, ids[1], ids[2])

	require.NoError(t, c.SyncCategories(ctx, note.ID, nil))
	assertLinked(t, c, note.ID)

	require.NoError(t, c.ReplaceNoteCategories(ctx, note.ID, []uuid.UUID{ids[2], ids[0]}))
	assertLinked(t, c, note.ID, ids[0], ids[2])
}

func TestSyncCategoriesUnknownNote(t *testing.T) {
	c := newServer(t)

	err := c.SyncCategories(context.Background(), uuid.Must(uuid.NewV4()), idPool[:1])
	require.ErrorIs(t, err, client.ErrSync)
	assert.True(t, client.IsNotFound(err))
}

func assertLinked(t *testing.T, c *client.Client, noteID uuid.UUID, want ...uuid.UUID) {
	t.Helper()
	cats, err := c.NoteCategories(context.Background(), noteID)
	require.NoError(t, err)
	got := make([]uuid.UUID, 0, len(cats))
	for _, cat := range cats {
		got = append(got, cat.ID)
	}
	assert.ElementsMatch(t, want, got)
}

// flakyServer serves one note's links in memory. It fails the add for
// failID, and answers as if another client got there first for goneID
// (remove gives 404) and takenID (add gives 409).
type flakyServer struct {
	mu      sync.Mutex
	linked  []uuid.UUID
	failID  uuid.UUID
	goneID  uuid.UUID
	takenID uuid.UUID
	calls   []string
}

func (s *flakyServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, r.Method)

	switch r.Method {
	case http.MethodGet:
		cats := make([]models.Category, 0, len(s.linked))
		for _, id := range s.linked {
			cats = append(cats, models.Category{ID: id})
		}
		_ = json.NewEncoder(w).Encode(cats)
	case http.MethodDelete:
		id := uuid.FromStringOrNil(r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:])
		s.linked = slices.DeleteFunc(s.linked, func(x uuid.UUID) bool { return x == id })
		if id == s.goneID {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case http.MethodPost:
		var body struct {
			CategoryID uuid.UUID `json:"categoryId"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.CategoryID == s.failID {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		s.linked = append(s.linked, body.CategoryID)
		if body.CategoryID == s.takenID {
			http.Error(w, "conflict", http.StatusConflict)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func TestSyncCategoriesStopsAtFirstFailure(t *testing.T) {
	a, b, c, d := idPool[0], idPool[1], idPool[2], idPool[3]
	fs := &flakyServer{linked: []uuid.UUID{a}, failID: c}
	srv := httptest.NewServer(fs)
	defer srv.Close()

	cl := client.New(srv.URL, srv.Client())
	err := cl.SyncCategories(context.Background(), uuid.Must(uuid.NewV4()), []uuid.UUID{b, c, d})

	require.ErrorIs(t, err, client.ErrSync)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)

	// a was removed and b added before c failed; d was never attempted.
	assert.Equal(t, []uuid.UUID{b}, fs.linked)
	assert.Equal(t, []string{http.MethodGet, http.MethodDelete, http.MethodPost, http.MethodPost}, fs.calls)
}

func TestSyncCategoriesToleratesConcurrentChanges(t *testing.T) {
	a, b, c, d := idPool[0], idPool[1], idPool[2], idPool[3]
	fs := &flakyServer{linked: []uuid.UUID{a, b}, goneID: a, takenID: c}
	srv := httptest.NewServer(fs)
	defer srv.Close()

	cl := client.New(srv.URL, srv.Client())
	err := cl.SyncCategories(context.Background(), uuid.Must(uuid.NewV4()), []uuid.UUID{c, d})
	require.NoError(t, err)

	assert.ElementsMatch(t, []uuid.UUID{c, d}, fs.linked)
	assert.Equal(t, []string{
		http.MethodGet,
		http.MethodDelete, http.MethodDelete,
		http.MethodPost, http.MethodPost,
	}, fs.calls)
}

func TestSyncCategoriesNotFoundOnAddFails(t *testing.T) {
	// A 404 on add means the category or note is gone, not that the link exists.
	a := idPool[0]
	fs := &flakyServer{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		fs.ServeHTTP(w, r)
	}))
	defer srv.Close()

	cl := client.New(srv.URL, srv.Client())
	err := cl.SyncCategories(context.Background(), uuid.Must(uuid.NewV4()), []uuid.UUID{a})
	require.ErrorIs(t, err, client.ErrSync)
	assert.True(t, client.IsNotFound(err))
}
