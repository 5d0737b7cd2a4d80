// Package dbtest provides a migrated SQLite store for tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"notekeeper/db"
)

// New opens a fresh SQLite database in a temporary directory, applies the
// migrations and closes it when the test ends.
func New(t testing.TB) *db.Store {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "notes.db")
	store, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return store
}
