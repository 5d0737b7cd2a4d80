package db

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed migrations
var migrations embed.FS

// Migrate applies all pending embedded migrations for the store's dialect.
func (s *Store) Migrate(ctx context.Context) error {
	var (
		dialect goose.Dialect
		dir     string
	)
	switch s.driver {
	case DriverMySQL:
		dialect, dir = goose.DialectMySQL, "mysql"
	case DriverSQLite:
		dialect, dir = goose.DialectSQLite3, "sqlite3"
	case DriverPostgres:
		dialect, dir = goose.DialectPostgres, "postgres"
	default:
		return fmt.Errorf("no migrations for driver %q", s.driver)
	}

	fsys, err := fs.Sub(migrations, "migrations/"+dir)
	if err != nil {
		return err
	}
	provider, err := goose.NewProvider(dialect, s.db, fsys)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}
