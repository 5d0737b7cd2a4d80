package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notekeeper/auth"
	"notekeeper/config"
	"notekeeper/db"
	"notekeeper/errs"
	"notekeeper/service"
)

func TestAddUser(t *testing.T) {
	cfg := config.Config{
		DBDriver:  db.DriverSQLite,
		DSN:       filepath.Join(t.TempDir(), "users.db"),
		JWTSecret: "useradd-secret",
		JWTIssuer: "notekeeper",
		TokenTTL:  time.Hour,
	}
	ctx := context.Background()

	require.NoError(t, addUser(ctx, cfg, "admin", "1234"))
	require.ErrorIs(t, addUser(ctx, cfg, "admin", "other"), errs.ErrConflict)
	require.ErrorIs(t, addUser(ctx, cfg, " ", "x"), errs.ErrValidation)

	store, err := db.Open(ctx, cfg.DBDriver, cfg.DSN)
	require.NoError(t, err)
	defer store.Close()

	tokens := auth.NewTokens([]byte(cfg.JWTSecret), cfg.JWTIssuer, "", cfg.TokenTTL)
	token, _, err := service.NewAuthService(store, tokens).Login(ctx, "admin", "1234")
	require.NoError(t, err)
	require.NotEmpty(t, token)
}

func TestParseArgs(t *testing.T) {
	for _, k := range []string{"JWT_SECRET", "DSN", "DB_DRIVER", "TOKEN_TTL"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	envFile := filepath.Join(t.TempDir(), "missing.env")
	dsn := filepath.Join(t.TempDir(), "users.db")

	cfg, user, pass, err := parseArgs([]string{"-db-driver", "sqlite3", "-u", "admin", "-dsn", dsn, "-p", "1234"}, envFile)
	require.NoError(t, err)
	assert.Equal(t, "admin", user)
	assert.Equal(t, "1234", pass)
	assert.Equal(t, db.DriverSQLite, cfg.DBDriver)
	assert.Equal(t, dsn, cfg.DSN)
	assert.Empty(t, cfg.JWTSecret)
	require.NoError(t, addUser(context.Background(), cfg, user, pass))

	_, _, _, err = parseArgs([]string{"-u", "admin", "-db-driver", "sqlite3", "-dsn", dsn}, envFile)
	require.EqualError(t, err, usage)
	_, _, _, err = parseArgs([]string{"-u", "admin", "-p", "x", "extra"}, envFile)
	require.EqualError(t, err, usage)
	_, _, _, err = parseArgs([]string{"-u", "admin", "-p", "x"}, envFile)
	require.ErrorContains(t, err, "DSN is required")
}
