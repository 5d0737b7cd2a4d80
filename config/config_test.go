package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notekeeper/db"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"HTTP_ADDR", "DB_DRIVER", "DSN", "JWT_SECRET", "JWT_ISSUER",
		"JWT_AUDIENCE", "TOKEN_TTL", "CORS_ORIGIN", "LOG_LEVEL", "APP_ENV"} {
		// Setenv registers the restore; godotenv never overrides keys that exist.
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DSN", "user:pass@tcp(localhost:3306)/notes")

	cfg, err := Load(nil, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, ":3002", cfg.Addr)
	assert.Equal(t, db.DriverMySQL, cfg.DBDriver)
	assert.Equal(t, "notekeeper", cfg.JWTIssuer)
	assert.Equal(t, "notekeeper", cfg.JWTAudience)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "*", cfg.CORSOrigin)
	assert.False(t, cfg.Development())
}

func TestLoad_EnvFileAndFlags(t *testing.T) {
	clearEnv(t)
	envFile := filepath.Join(t.TempDir(), ".env.test")
	require.NoError(t, os.WriteFile(envFile, []byte(
		"JWT_SECRET=from-file\nDSN=notes.db\nDB_DRIVER=sqlite3\nTOKEN_TTL=30m\nJWT_ISSUER=notes\nAPP_ENV=development\n"), 0o600))

	cfg, err := Load([]string{"-addr", ":9000", "-jwt-audience", "web"}, envFile)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, db.DriverSQLite, cfg.DBDriver)
	assert.True(t, cfg.Development())
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, "notes", cfg.JWTIssuer)
	assert.Equal(t, "web", cfg.JWTAudience)
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", "oracle")

	_, err := Load(nil, filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET is required")
	assert.Contains(t, err.Error(), "DSN is required")
	assert.Contains(t, err.Error(), `unsupported DB_DRIVER "oracle"`)
}

func TestLoad_InvalidTokenTTL(t *testing.T) {
	for _, raw := range []string{"nonsense", "-5m", "0s"} {
		t.Run(raw, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("JWT_SECRET", "s3cret")
			t.Setenv("DSN", "notes.db")
			t.Setenv("TOKEN_TTL", raw)

			_, err := Load(nil, filepath.Join(t.TempDir(), "missing.env"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "TOKEN_TTL")

			// An explicit flag replaces the bad value.
			cfg, err := Load([]string{"-token-ttl", "10m"}, filepath.Join(t.TempDir(), "missing.env"))
			require.NoError(t, err)
			assert.Equal(t, 10*time.Minute, cfg.TokenTTL)
		})
	}
}

func TestParse_CallerFlags(t *testing.T) {
	clearEnv(t)
	t.Setenv("DSN", "notes.db")
	t.Setenv("DB_DRIVER", "sqlite3")

	fs := flag.NewFlagSet("tool", flag.ContinueOnError)
	user := fs.String("u", "", "username")
	cfg, err := Parse(fs, []string{"-dsn", "other.db", "-u", "admin"}, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "admin", *user)
	assert.Equal(t, "other.db", cfg.DSN)

	// No JWT_SECRET: fine for the store, not for the server.
	require.NoError(t, cfg.ValidateStore())
	require.ErrorContains(t, cfg.Validate(), "JWT_SECRET is required")
}

func TestParseTTL(t *testing.T) {
	d, err := parseTTL("", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, d)

	d, err = parseTTL(" 5m ", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, d)

	_, err = parseTTL("nonsense", time.Hour)
	require.Error(t, err)
	_, err = parseTTL("-5m", time.Hour)
	require.Error(t, err)
}
