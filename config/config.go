// Package config loads server settings from .env, the environment and flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"notekeeper/db"
)

// Config keeps runtime settings for the API server.
type Config struct {
	Addr        string
	DBDriver    string
	DSN         string
	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
	TokenTTL    time.Duration
	CORSOrigin  string
	LogLevel    string
	Env         string
}

// EnvDevelopment is the APP_ENV value that selects development logging.
const EnvDevelopment = "development"

// Development reports whether APP_ENV asks for development mode.
func (c Config) Development() bool { return c.Env == EnvDevelopment }

// Load reads .env files (if any), then the environment, then command-line
// flags from args. Later sources override earlier ones. The result must pass
// Validate.
func Load(args []string, envFiles ...string) (Config, error) {
	cfg, err := Parse(flag.NewFlagSet("notekeeper", flag.ContinueOnError), args, envFiles...)
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Parse is Load without validation. The server flags are registered on fs,
// which may already hold the caller's own flags.
func Parse(fs *flag.FlagSet, args []string, envFiles ...string) (Config, error) {
	// Missing .env files are not an error; the environment may be set directly.
	_ = godotenv.Load(envFiles...)

	ttl, ttlErr := parseTTL(os.Getenv("TOKEN_TTL"), 2*time.Hour)
	cfg := Config{
		Addr:        envOr("HTTP_ADDR", ":3002"),
		DBDriver:    envOr("DB_DRIVER", db.DriverMySQL),
		DSN:         strings.TrimSpace(os.Getenv("DSN")),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		JWTIssuer:   envOr("JWT_ISSUER", "notekeeper"),
		JWTAudience: strings.TrimSpace(os.Getenv("JWT_AUDIENCE")),
		TokenTTL:    ttl,
		CORSOrigin:  envOr("CORS_ORIGIN", "*"),
		LogLevel:    envOr("LOG_LEVEL", "info"),
		Env:         envOr("APP_ENV", "production"),
	}

	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	fs.StringVar(&cfg.DBDriver, "db-driver", cfg.DBDriver, "database driver: mysql, sqlite3 or pgx")
	fs.StringVar(&cfg.DSN, "dsn", cfg.DSN, "database DSN")
	fs.StringVar(&cfg.JWTIssuer, "jwt-issuer", cfg.JWTIssuer, "token issuer")
	fs.StringVar(&cfg.JWTAudience, "jwt-audience", cfg.JWTAudience, "token audience (defaults to issuer)")
	fs.DurationVar(&cfg.TokenTTL, "token-ttl", cfg.TokenTTL, "token lifetime")
	fs.StringVar(&cfg.CORSOrigin, "cors-origin", cfg.CORSOrigin, "allowed CORS origin")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug or info")
	fs.StringVar(&cfg.Env, "env", cfg.Env, "app environment: production or development")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	ttlSet := false
	fs.Visit(func(f *flag.Flag) { ttlSet = ttlSet || f.Name == "token-ttl" })
	if ttlErr != nil && !ttlSet {
		return cfg, ttlErr
	}

	if cfg.JWTAudience == "" {
		cfg.JWTAudience = cfg.JWTIssuer
	}
	return cfg, nil
}

// Validate reports missing or inconsistent settings for the API server.
func (c Config) Validate() error {
	var problems []error
	if c.JWTSecret == "" {
		problems = append(problems, errors.New("JWT_SECRET is required"))
	}
	if c.TokenTTL <= 0 {
		problems = append(problems, errors.New("TOKEN_TTL must be positive"))
	}
	return errors.Join(c.ValidateStore(), errors.Join(problems...))
}

// ValidateStore checks only the database settings.
func (c Config) ValidateStore() error {
	var problems []error
	if c.DSN == "" {
		problems = append(problems, errors.New("DSN is required"))
	}
	switch c.DBDriver {
	case db.DriverMySQL, db.DriverSQLite, db.DriverPostgres:
	default:
		problems = append(problems, fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver))
	}
	return errors.Join(problems...)
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// parseTTL reads TOKEN_TTL, returning def when it is empty.
func parseTTL(raw string, def time.Duration) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def, fmt.Errorf("TOKEN_TTL: %w", err)
	}
	if d <= 0 {
		return def, fmt.Errorf("TOKEN_TTL must be positive, got %s", raw)
	}
	return d, nil
}
