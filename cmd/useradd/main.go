// Command useradd provisions an API user in the configured database.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"notekeeper/config"
	"notekeeper/db"
	"notekeeper/errs"
	"notekeeper/service"
)

const usage = "usage: useradd -u <username> -p <password> [server flags]"

func main() {
	cfg, username, password, err := parseArgs(os.Args[1:], ".env")
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := addUser(ctx, cfg, username, password); err != nil {
		if errors.Is(err, errs.ErrConflict) {
			logger.Error("user already exists", zap.String("username", username))
		} else {
			logger.Error("add user", zap.Error(err))
		}
		os.Exit(1)
	}
	logger.Info("user created", zap.String("username", username))
}

// parseArgs accepts -u and -p mixed with the server's database flags. Token
// settings are not needed, so JWT_SECRET may be unset.
func parseArgs(args []string, envFiles ...string) (cfg config.Config, username, password string, err error) {
	fs := flag.NewFlagSet("useradd", flag.ContinueOnError)
	fs.StringVar(&username, "u", "", "username")
	fs.StringVar(&password, "p", "", "password")

	cfg, err = config.Parse(fs, args, envFiles...)
	if err != nil {
		return cfg, "", "", err
	}
	if username == "" || password == "" || fs.NArg() > 0 {
		return cfg, "", "", errors.New(usage)
	}
	return cfg, username, password, cfg.ValidateStore()
}

func addUser(ctx context.Context, cfg config.Config, username, password string) error {
	store, err := db.Open(ctx, cfg.DBDriver, cfg.DSN)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		return err
	}
	// Register never issues tokens.
	_, err = service.NewAuthService(store, nil).Register(ctx, username, password)
	return err
}
