package db

import (
	"context"
	"database/sql"
	"errors"

	"notekeeper/errs"
	"notekeeper/models"
)

// CreateUser inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	_, err := s.exec(ctx, s.db,
		"INSERT INTO users (id, username, password_hash, password_salt, created_at) VALUES (?, ?, ?, ?, ?)",
		u.ID, u.Username, u.PasswordHash, u.PasswordSalt, u.CreatedAt)
	if isUniqueViolation(err) {
		return errs.ErrConflict
	}
	return err
}

// GetUserByUsername loads a user by exact username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := s.queryRow(ctx, s.db,
		"SELECT id, username, password_hash, password_salt, created_at FROM users WHERE username = ?", username).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.PasswordSalt, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
