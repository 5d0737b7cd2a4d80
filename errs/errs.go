// Package errs contains sentinel errors shared by the store, services and handlers.
package errs

import "errors"

var (
	// ErrNotFound indicates the referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a duplicate category name or a duplicate note/category link.
	ErrConflict = errors.New("conflict")

	// ErrValidation indicates blank or malformed input.
	ErrValidation = errors.New("validation failed")

	// ErrInUse indicates a delete blocked because other rows still reference the entity.
	ErrInUse = errors.New("in use")

	// ErrUnauthorized indicates bad credentials or a missing, expired or invalid token.
	ErrUnauthorized = errors.New("unauthorized")
)
