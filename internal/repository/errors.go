package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicateEmail    = errors.New("user with this email already exists")
	ErrDuplicateUsername = errors.New("user with this username already exists")
)

const (
	pgUniqueViolation = "23505"

	usernameIndex = "users_username_lower_idx"
	emailIndex    = "users_email_lower_idx"
)

// mapError converts driver errors into repository sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		switch pgErr.ConstraintName {
		case usernameIndex:
			return ErrDuplicateUsername
		case emailIndex:
			return ErrDuplicateEmail
		}
	}
	return err
}
