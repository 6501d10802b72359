package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dom/snake-game-api/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolationCode = "23505"

	usernameConstraint = "users_username_key"
	emailConstraint    = "users_email_key"
)

// translateUserConflict maps a unique violation on users to the matching
// domain error. Other errors are returned unchanged.
func translateUserConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != uniqueViolationCode {
			return err
		}
		switch pgErr.ConstraintName {
		case usernameConstraint:
			return fmt.Errorf("%w: %s", domain.ErrDuplicateUsername, pgErr.Detail)
		case emailConstraint:
			return fmt.Errorf("%w: %s", domain.ErrDuplicateEmail, pgErr.Detail)
		}
		return err
	}

	// SQLite reports "UNIQUE constraint failed: users.username".
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") {
		switch {
		case strings.Contains(msg, "users.username"):
			return domain.ErrDuplicateUsername
		case strings.Contains(msg, "users.email"):
			return domain.ErrDuplicateEmail
		}
	}
	return err
}
