package repository

import (
	"context"
	"time"

	"github.com/dom/snake-game-api/internal/domain"
)

// UserRepository is the user directory. Lookups return domain.ErrNotFound
// when no row matches; writes surface uniqueness conflicts as
// domain.ErrDuplicateUsername or domain.ErrDuplicateEmail.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateEmail(ctx context.Context, id int64, email string) (*domain.User, error)
}

// RefreshTokenRepository is the refresh token registry, keyed by token
// fingerprint. Absent and expired entries both resolve to
// domain.ErrUnknownToken.
type RefreshTokenRepository interface {
	// Register stores token, replacing any entry with the same fingerprint.
	Register(ctx context.Context, token *domain.RefreshToken) error
	Resolve(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)
	// Revoke removes an entry. Revoking an unknown fingerprint is not an error.
	Revoke(ctx context.Context, tokenHash string) error
	// DeleteExpired removes entries expiring at or before the given time and
	// reports how many were removed.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type Repositories struct {
	User         UserRepository
	RefreshToken RefreshTokenRepository
}
