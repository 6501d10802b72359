package service

import (
	"context"
	"time"

	"github.com/dom/snake-game-api/internal/logging"
	"github.com/dom/snake-game-api/internal/repository"
)

// TokenSweeper periodically removes expired entries from the refresh token
// registry.
type TokenSweeper struct {
	refreshTokenRepo repository.RefreshTokenRepository
	interval         time.Duration
	now              func() time.Time
	log              logging.Logger
}

func NewTokenSweeper(refreshTokenRepo repository.RefreshTokenRepository, interval time.Duration, log logging.Logger) *TokenSweeper {
	return &TokenSweeper{
		refreshTokenRepo: refreshTokenRepo,
		interval:         interval,
		now:              time.Now,
		log:              log.With("component", "token_sweeper"),
	}
}

// Run sweeps once per interval until ctx is cancelled. A non-positive
// interval disables sweeping.
func (s *TokenSweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		s.log.Info(ctx, "refresh token sweeping disabled")
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep removes every entry expired at the current time.
func (s *TokenSweeper) Sweep(ctx context.Context) (int64, error) {
	removed, err := s.refreshTokenRepo.DeleteExpired(ctx, s.now())
	if err != nil {
		s.log.Error(ctx, "failed to sweep refresh tokens", "error", err)
		return 0, err
	}
	if removed > 0 {
		s.log.Info(ctx, "swept expired refresh tokens", "removed", removed)
	}
	return removed, nil
}
