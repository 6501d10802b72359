// Package memory provides a process-local refresh token registry.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/dom/snake-game-api/internal/domain"
)

type refreshTokenRepository struct {
	mu     sync.RWMutex
	tokens map[string]domain.RefreshToken
	now    func() time.Time
}

func NewRefreshTokenRepository() *refreshTokenRepository {
	return &refreshTokenRepository{
		tokens: make(map[string]domain.RefreshToken),
		now:    time.Now,
	}
}

func (r *refreshTokenRepository) Register(_ context.Context, token *domain.RefreshToken) error {
	stored := *token
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = r.now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token.TokenHash] = stored
	return nil
}

func (r *refreshTokenRepository) Resolve(_ context.Context, tokenHash string) (*domain.RefreshToken, error) {
	r.mu.RLock()
	token, ok := r.tokens[tokenHash]
	r.mu.RUnlock()

	if !ok || token.Expired(r.now()) {
		return nil, domain.ErrUnknownToken
	}
	return &token, nil
}

func (r *refreshTokenRepository) Revoke(_ context.Context, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, tokenHash)
	return nil
}

func (r *refreshTokenRepository) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int64
	for hash, token := range r.tokens {
		if token.Expired(before) {
			delete(r.tokens, hash)
			removed++
		}
	}
	return removed, nil
}

// Len reports the number of entries, expired ones included.
func (r *refreshTokenRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tokens)
}
