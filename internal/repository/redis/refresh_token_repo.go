// Package redis stores refresh tokens in Redis, expiring each key with the
// token it represents.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dom/snake-game-api/internal/domain"
	"github.com/go-redis/redis/v8"
)

const keyPrefix = "refresh_token:"

type refreshTokenRepository struct {
	client *redis.Client
	now    func() time.Time
}

func NewRefreshTokenRepository(client *redis.Client) *refreshTokenRepository {
	return &refreshTokenRepository{client: client, now: time.Now}
}

// NewClient connects to the Redis server at url and checks it answers.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func (r *refreshTokenRepository) Register(ctx context.Context, token *domain.RefreshToken) error {
	stored := *token
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = r.now()
	}

	ttl := stored.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		// Already expired; it would never resolve.
		return nil
	}

	payload, err := json.Marshal(stored)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, key(token.TokenHash), payload, ttl).Err()
}

func (r *refreshTokenRepository) Resolve(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	payload, err := r.client.Get(ctx, key(tokenHash)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrUnknownToken
		}
		return nil, err
	}

	var token domain.RefreshToken
	if err := json.Unmarshal(payload, &token); err != nil {
		return nil, fmt.Errorf("corrupt refresh token entry: %w", err)
	}
	if token.Expired(r.now()) {
		return nil, domain.ErrUnknownToken
	}
	return &token, nil
}

func (r *refreshTokenRepository) Revoke(ctx context.Context, tokenHash string) error {
	return r.client.Del(ctx, key(tokenHash)).Err()
}

// DeleteExpired is a no-op: Redis expires keys on its own.
func (r *refreshTokenRepository) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func key(tokenHash string) string {
	return keyPrefix + tokenHash
}
