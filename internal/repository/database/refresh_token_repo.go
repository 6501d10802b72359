package database

import (
	"context"
	"errors"
	"time"

	"github.com/dom/snake-game-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type refreshTokenRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewRefreshTokenRepository(db *gorm.DB) *refreshTokenRepository {
	return &refreshTokenRepository{db: db, now: time.Now}
}

func (r *refreshTokenRepository) Register(ctx context.Context, token *domain.RefreshToken) error {
	token.ExpiresAt = token.ExpiresAt.UTC()
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token_hash"}},
		UpdateAll: true,
	}).Create(token).Error
}

func (r *refreshTokenRepository) Resolve(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	var token domain.RefreshToken
	err := r.db.WithContext(ctx).
		First(&token, "token_hash = ? AND expires_at > ?", tokenHash, r.now().UTC()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUnknownToken
		}
		return nil, err
	}
	return &token, nil
}

func (r *refreshTokenRepository) Revoke(ctx context.Context, tokenHash string) error {
	return r.db.WithContext(ctx).Delete(&domain.RefreshToken{}, "token_hash = ?", tokenHash).Error
}

func (r *refreshTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("expires_at <= ?", before.UTC()).Delete(&domain.RefreshToken{})
	return result.RowsAffected, result.Error
}
