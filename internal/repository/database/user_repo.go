package database

import (
	"context"
	"errors"
	"time"

	"github.com/dom/snake-game-api/internal/domain"
	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *userRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return translateUserConflict(err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *userRepository) UpdateEmail(ctx context.Context, id int64, email string) (*domain.User, error) {
	var user *domain.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&domain.User{}).Where("id = ?", id).Updates(map[string]interface{}{
			"email":      email,
			"updated_at": time.Now(),
		})
		if result.Error != nil {
			return translateUserConflict(result.Error)
		}
		if result.RowsAffected == 0 {
			return domain.ErrNotFound
		}

		var updated domain.User
		if err := tx.First(&updated, "id = ?", id).Error; err != nil {
			return err
		}
		user = &updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepository) first(ctx context.Context, query string, arg interface{}) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, query, arg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}
