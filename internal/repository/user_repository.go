package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/bandera-print/backoffice-api/internal/domain"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// TouchLogin creates the user on first sight and refreshes profile and last login afterwards.
// The role of an existing user is never overwritten from the token.
func (r *UserRepository) TouchLogin(ctx context.Context, user *domain.User, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.User
		err := tx.First(&existing, "id = ?", user.ID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			user.LastLoginAt = &at
			if user.Role == "" {
				user.Role = domain.UserRoleStaff
			}
			return tx.Create(user).Error
		}
		if err != nil {
			return err
		}
		user.Role = existing.Role
		user.CreatedAt = existing.CreatedAt
		return tx.Model(&existing).Updates(map[string]interface{}{
			"email":         user.Email,
			"display_name":  user.DisplayName,
			"last_login_at": at,
		}).Error
	})
}
