package auth

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/example/workspace-live/domain/identity"
)

// ErrUserNotFound is returned when a user is not found.
var ErrUserNotFound = errors.New("user not found")

// UserRepository handles user lookups using GORM.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

// FindByID finds an active user by ID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*identity.User, error) {
	var user identity.User
	result := r.db.WithContext(ctx).First(&user, "id = ? AND is_active = ?", id, true)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}
