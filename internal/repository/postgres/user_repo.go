package postgres

import (
	"context"
	"errors"
	"strings"

	"fitcoach/coaching-app/internal/domain"
	"fitcoach/coaching-app/internal/repository"

	"gorm.io/gorm"
)

// gormUserRepository implements repository.UserRepository on Postgres.
type gormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository bound to db.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &gormUserRepository{db: db}
}

// Create stores the user and its role profile in one transaction. The
// caller is expected to have set exactly the profile association matching
// user.Role; both rows land or neither does.
func (r *gormUserRepository) Create(ctx context.Context, user *domain.User) (uint, error) {
	if user.Email == "" || user.PasswordHash == "" || !user.Role.Valid() {
		return 0, errors.New("user email, password hash, and role are required")
	}
	user.Email = strings.ToLower(user.Email)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// GORM creates the set profile association alongside the user row
		// within this transaction.
		return tx.Create(user).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, repository.ErrDuplicate
		}
		return 0, err
	}
	return user.ID, nil
}

// GetByEmail retrieves a user by email. Comparison is case-insensitive
// because emails are stored lowercased.
func (r *gormUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).
		Preload("Trainer").Preload("Athlete").Preload("Nutritionist").
		Where("email = ?", strings.ToLower(email)).
		First(&user).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

// GetByID retrieves a user with its role profile preloaded.
func (r *gormUserRepository) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).
		Preload("Trainer").Preload("Athlete").Preload("Nutritionist").
		First(&user, id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

// Update persists mutable identity fields. Role is never updated here.
func (r *gormUserRepository) Update(ctx context.Context, user *domain.User) error {
	result := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"first_name":    user.FirstName,
			"last_name":     user.LastName,
			"phone":         user.Phone,
			"profile_image": user.ProfileImage,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// UpdatePassword replaces the stored credential.
func (r *gormUserRepository) UpdatePassword(ctx context.Context, userID uint, passwordHash string) error {
	result := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", userID).
		Update("password_hash", passwordHash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
