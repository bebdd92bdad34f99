package postgres

import (
	"context"
	"time"

	"fitcoach/coaching-app/internal/domain"
	"fitcoach/coaching-app/internal/repository"

	"gorm.io/gorm"
)

// gormSubscriptionRepository implements repository.SubscriptionRepository.
type gormSubscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository bound to db.
func NewSubscriptionRepository(db *gorm.DB) repository.SubscriptionRepository {
	return &gormSubscriptionRepository{db: db}
}

// Create cancels the user's active/paused subscriptions and inserts the new
// row in one transaction, so the "one current subscription" rule holds even
// if the insert fails.
func (r *gormSubscriptionRepository) Create(ctx context.Context, sub *domain.Subscription) (uint, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&domain.Subscription{}).
			Where("user_id = ? AND status IN ?", sub.UserID, []domain.SubscriptionStatus{domain.SubActive, domain.SubPaused}).
			Update("status", domain.SubCancelled).Error
		if err != nil {
			return err
		}
		return tx.Create(sub).Error
	})
	if err != nil {
		return 0, err
	}
	return sub.ID, nil
}

// Current returns the newest subscription row for the user.
func (r *gormSubscriptionRepository) Current(ctx context.Context, userID uint) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&sub).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &sub, nil
}

func (r *gormSubscriptionRepository) UpdateStatus(ctx context.Context, id uint, status domain.SubscriptionStatus, autoRenew bool) error {
	result := r.db.WithContext(ctx).Model(&domain.Subscription{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "auto_renew": autoRenew})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *gormSubscriptionRepository) GetByGatewayID(ctx context.Context, gatewayID string) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := r.db.WithContext(ctx).
		Where("gateway_subscription_id = ?", gatewayID).
		First(&sub).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &sub, nil
}

// ExpireOverdue flips still-active rows whose expiry has passed. Reads never
// mutate; this is the only place the expired transition is persisted.
func (r *gormSubscriptionRepository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&domain.Subscription{}).
		Where("status = ? AND expires_at < ?", domain.SubActive, now).
		Update("status", domain.SubExpired)
	return result.RowsAffected, result.Error
}

// gormPasswordResetRepository implements repository.PasswordResetRepository.
type gormPasswordResetRepository struct {
	db *gorm.DB
}

// NewPasswordResetRepository creates a new password reset repository bound to db.
func NewPasswordResetRepository(db *gorm.DB) repository.PasswordResetRepository {
	return &gormPasswordResetRepository{db: db}
}

func (r *gormPasswordResetRepository) Create(ctx context.Context, token *domain.PasswordResetToken) (uint, error) {
	if err := r.db.WithContext(ctx).Create(token).Error; err != nil {
		return 0, err
	}
	return token.ID, nil
}

func (r *gormPasswordResetRepository) GetValid(ctx context.Context, token string, now time.Time) (*domain.PasswordResetToken, error) {
	var record domain.PasswordResetToken
	err := r.db.WithContext(ctx).
		Where("token = ? AND used_at IS NULL AND expires_at > ?", token, now).
		First(&record).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &record, nil
}

func (r *gormPasswordResetRepository) MarkUsed(ctx context.Context, id uint) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).Model(&domain.PasswordResetToken{}).
		Where("id = ?", id).
		Update("used_at", now).Error
}

// gormAnalysisRepository implements repository.AnalysisRepository.
type gormAnalysisRepository struct {
	db *gorm.DB
}

// NewAnalysisRepository creates a new analysis history repository bound to db.
func NewAnalysisRepository(db *gorm.DB) repository.AnalysisRepository {
	return &gormAnalysisRepository{db: db}
}

func (r *gormAnalysisRepository) Create(ctx context.Context, record *domain.FoodAnalysisRecord) (uint, error) {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return 0, err
	}
	return record.ID, nil
}

func (r *gormAnalysisRepository) ListByUser(ctx context.Context, userID uint, page repository.Page) ([]domain.FoodAnalysisRecord, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.FoodAnalysisRecord{}).
		Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := page.Limit
	if limit <= 0 {
		limit = 20
	}

	var records []domain.FoodAnalysisRecord
	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(page.Offset()).
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}
