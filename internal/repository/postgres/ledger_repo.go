package postgres

import (
	"context"
	"time"

	"fitcoach/coaching-app/internal/domain"
	"fitcoach/coaching-app/internal/repository"

	"gorm.io/gorm"
)

// gormProgressRepository implements repository.ProgressRepository.
type gormProgressRepository struct {
	db *gorm.DB
}

// NewProgressRepository creates a new progress repository bound to db.
func NewProgressRepository(db *gorm.DB) repository.ProgressRepository {
	return &gormProgressRepository{db: db}
}

func (r *gormProgressRepository) Create(ctx context.Context, record *domain.ProgressRecord) (uint, error) {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return 0, err
	}
	return record.ID, nil
}

func (r *gormProgressRepository) List(ctx context.Context, athleteID uint, filter repository.ProgressFilter) ([]domain.ProgressRecord, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.ProgressRecord{}).
		Where("athlete_id = ?", athleteID)

	if filter.RecordType != "" {
		query = query.Where("record_type = ?", filter.RecordType)
	}
	if filter.DateFrom != nil {
		query = query.Where("recorded_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("recorded_at <= ?", *filter.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Page.Limit
	if limit <= 0 {
		limit = 20
	}

	var records []domain.ProgressRecord
	err := query.
		Order("recorded_at DESC").
		Limit(limit).
		Offset(filter.Page.Offset()).
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// gormNotificationRepository implements repository.NotificationRepository.
// Soft-deleted rows are filtered out of every read path.
type gormNotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository bound to db.
func NewNotificationRepository(db *gorm.DB) repository.NotificationRepository {
	return &gormNotificationRepository{db: db}
}

func (r *gormNotificationRepository) Create(ctx context.Context, notification *domain.Notification) (uint, error) {
	if err := r.db.WithContext(ctx).Create(notification).Error; err != nil {
		return 0, err
	}
	return notification.ID, nil
}

// visible scopes a query to live (non-deleted, non-expired) rows of a user.
func (r *gormNotificationRepository) visible(ctx context.Context, userID uint) *gorm.DB {
	return r.db.WithContext(ctx).Model(&domain.Notification{}).
		Where("user_id = ? AND is_deleted = ?", userID, false).
		Where("expires_at IS NULL OR expires_at > ?", time.Now().UTC())
}

func (r *gormNotificationRepository) List(ctx context.Context, userID uint, unreadOnly bool, page repository.Page) ([]domain.Notification, int64, error) {
	query := r.visible(ctx, userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := page.Limit
	if limit <= 0 {
		limit = 20
	}

	var notifications []domain.Notification
	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(page.Offset()).
		Find(&notifications).Error
	if err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

func (r *gormNotificationRepository) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.visible(ctx, userID).Where("is_read = ?", false).Count(&count).Error
	return count, err
}

// MarkRead is idempotent: marking an already-read row matches zero rows,
// which is not an error. ErrNotFound only means the row does not exist for
// this user at all.
func (r *gormNotificationRepository) MarkRead(ctx context.Context, id, userID uint) error {
	var notification domain.Notification
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ? AND is_deleted = ?", id, userID, false).
		First(&notification).Error
	if err != nil {
		return translateError(err)
	}
	if notification.IsRead {
		return nil
	}
	now := time.Now().UTC()
	return r.db.WithContext(ctx).Model(&domain.Notification{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_read": true, "read_at": now}).Error
}

func (r *gormNotificationRepository) MarkAllRead(ctx context.Context, userID uint) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).Model(&domain.Notification{}).
		Where("user_id = ? AND is_read = ? AND is_deleted = ?", userID, false, false).
		Updates(map[string]any{"is_read": true, "read_at": now}).Error
}

func (r *gormNotificationRepository) SoftDelete(ctx context.Context, id, userID uint) error {
	result := r.db.WithContext(ctx).Model(&domain.Notification{}).
		Where("id = ? AND user_id = ? AND is_deleted = ?", id, userID, false).
		Update("is_deleted", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Not owned, absent, or already deleted: indistinguishable by
		// design.
		return repository.ErrNotFound
	}
	return nil
}

// gormMessageRepository implements repository.MessageRepository.
type gormMessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new message repository bound to db.
func NewMessageRepository(db *gorm.DB) repository.MessageRepository {
	return &gormMessageRepository{db: db}
}

func (r *gormMessageRepository) Create(ctx context.Context, message *domain.Message) (uint, error) {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return 0, err
	}
	return message.ID, nil
}

func (r *gormMessageRepository) listBy(ctx context.Context, column string, userID uint, page repository.Page) ([]domain.Message, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Message{}).
		Where(column+" = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := page.Limit
	if limit <= 0 {
		limit = 20
	}

	var messages []domain.Message
	err := query.
		Order("sent_at DESC").
		Limit(limit).
		Offset(page.Offset()).
		Find(&messages).Error
	if err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}

func (r *gormMessageRepository) ListInbox(ctx context.Context, userID uint, page repository.Page) ([]domain.Message, int64, error) {
	return r.listBy(ctx, "recipient_id", userID, page)
}

func (r *gormMessageRepository) ListOutbox(ctx context.Context, userID uint, page repository.Page) ([]domain.Message, int64, error) {
	return r.listBy(ctx, "sender_id", userID, page)
}

func (r *gormMessageRepository) MarkRead(ctx context.Context, id, recipientID uint) error {
	result := r.db.WithContext(ctx).Model(&domain.Message{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
