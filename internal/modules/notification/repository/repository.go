package repository

import (
	"context"
	"time"

	"anoa.com/skillswap/internal/entity"
	"anoa.com/skillswap/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Notification, error)
	GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Notification, error)
	MarkAsRead(ctx context.Context, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	// ListPendingDigest returns unread, never-emailed notifications of type created at or before cutoff,
	// fewest failed attempts first, then oldest first.
	ListPendingDigest(ctx context.Context, notifType entity.NotificationType, cutoff time.Time, limit int) ([]entity.Notification, error)
	MarkEmailed(ctx context.Context, ids []uuid.UUID, at time.Time) error
	RecordDigestFailure(ctx context.Context, ids []uuid.UUID) error
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	return database.Conn(ctx, r.db).Omit("User").Create(notification).Error
}

func (r *notificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Notification, error) {
	var notification entity.Notification
	if err := database.Conn(ctx, r.db).Where("id = ?", id).First(&notification).Error; err != nil {
		return nil, database.Translate(err, "notification")
	}
	return &notification, nil
}

func (r *notificationRepository) GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Notification, error) {
	var notifications []entity.Notification
	err := database.Conn(ctx, r.db).Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&notifications).Error
	return notifications, err
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	return database.Conn(ctx, r.db).Model(&entity.Notification{}).Where("id = ?", id).Update("is_read", true).Error
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := database.Conn(ctx, r.db).Model(&entity.Notification{}).Where("user_id = ? AND is_read = ?", userID, false).Update("is_read", true)
	return result.RowsAffected, result.Error
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := database.Conn(ctx, r.db).Model(&entity.Notification{}).Where("user_id = ? AND is_read = ?", userID, false).Count(&count).Error
	return count, err
}

func (r *notificationRepository) ListPendingDigest(ctx context.Context, notifType entity.NotificationType, cutoff time.Time, limit int) ([]entity.Notification, error) {
	var notifications []entity.Notification
	err := database.Conn(ctx, r.db).
		Preload("User").
		Where("type = ? AND is_read = ? AND emailed_at IS NULL AND created_at <= ?", notifType, false, cutoff).
		Order("digest_attempts asc, created_at asc").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

func (r *notificationRepository) MarkEmailed(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return database.Conn(ctx, r.db).Model(&entity.Notification{}).Where("id IN ?", ids).Update("emailed_at", at).Error
}

func (r *notificationRepository) RecordDigestFailure(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return database.Conn(ctx, r.db).Model(&entity.Notification{}).
		Where("id IN ?", ids).
		Update("digest_attempts", gorm.Expr("digest_attempts + 1")).Error
}
