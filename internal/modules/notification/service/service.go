package service

import (
	"context"
	"encoding/json"
	"fmt"

	"anoa.com/skillswap/internal/entity"
	notifDto "anoa.com/skillswap/internal/modules/notification/dto"
	notifRepo "anoa.com/skillswap/internal/modules/notification/repository"
	"anoa.com/skillswap/pkg/apperror"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const feedLimit = 20

// Channel is the pub/sub channel carrying a user's live notifications.
func Channel(userID uuid.UUID) string {
	return fmt.Sprintf("user_notifications:%s", userID.String())
}

type NotificationService interface {
	// Create stores the notification only; callers inside a transaction Publish after commit.
	Create(ctx context.Context, notification *entity.Notification) error
	Publish(ctx context.Context, notification *entity.Notification)

	List(ctx context.Context, userID *uuid.UUID) ([]notifDto.NotificationResponse, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, callerID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, callerID uuid.UUID) (int64, error)
}

type notificationService struct {
	repo        notifRepo.NotificationRepository
	redisClient *redis.Client
}

func NewNotificationService(repo notifRepo.NotificationRepository, redisClient *redis.Client) NotificationService {
	return &notificationService{
		repo:        repo,
		redisClient: redisClient,
	}
}

func (s *notificationService) Create(ctx context.Context, notification *entity.Notification) error {
	return s.repo.Create(ctx, notification)
}

func (s *notificationService) Publish(ctx context.Context, notification *entity.Notification) {
	if s.redisClient == nil {
		return
	}

	payload, err := json.Marshal(notifDto.ToResponse(notification))
	if err != nil {
		zap.L().Warn("failed to encode notification", zap.Error(err))
		return
	}

	if err := s.redisClient.Publish(ctx, Channel(notification.UserID), payload).Err(); err != nil {
		zap.L().Warn("failed to publish notification",
			zap.String("user_id", notification.UserID.String()),
			zap.Error(err),
		)
	}
}

func (s *notificationService) List(ctx context.Context, userID *uuid.UUID) ([]notifDto.NotificationResponse, error) {
	if userID == nil {
		return []notifDto.NotificationResponse{}, nil
	}

	notifications, err := s.repo.GetByUserID(ctx, *userID, feedLimit, 0)
	if err != nil {
		return nil, err
	}

	res := make([]notifDto.NotificationResponse, len(notifications))
	for i := range notifications {
		res[i] = notifDto.ToResponse(&notifications[i])
	}
	return res, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *notificationService) MarkRead(ctx context.Context, callerID, id uuid.UUID) error {
	notification, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if notification.UserID != callerID {
		return fmt.Errorf("notification belongs to another user: %w", apperror.ErrForbidden)
	}

	if notification.IsRead {
		return nil
	}
	return s.repo.MarkAsRead(ctx, id)
}

func (s *notificationService) MarkAllRead(ctx context.Context, callerID uuid.UUID) (int64, error) {
	return s.repo.MarkAllAsRead(ctx, callerID)
}
