package repository

import (
	"context"

	"anoa.com/skillswap/internal/entity"
	"anoa.com/skillswap/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	ListBySwap(ctx context.Context, swapID uuid.UUID) ([]entity.Message, error)
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *entity.Message) error {
	return database.Conn(ctx, r.db).
		Omit("Swap", "Sender").
		Create(message).Error
}

func (r *messageRepository) ListBySwap(ctx context.Context, swapID uuid.UUID) ([]entity.Message, error) {
	var messages []entity.Message
	if err := database.Conn(ctx, r.db).
		Preload("Sender", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "avatar_url")
		}).
		Where("swap_id = ?", swapID).
		Order("created_at ASC").
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}
