package dto

import (
	"time"

	commonDto "anoa.com/skillswap/pkg/dto"
	"github.com/google/uuid"
)

type SendMessageRequest struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}

type MessageResponse struct {
	ID         uuid.UUID             `json:"id"`
	SwapID     uuid.UUID             `json:"swap_id"`
	Sender     commonDto.UserSummary `json:"sender"`
	ReceiverID uuid.UUID             `json:"receiver_id"`
	Content    string                `json:"content"`
	CreatedAt  time.Time             `json:"created_at"`
}
