package dto

import (
	"time"

	"anoa.com/skillswap/internal/entity"
	"github.com/google/uuid"
)

type NotificationResponse struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Link      string    `json:"link"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

func ToResponse(n *entity.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Type:      string(n.Type),
		Message:   n.Message,
		Link:      n.Link,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}

type DigestResult struct {
	Success    bool      `json:"success"`
	Processed  int       `json:"processed"`
	EmailsSent int       `json:"emailsSent"`
	Errors     int       `json:"errors"`
	Timestamp  time.Time `json:"timestamp"`
}
