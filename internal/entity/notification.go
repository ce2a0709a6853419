package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationMessageReceived     NotificationType = "MESSAGE_RECEIVED"
	NotificationApplicationReceived NotificationType = "APPLICATION_RECEIVED"
	NotificationApplicationAccepted NotificationType = "APPLICATION_ACCEPTED"
)

// Notification rows are append-only apart from the read and digest bookkeeping fields.
type Notification struct {
	ID             uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	User           *User            `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Type           NotificationType `gorm:"size:40;not null;index" json:"type"`
	Message        string           `gorm:"type:text;not null" json:"message"`
	Link           string           `gorm:"type:text" json:"link"`
	IsRead         bool             `gorm:"not null;default:false" json:"is_read"`
	EmailedAt      *time.Time       `json:"-"`
	DigestAttempts int              `gorm:"not null;default:0" json:"-"`
	CreatedAt      time.Time        `gorm:"autoCreateTime;index" json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		n.ID = id
	}
	return nil
}
