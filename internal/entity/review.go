package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MinRating      = 1
	MaxRating      = 5
	PositiveRating = 4
)

type Review struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SwapID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_review_author" json:"swap_id"`
	Swap       *Swap     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	AuthorID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_review_author" json:"author_id"`
	Author     User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`
	ReceiverID uuid.UUID `gorm:"type:uuid;not null;index" json:"receiver_id"`
	Rating     int       `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Comment    *string   `gorm:"type:text" json:"comment"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		r.ID = id
	}
	return nil
}

func (r *Review) IsPositive() bool {
	return r.Rating >= PositiveRating
}
