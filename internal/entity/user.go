package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	ExternalID  *string     `gorm:"size:100;uniqueIndex" json:"-"`
	Email       string      `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Name        string      `gorm:"size:100;not null" json:"name"`
	Bio         *string     `gorm:"type:text" json:"bio,omitempty"`
	Industry    *string     `gorm:"size:100" json:"industry,omitempty"`
	AvatarURL   *string     `gorm:"type:text" json:"avatar_url,omitempty"`
	PhoneNumber *string     `gorm:"size:30" json:"phone_number,omitempty"`
	CreatedAt   time.Time   `gorm:"autoCreateTime" json:"created_at"`
	Skills      []UserSkill `gorm:"constraint:OnDelete:CASCADE" json:"skills,omitempty"`
}

const DefaultUserName = "New User"

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		u.ID = id
	}
	return nil
}
