package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Skill names are exact, case-sensitive keys.
type Skill struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (s *Skill) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		s.ID = id
	}
	return nil
}

type SkillSource string

const (
	SkillSourceManual   SkillSource = "MANUAL"
	SkillSourceEndorsed SkillSource = "ENDORSED"
)

type UserSkill struct {
	ID               uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_user_skill" json:"user_id"`
	SkillID          uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_user_skill" json:"skill_id"`
	Skill            Skill       `gorm:"constraint:OnDelete:CASCADE" json:"skill"`
	Source           SkillSource `gorm:"size:20;not null;default:MANUAL" json:"source"`
	IsVisible        bool        `gorm:"not null;default:true" json:"is_visible"`
	EndorsementCount int         `gorm:"not null;default:0" json:"endorsement_count"`
	CreatedAt        time.Time   `gorm:"autoCreateTime" json:"created_at"`
}

func (us *UserSkill) BeforeCreate(tx *gorm.DB) error {
	if us.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		us.ID = id
	}
	return nil
}
