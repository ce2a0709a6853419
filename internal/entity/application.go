package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "PENDING"
	ApplicationStatusAccepted ApplicationStatus = "ACCEPTED"
	ApplicationStatusRejected ApplicationStatus = "REJECTED"
)

func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationStatusPending, ApplicationStatusAccepted, ApplicationStatusRejected:
		return true
	}
	return false
}

type Application struct {
	ID           uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	ProposalID   uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_application_pair" json:"proposal_id"`
	Proposal     Proposal          `gorm:"constraint:OnDelete:CASCADE" json:"proposal"`
	ApplicantID  uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_application_pair;index" json:"applicant_id"`
	Applicant    User              `gorm:"foreignKey:ApplicantID;constraint:OnDelete:CASCADE" json:"applicant"`
	PitchMessage string            `gorm:"type:text;not null" json:"pitch_message"`
	Status       ApplicationStatus `gorm:"size:20;not null;default:PENDING" json:"status"`
	CreatedAt    time.Time         `gorm:"autoCreateTime" json:"created_at"`
}

func (a *Application) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		a.ID = id
	}
	return nil
}
