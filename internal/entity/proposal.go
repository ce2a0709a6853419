package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Modality string

const (
	ModalityRemote   Modality = "REMOTE"
	ModalityInPerson Modality = "IN_PERSON"
)

// ParseModality accepts the form labels ("Remote", "In-Person") and the
// canonical values, case-insensitively.
func ParseModality(s string) (Modality, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "REMOTE":
		return ModalityRemote, true
	case "IN-PERSON", "IN_PERSON", "IN PERSON":
		return ModalityInPerson, true
	}
	return "", false
}

type ProposalStatus string

const (
	ProposalStatusOpen       ProposalStatus = "OPEN"
	ProposalStatusInProgress ProposalStatus = "IN_PROGRESS"
	ProposalStatusClosed     ProposalStatus = "CLOSED"
)

func (s ProposalStatus) Valid() bool {
	switch s {
	case ProposalStatusOpen, ProposalStatusInProgress, ProposalStatusClosed:
		return true
	}
	return false
}

type Proposal struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"owner_id"`
	Owner         User           `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"owner"`
	Title         string         `gorm:"size:100;not null" json:"title"`
	Description   string         `gorm:"type:text;not null" json:"description"`
	Modality      Modality       `gorm:"size:20;not null" json:"modality"`
	Status        ProposalStatus `gorm:"size:20;not null;default:OPEN;index" json:"status"`
	OfferedSkills []Skill        `gorm:"many2many:proposal_offered_skills;constraint:OnDelete:CASCADE" json:"offered_skills"`
	NeededSkills  []Skill        `gorm:"many2many:proposal_needed_skills;constraint:OnDelete:CASCADE" json:"needed_skills"`
	CreatedAt     time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Proposal) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		p.ID = id
	}
	return nil
}
