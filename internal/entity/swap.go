package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SwapStatus string

const (
	SwapStatusActive    SwapStatus = "ACTIVE"
	SwapStatusCompleted SwapStatus = "COMPLETED"
	SwapStatusCancelled SwapStatus = "CANCELLED"
)

func (s SwapStatus) Valid() bool {
	switch s {
	case SwapStatusActive, SwapStatusCompleted, SwapStatusCancelled:
		return true
	}
	return false
}

// Swap is created once per accepted application; ApplicationID is unique.
type Swap struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ProposalID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"proposal_id"`
	Proposal      Proposal   `gorm:"constraint:OnDelete:CASCADE" json:"proposal"`
	ApplicationID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"application_id"`
	TeacherID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"teacher_id"`
	Teacher       User       `gorm:"foreignKey:TeacherID;constraint:OnDelete:CASCADE" json:"teacher"`
	StudentID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"student_id"`
	Student       User       `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"student"`
	Status        SwapStatus `gorm:"size:20;not null;default:ACTIVE" json:"status"`
	StartedAt     time.Time  `gorm:"not null" json:"started_at"`
	CompletedAt   *time.Time `json:"completed_at"`
}

func (s *Swap) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		s.ID = id
	}
	if s.StartedAt.IsZero() {
		s.StartedAt = time.Now()
	}
	return nil
}

func (s *Swap) IsParticipant(userID uuid.UUID) bool {
	return s.TeacherID == userID || s.StudentID == userID
}

// Partner returns the other participant. Callers check IsParticipant first.
func (s *Swap) Partner(userID uuid.UUID) uuid.UUID {
	if s.TeacherID == userID {
		return s.StudentID
	}
	return s.TeacherID
}
