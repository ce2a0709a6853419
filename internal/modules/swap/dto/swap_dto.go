package dto

import (
	"time"

	commonDto "anoa.com/skillswap/pkg/dto"
	"github.com/google/uuid"
)

const (
	RoleTeacher = "TEACHER"
	RoleStudent = "STUDENT"
)

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type SwapProposal struct {
	ID            uuid.UUID                 `json:"id"`
	Title         string                    `json:"title"`
	Modality      string                    `json:"modality"`
	OfferedSkills []commonDto.SkillResponse `json:"offered_skills"`
	NeededSkills  []commonDto.SkillResponse `json:"needed_skills"`
}

type SwapResponse struct {
	ID            uuid.UUID             `json:"id"`
	ApplicationID uuid.UUID             `json:"application_id"`
	Status        string                `json:"status"`
	Proposal      SwapProposal          `json:"proposal"`
	Teacher       commonDto.UserSummary `json:"teacher"`
	Student       commonDto.UserSummary `json:"student"`
	// Role and Partner are relative to the caller.
	Role        string                `json:"role"`
	Partner     commonDto.UserSummary `json:"partner"`
	HasReviewed bool                  `json:"has_reviewed"`
	StartedAt   time.Time             `json:"started_at"`
	CompletedAt *time.Time            `json:"completed_at"`
}
