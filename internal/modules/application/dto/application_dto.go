package dto

import (
	"time"

	commonDto "anoa.com/skillswap/pkg/dto"
	"github.com/google/uuid"
)

type ApplyRequest struct {
	PitchMessage string `json:"pitch_message" validate:"required,min=1,max=1000"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type ApplicantProfile struct {
	commonDto.UserSummary
	Skills []commonDto.SkillResponse `json:"skills"`
}

type ProposalSummary struct {
	ID            uuid.UUID                 `json:"id"`
	Title         string                    `json:"title"`
	Modality      string                    `json:"modality"`
	Status        string                    `json:"status"`
	Owner         *commonDto.UserSummary    `json:"owner,omitempty"`
	OfferedSkills []commonDto.SkillResponse `json:"offered_skills,omitempty"`
	NeededSkills  []commonDto.SkillResponse `json:"needed_skills,omitempty"`
}

type ApplicationResponse struct {
	ID           uuid.UUID         `json:"id"`
	ProposalID   uuid.UUID         `json:"proposal_id"`
	PitchMessage string            `json:"pitch_message"`
	Status       string            `json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
	Applicant    *ApplicantProfile `json:"applicant,omitempty"`
	Proposal     *ProposalSummary  `json:"proposal,omitempty"`
}
