package dto

import (
	"time"

	reviewDto "anoa.com/skillswap/internal/modules/review/dto"
	commonDto "anoa.com/skillswap/pkg/dto"
	"github.com/google/uuid"
)

type CreateProposalRequest struct {
	Title         string   `json:"title" validate:"required,min=5,max=100"`
	Description   string   `json:"description" validate:"required,min=20,max=500"`
	Modality      string   `json:"modality" validate:"required"`
	OfferedSkills []string `json:"offered_skills" validate:"min=1,max=10,dive,max=50"`
	NeededSkills  []string `json:"needed_skills" validate:"min=1,max=10,dive,max=50"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type ProposalFilter struct {
	Search       string   `form:"search"`
	Modality     string   `form:"modality"`
	WantSkillIDs []string `form:"want_skill_ids"`
	HaveSkillIDs []string `form:"have_skill_ids"`
	Page         int      `form:"page" binding:"omitempty,min=1"`
	Limit        int      `form:"limit" binding:"omitempty,min=1,max=50"`
}

type ProposalResponse struct {
	ID               uuid.UUID                 `json:"id"`
	Title            string                    `json:"title"`
	Description      string                    `json:"description"`
	Modality         string                    `json:"modality"`
	Status           string                    `json:"status"`
	Owner            commonDto.UserSummary     `json:"owner"`
	OfferedSkills    []commonDto.SkillResponse `json:"offered_skills"`
	NeededSkills     []commonDto.SkillResponse `json:"needed_skills"`
	ApplicationCount int64                     `json:"application_count"`
	SwapCount        int64                     `json:"swap_count"`
	CreatedAt        time.Time                 `json:"created_at"`
}

type ProposalDetailResponse struct {
	ProposalResponse
	OwnerReputation *reviewDto.ReputationStats `json:"owner_reputation"`
}

type PaginatedProposalResponse struct {
	Data []ProposalResponse       `json:"data"`
	Meta commonDto.PaginationMeta `json:"meta"`
}
