package dto

import (
	"time"

	reviewDto "anoa.com/skillswap/internal/modules/review/dto"
	"github.com/google/uuid"
)

// UpdateProfileInput binds from JSON or multipart form; nil fields are left unchanged.
type UpdateProfileInput struct {
	Name        *string `json:"name" form:"name" validate:"omitempty,min=1,max=100"`
	Bio         *string `json:"bio" form:"bio" validate:"omitempty,max=500"`
	Industry    *string `json:"industry" form:"industry" validate:"omitempty,max=100"`
	PhoneNumber *string `json:"phone_number" form:"phone_number" validate:"omitempty,max=30"`
}

type AddSkillRequest struct {
	Name string `json:"name" validate:"required,max=50"`
}

type SkillVisibilityRequest struct {
	IsVisible *bool `json:"is_visible" binding:"required"`
}

type UserSkillResponse struct {
	ID               uuid.UUID `json:"id"`
	SkillID          uuid.UUID `json:"skill_id"`
	Name             string    `json:"name"`
	Source           string    `json:"source"`
	IsVisible        bool      `json:"is_visible"`
	EndorsementCount int       `json:"endorsement_count"`
}

// ProfileResponse omits contact fields when someone else is viewing.
type ProfileResponse struct {
	ID          uuid.UUID                  `json:"id"`
	Name        string                     `json:"name"`
	Email       *string                    `json:"email,omitempty"`
	Bio         *string                    `json:"bio"`
	Industry    *string                    `json:"industry"`
	AvatarURL   *string                    `json:"avatar_url"`
	PhoneNumber *string                    `json:"phone_number,omitempty"`
	CreatedAt   time.Time                  `json:"created_at"`
	Skills      []UserSkillResponse        `json:"skills"`
	Reputation  *reviewDto.ReputationStats `json:"reputation"`
}
