package dto

import (
	"time"

	commonDto "anoa.com/skillswap/pkg/dto"
	"github.com/google/uuid"
)

type CreateReviewRequest struct {
	Rating  int     `json:"rating" validate:"required,min=1,max=5"`
	Comment *string `json:"comment" validate:"omitempty,max=1000"`
}

type ReviewResponse struct {
	ID            uuid.UUID             `json:"id"`
	SwapID        uuid.UUID             `json:"swap_id"`
	Rating        int                   `json:"rating"`
	Comment       *string               `json:"comment"`
	Author        commonDto.UserSummary `json:"author"`
	ReceiverID    uuid.UUID             `json:"receiver_id"`
	ProposalTitle string                `json:"proposal_title,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
}

// ReputationStats is recomputed from reviews and swaps on every read.
type ReputationStats struct {
	CompletedSwaps  int64 `json:"completed_swaps"`
	TotalReviews    int64 `json:"total_reviews"`
	PositiveReviews int64 `json:"positive_reviews"`
	// BattingAverage is positive reviews over max(completed swaps, 1); null without reviews.
	BattingAverage    *float64 `json:"batting_average"`
	AverageRating     float64  `json:"average_rating"`
	TotalEndorsements int64    `json:"total_endorsements"`
}
