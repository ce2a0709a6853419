package dto

import (
	appDto "anoa.com/skillswap/internal/modules/application/dto"
	proposalDto "anoa.com/skillswap/internal/modules/proposal/dto"
	reviewDto "anoa.com/skillswap/internal/modules/review/dto"
	swapDto "anoa.com/skillswap/internal/modules/swap/dto"
	"github.com/google/uuid"
)

type OverviewResponse struct {
	MyProposals          []proposalDto.ProposalResponse `json:"my_proposals"`
	IncomingApplications []appDto.ApplicationResponse   `json:"incoming_applications"`
	MyApplications       []appDto.ApplicationResponse   `json:"my_applications"`
	AppliedProposalIDs   []uuid.UUID                    `json:"applied_proposal_ids"`
	RecentSwaps          []swapDto.SwapResponse         `json:"recent_swaps"`
	Reputation           *reviewDto.ReputationStats     `json:"reputation"`
}
