package service

import (
	"context"

	application "anoa.com/skillswap/internal/modules/application/service"
	dashboardDto "anoa.com/skillswap/internal/modules/dashboard/dto"
	proposal "anoa.com/skillswap/internal/modules/proposal/service"
	review "anoa.com/skillswap/internal/modules/review/service"
	swap "anoa.com/skillswap/internal/modules/swap/service"
	"github.com/google/uuid"
)

const recentSwapLimit = 10

type DashboardService interface {
	Overview(ctx context.Context, userID uuid.UUID) (*dashboardDto.OverviewResponse, error)
}

type dashboardService struct {
	proposals    proposal.ProposalService
	applications application.ApplicationService
	swaps        swap.SwapService
	reviews      review.ReviewService
}

func NewDashboardService(proposals proposal.ProposalService, applications application.ApplicationService, swaps swap.SwapService, reviews review.ReviewService) DashboardService {
	return &dashboardService{
		proposals:    proposals,
		applications: applications,
		swaps:        swaps,
		reviews:      reviews,
	}
}

func (s *dashboardService) Overview(ctx context.Context, userID uuid.UUID) (*dashboardDto.OverviewResponse, error) {
	mine, err := s.proposals.ListMine(ctx, userID)
	if err != nil {
		return nil, err
	}

	incoming, err := s.applications.ListIncoming(ctx, userID)
	if err != nil {
		return nil, err
	}

	applied, err := s.applications.ListMine(ctx, userID)
	if err != nil {
		return nil, err
	}

	swaps, err := s.swaps.ListMine(ctx, userID, recentSwapLimit)
	if err != nil {
		return nil, err
	}

	reputation, err := s.reviews.ReputationStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	appliedIDs := make([]uuid.UUID, len(applied))
	for i, a := range applied {
		appliedIDs[i] = a.ProposalID
	}

	return &dashboardDto.OverviewResponse{
		MyProposals:          mine,
		IncomingApplications: incoming,
		MyApplications:       applied,
		AppliedProposalIDs:   appliedIDs,
		RecentSwaps:          swaps,
		Reputation:           reputation,
	}, nil
}
