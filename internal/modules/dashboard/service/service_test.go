package service

import (
	"context"
	"testing"

	"anoa.com/skillswap/internal/entity"
	appDto "anoa.com/skillswap/internal/modules/application/dto"
	application "anoa.com/skillswap/internal/modules/application/service"
	notifService "anoa.com/skillswap/internal/modules/notification/service"
	proposal "anoa.com/skillswap/internal/modules/proposal/service"
	review "anoa.com/skillswap/internal/modules/review/service"
	skillService "anoa.com/skillswap/internal/modules/skill/service"
	swap "anoa.com/skillswap/internal/modules/swap/service"
	"anoa.com/skillswap/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverview(t *testing.T) {
	store := testutil.NewStore()
	ctx := context.Background()
	notifications := notifService.NewNotificationService(store.NotificationRepo(), nil)
	reviews := review.NewReviewService(store.Reviews(), store.Swaps(), store.Skills(), store.Tx())
	proposals := proposal.NewProposalService(store.Proposals(), skillService.NewSkillService(store.Skills()), reviews, nil, nil, 0, store.Tx())
	applications := application.NewApplicationService(store.Applications(), store.Proposals(), store.Users(), notifications, nil, 0, store.Tx())
	swaps := swap.NewSwapService(store.Swaps(), store.Applications(), store.Proposals(), store.Reviews(), notifications, nil, store.Tx())
	svc := NewDashboardService(proposals, applications, swaps, reviews)

	ana := store.AddUser("Ana", "ana@example.com")
	ben := store.AddUser("Ben", "ben@example.com")
	mine := store.AddProposal(ana.ID, "Guitar for Spanish", []string{"Guitar"}, []string{"Spanish"})
	theirs := store.AddProposal(ben.ID, "Go for Cooking", []string{"Go"}, []string{"Cooking"})

	app, err := applications.Apply(ctx, ben.ID, mine.ID, appDto.ApplyRequest{PitchMessage: "Let's swap"})
	require.NoError(t, err)
	_, err = applications.Apply(ctx, ana.ID, theirs.ID, appDto.ApplyRequest{PitchMessage: "Me too"})
	require.NoError(t, err)
	_, err = swaps.AcceptApplication(ctx, ana.ID, app.ID)
	require.NoError(t, err)

	res, err := svc.Overview(ctx, ana.ID)
	require.NoError(t, err)

	require.Len(t, res.MyProposals, 1)
	assert.Equal(t, string(entity.ProposalStatusInProgress), res.MyProposals[0].Status)
	assert.Equal(t, int64(1), res.MyProposals[0].SwapCount)
	require.Len(t, res.IncomingApplications, 1)
	assert.Equal(t, "ACCEPTED", res.IncomingApplications[0].Status)
	assert.Equal(t, []uuid.UUID{theirs.ID}, res.AppliedProposalIDs)
	require.Len(t, res.RecentSwaps, 1)
	assert.Equal(t, "TEACHER", res.RecentSwaps[0].Role)
	require.NotNil(t, res.Reputation)
}
