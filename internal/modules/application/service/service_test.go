package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"anoa.com/skillswap/internal/entity"
	appDto "anoa.com/skillswap/internal/modules/application/dto"
	notifService "anoa.com/skillswap/internal/modules/notification/service"
	"anoa.com/skillswap/internal/testutil"
	"anoa.com/skillswap/pkg/apperror"
	"anoa.com/skillswap/pkg/ratelimiter"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(store *testutil.Store) ApplicationService {
	notifications := notifService.NewNotificationService(store.NotificationRepo(), nil)
	return NewApplicationService(store.Applications(), store.Proposals(), store.Users(), notifications, nil, 0, store.Tx())
}

func TestApply(t *testing.T) {
	store := testutil.NewStore()
	svc := newTestService(store)
	ana := store.AddUser("Ana", "ana@example.com")
	ben := store.AddUser("Ben", "ben@example.com")
	p := store.AddProposal(ana.ID, "Guitar for Spanish", []string{"Guitar"}, []string{"Spanish"})

	res, err := svc.Apply(context.Background(), ben.ID, p.ID, appDto.ApplyRequest{PitchMessage: "  <i>Let's swap</i> "})
	require.NoError(t, err)

	assert.Equal(t, "PENDING", res.Status)
	assert.Equal(t, "Let's swap", res.PitchMessage)
	require.NotNil(t, res.Proposal)
	assert.Equal(t, p.Title, res.Proposal.Title)

	notes := store.Notifications(ana.ID)
	require.Len(t, notes, 1)
	assert.Equal(t, entity.NotificationApplicationReceived, notes[0].Type)
	assert.Equal(t, `Ben applied to "Guitar for Spanish"`, notes[0].Message)
	assert.Equal(t, "/dashboard?tab=applications&proposalId="+p.ID.String(), notes[0].Link)
}

func TestApplyOnlyOnce(t *testing.T) {
	store := testutil.NewStore()
	svc := newTestService(store)
	ana := store.AddUser("Ana", "ana@example.com")
	ben := store.AddUser("Ben", "ben@example.com")
	p := store.AddProposal(ana.ID, "Guitar for Spanish", []string{"Guitar"}, []string{"Spanish"})

	_, err := svc.Apply(context.Background(), ben.ID, p.ID, appDto.ApplyRequest{PitchMessage: "first"})
	require.NoError(t, err)

	_, err = svc.Apply(context.Background(), ben.ID, p.ID, appDto.ApplyRequest{PitchMessage: "second"})
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.Equal(t, 1, store.Count("applications"))
	assert.Len(t, store.Notifications(ana.ID), 1)
}

func TestApplyIsAtomic(t *testing.T) {
	store := testutil.NewStore()
	mr := miniredis.RunT(t)
	limiter := ratelimiter.New(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	notifications := notifService.NewNotificationService(store.NotificationRepo(), nil)
	svc := NewApplicationService(store.Applications(), store.Proposals(), store.Users(), notifications, limiter, time.Minute, store.Tx())
	ctx := context.Background()

	ana := store.AddUser("Ana", "ana@example.com")
	ben := store.AddUser("Ben", "ben@example.com")
	p := store.AddProposal(ana.ID, "Guitar for Spanish", []string{"Guitar"}, []string{"Spanish"})

	store.Fail["notifications.Create"] = errors.New("db down")
	_, err := svc.Apply(ctx, ben.ID, p.ID, appDto.ApplyRequest{PitchMessage: "Let's swap"})
	require.Error(t, err)
	assert.Equal(t, 0, store.Count("applications"))
	assert.Empty(t, store.Notifications(ana.ID))

	delete(store.Fail, "notifications.Create")
	res, err := svc.Apply(ctx, ben.ID, p.ID, appDto.ApplyRequest{PitchMessage: "Let's swap"})
	require.NoError(t, err, "failed attempt must not hold the cooldown or the row")
	assert.Equal(t, "PENDING", res.Status)
	assert.Equal(t, 1, store.Count("applications"))
	assert.Len(t, store.Notifications(ana.ID), 1)
}

func TestApplyToOwnProposal(t *testing.T) {
	store := testutil.NewStore()
	svc := newTestService(store)
	ana := store.AddUser("Ana", "ana@example.com")
	p := store.AddProposal(ana.ID, "Guitar for Spanish", []string{"Guitar"}, []string{"Spanish"})

	for _, pitch := range []string{"", "hello", "<script>x</script>"} {
		_, err := svc.Apply(context.Background(), ana.ID, p.ID, appDto.ApplyRequest{PitchMessage: pitch})
		assert.ErrorIs(t, err, apperror.ErrSelfApplication)
		assert.ErrorIs(t, err, apperror.ErrBusinessRule)
	}
	assert.Equal(t, 0, store.Count("applications"))
}

func TestApplyRejected(t *testing.T) {
	store := testutil.NewStore()
	svc := newTestService(store)
	ctx := context.Background()
	ana := store.AddUser("Ana", "ana@example.com")
	ben := store.AddUser("Ben", "ben@example.com")
	p := store.AddProposal(ana.ID, "Guitar for Spanish", []string{"Guitar"}, []string{"Spanish"})

	_, err := svc.Apply(ctx, ben.ID, uuid.New(), appDto.ApplyRequest{PitchMessage: "hi"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = svc.Apply(ctx, ben.ID, p.ID, appDto.ApplyRequest{PitchMessage: "<b></b>"})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	require.NoError(t, store.Proposals().UpdateStatus(ctx, p.ID, entity.ProposalStatusClosed))
	_, err = svc.Apply(ctx, ben.ID, p.ID, appDto.ApplyRequest{PitchMessage: "hi"})
	assert.ErrorIs(t, err, apperror.ErrBusinessRule)
}

func TestListForProposal(t *testing.T) {
	store := testutil.NewStore()
	svc := newTestService(store)
	ctx := context.Background()
	ana := store.AddUser("Ana", "ana@example.com")
	ben := store.AddUser("Ben", "ben@example.com")
	cara := store.AddUser("Cara", "cara@example.com")
	store.AddUserSkill(ben.ID, "Spanish")
	hidden := store.AddUserSkill(ben.ID, "Poker")
	require.NoError(t, store.Skills().SetUserSkillVisibility(ctx, hidden.ID, false))
	p := store.AddProposal(ana.ID, "Guitar for Spanish", []string{"Guitar"}, []string{"Spanish"})

	_, err := svc.Apply(ctx, ben.ID, p.ID, appDto.ApplyRequest{PitchMessage: "first"})
	require.NoError(t, err)
	_, err = svc.Apply(ctx, cara.ID, p.ID, appDto.ApplyRequest{PitchMessage: "second"})
	require.NoError(t, err)

	_, err = svc.ListForProposal(ctx, ben.ID, p.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	apps, err := svc.ListForProposal(ctx, ana.ID, p.ID)
	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.Equal(t, "Cara", apps[0].Applicant.Name, "newest first")
	require.Len(t, apps[1].Applicant.Skills, 1)
	assert.Equal(t, "Spanish", apps[1].Applicant.Skills[0].Name)

	incoming, err := svc.ListIncoming(ctx, ana.ID)
	require.NoError(t, err)
	assert.Len(t, incoming, 2)

	mine, err := svc.ListMine(ctx, ben.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.NotNil(t, mine[0].Proposal.Owner)
	assert.Equal(t, "Ana", mine[0].Proposal.Owner.Name)
}

func TestUpdateApplicationStatus(t *testing.T) {
	store := testutil.NewStore()
	svc := newTestService(store)
	ctx := context.Background()
	ana := store.AddUser("Ana", "ana@example.com")
	ben := store.AddUser("Ben", "ben@example.com")
	p := store.AddProposal(ana.ID, "Guitar for Spanish", []string{"Guitar"}, []string{"Spanish"})

	app, err := svc.Apply(ctx, ben.ID, p.ID, appDto.ApplyRequest{PitchMessage: "hi"})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, ana.ID, app.ID, "ACCEPTED")
	assert.ErrorIs(t, err, apperror.ErrBusinessRule)

	_, err = svc.UpdateStatus(ctx, ben.ID, app.ID, "REJECTED")
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = svc.UpdateStatus(ctx, ana.ID, app.ID, "maybe")
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	res, err := svc.UpdateStatus(ctx, ana.ID, app.ID, "rejected")
	require.NoError(t, err)
	assert.Equal(t, "REJECTED", res.Status)

	require.NoError(t, store.Applications().UpdateStatus(ctx, app.ID, entity.ApplicationStatusAccepted))
	_, err = svc.UpdateStatus(ctx, ana.ID, app.ID, "PENDING")
	assert.ErrorIs(t, err, apperror.ErrBusinessRule)
}
