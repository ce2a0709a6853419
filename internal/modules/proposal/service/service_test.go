package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"anoa.com/skillswap/internal/entity"
	proposalDto "anoa.com/skillswap/internal/modules/proposal/dto"
	reviewService "anoa.com/skillswap/internal/modules/review/service"
	skillService "anoa.com/skillswap/internal/modules/skill/service"
	"anoa.com/skillswap/internal/testutil"
	"anoa.com/skillswap/pkg/apperror"
	"anoa.com/skillswap/pkg/ratelimiter"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store *testutil.Store
	index *testutil.Index
	svc   ProposalService
}

func newFixture(t *testing.T, limiter *ratelimiter.Limiter) fixture {
	t.Helper()

	store := testutil.NewStore()
	index := testutil.NewIndex()
	reviews := reviewService.NewReviewService(store.Reviews(), store.Swaps(), store.Skills(), store.Tx())
	svc := NewProposalService(store.Proposals(), skillService.NewSkillService(store.Skills()), reviews, index, limiter, 0, store.Tx())

	return fixture{store: store, index: index, svc: svc}
}

func validRequest() proposalDto.CreateProposalRequest {
	return proposalDto.CreateProposalRequest{
		Title:         "Guitar for Spanish",
		Description:   "I can teach beginner guitar chords in exchange for Spanish.",
		Modality:      "Remote",
		OfferedSkills: []string{"Guitar"},
		NeededSkills:  []string{"Spanish"},
	}
}

func TestCreateProposal(t *testing.T) {
	f := newFixture(t, nil)
	owner := f.store.AddUser("Ana", "ana@example.com")

	res, err := f.svc.Create(context.Background(), owner.ID, validRequest())
	require.NoError(t, err)

	assert.Equal(t, "OPEN", res.Status)
	assert.Equal(t, "REMOTE", res.Modality)
	assert.Equal(t, owner.ID, res.Owner.ID)
	require.Len(t, res.OfferedSkills, 1)
	assert.Equal(t, "Guitar", res.OfferedSkills[0].Name)
	require.Len(t, res.NeededSkills, 1)
	assert.Equal(t, "Spanish", res.NeededSkills[0].Name)
	assert.True(t, f.index.Has(res.ID))
}

func TestCreateProposalRequiresOwner(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.Create(context.Background(), uuid.Nil, validRequest())
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestCreateProposalShortTitle(t *testing.T) {
	f := newFixture(t, nil)
	owner := f.store.AddUser("Ana", "ana@example.com")

	for _, title := range []string{"", "a", "Gtr", "four"} {
		req := validRequest()
		req.Title = title

		_, err := f.svc.Create(context.Background(), owner.ID, req)

		var ve *apperror.ValidationError
		require.True(t, errors.As(err, &ve), "title %q", title)
		assert.Contains(t, ve.Fields, "title")
		assert.Contains(t, ve.Fields["title"], "Title")
		assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	}
	assert.Equal(t, 0, f.store.Count("proposals"))
}

func TestCreateProposalValidation(t *testing.T) {
	f := newFixture(t, nil)
	owner := f.store.AddUser("Ana", "ana@example.com")

	tests := []struct {
		name  string
		edit  func(*proposalDto.CreateProposalRequest)
		field string
	}{
		{"short description", func(r *proposalDto.CreateProposalRequest) { r.Description = "too short" }, "description"},
		{"long description", func(r *proposalDto.CreateProposalRequest) { r.Description = strings.Repeat("x", 501) }, "description"},
		{"unknown modality", func(r *proposalDto.CreateProposalRequest) { r.Modality = "Hybrid" }, "modality"},
		{"blank offered skills", func(r *proposalDto.CreateProposalRequest) { r.OfferedSkills = []string{" ", ""} }, "offered_skills"},
		{"no needed skills", func(r *proposalDto.CreateProposalRequest) { r.NeededSkills = nil }, "needed_skills"},
		{"long skill name", func(r *proposalDto.CreateProposalRequest) { r.NeededSkills = []string{strings.Repeat("s", 51)} }, "needed_skills[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.edit(&req)

			_, err := f.svc.Create(context.Background(), owner.ID, req)

			var ve *apperror.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Contains(t, ve.Fields, tt.field)
		})
	}
}

func TestCreateProposalNormalizesInput(t *testing.T) {
	f := newFixture(t, nil)
	owner := f.store.AddUser("Ana", "ana@example.com")

	req := validRequest()
	req.Title = "  <b>Guitar</b> lessons  "
	req.Modality = "in-person"
	req.OfferedSkills = []string{" Guitar , Ukulele", "Guitar"}

	res, err := f.svc.Create(context.Background(), owner.ID, req)
	require.NoError(t, err)

	assert.Equal(t, "Guitar lessons", res.Title)
	assert.Equal(t, "IN_PERSON", res.Modality)
	require.Len(t, res.OfferedSkills, 2)
	assert.Equal(t, "Guitar", res.OfferedSkills[0].Name)
	assert.Equal(t, "Ukulele", res.OfferedSkills[1].Name)
}

func TestCreateProposalRateLimited(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := testutil.NewStore()
	svc := NewProposalService(store.Proposals(), skillService.NewSkillService(store.Skills()), nil, nil, ratelimiter.New(rdb), time.Minute, store.Tx())
	owner := store.AddUser("Ana", "ana@example.com")

	_, err := svc.Create(context.Background(), owner.ID, validRequest())
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), owner.ID, validRequest())
	var rlErr *ratelimiter.RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.ErrorIs(t, err, apperror.ErrRateLimitExceeded)
	assert.Equal(t, 1, store.Count("proposals"))
}

func TestCreateProposalFailureReleasesCooldown(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := testutil.NewStore()
	svc := NewProposalService(store.Proposals(), skillService.NewSkillService(store.Skills()), nil, nil, ratelimiter.New(rdb), time.Minute, store.Tx())
	owner := store.AddUser("Ana", "ana@example.com")

	store.Fail["proposals.Create"] = errors.New("db down")
	_, err := svc.Create(context.Background(), owner.ID, validRequest())
	require.Error(t, err)
	assert.Equal(t, 0, store.Count("skills"), "skill creation rolls back with the proposal")

	delete(store.Fail, "proposals.Create")
	_, err = svc.Create(context.Background(), owner.ID, validRequest())
	assert.NoError(t, err)
}

func TestListPublicFilters(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	ana := f.store.AddUser("Ana", "ana@example.com")
	ben := f.store.AddUser("Ben", "ben@example.com")

	guitar := f.store.AddProposal(ana.ID, "Guitar for Spanish", []string{"Guitar"}, []string{"Spanish"})
	cooking := f.store.AddProposal(ben.ID, "Cooking for Go", []string{"Cooking"}, []string{"Go"})
	closed := f.store.AddProposal(ben.ID, "Closed Guitar", []string{"Guitar"}, []string{"Drums"})
	require.NoError(t, f.store.Proposals().UpdateStatus(ctx, closed.ID, entity.ProposalStatusClosed))

	res, err := f.svc.ListPublic(ctx, proposalDto.ProposalFilter{})
	require.NoError(t, err)
	require.Len(t, res.Data, 2)
	assert.Equal(t, cooking.ID, res.Data[0].ID, "newest first")
	assert.Equal(t, int64(2), res.Meta.TotalItems)

	res, err = f.svc.ListPublic(ctx, proposalDto.ProposalFilter{Search: "spanish"})
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.Equal(t, guitar.ID, res.Data[0].ID)

	res, err = f.svc.ListPublic(ctx, proposalDto.ProposalFilter{Search: "ben"})
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.Equal(t, cooking.ID, res.Data[0].ID)

	goID := cooking.NeededSkills[0].ID.String()
	res, err = f.svc.ListPublic(ctx, proposalDto.ProposalFilter{WantSkillIDs: []string{goID}})
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.Equal(t, cooking.ID, res.Data[0].ID)

	guitarID := guitar.OfferedSkills[0].ID.String()
	res, err = f.svc.ListPublic(ctx, proposalDto.ProposalFilter{HaveSkillIDs: []string{goID + "," + guitarID}})
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.Equal(t, guitar.ID, res.Data[0].ID)

	res, err = f.svc.ListPublic(ctx, proposalDto.ProposalFilter{Modality: "In-Person"})
	require.NoError(t, err)
	assert.Empty(t, res.Data)

	_, err = f.svc.ListPublic(ctx, proposalDto.ProposalFilter{WantSkillIDs: []string{"nope"}})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestListPublicPagination(t *testing.T) {
	f := newFixture(t, nil)
	owner := f.store.AddUser("Ana", "ana@example.com")
	for i := 0; i < 5; i++ {
		f.store.AddProposal(owner.ID, "Proposal", []string{"A"}, []string{"B"})
	}

	res, err := f.svc.ListPublic(context.Background(), proposalDto.ProposalFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, res.Data, 2)
	assert.Equal(t, int64(5), res.Meta.TotalItems)
	assert.Equal(t, 3, res.Meta.TotalPages)
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	ana := f.store.AddUser("Ana", "ana@example.com")
	ben := f.store.AddUser("Ben", "ben@example.com")
	p := f.store.AddProposal(ana.ID, "Guitar for Spanish", []string{"Guitar"}, []string{"Spanish"})

	_, err := f.svc.UpdateStatus(ctx, ana.ID, p.ID, "paused")
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = f.svc.UpdateStatus(ctx, ben.ID, p.ID, "CLOSED")
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = f.svc.UpdateStatus(ctx, ana.ID, uuid.New(), "CLOSED")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	res, err := f.svc.Rescind(ctx, ana.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "CLOSED", res.Status)
	assert.False(t, f.index.Has(p.ID))

	res, err = f.svc.UpdateStatus(ctx, ana.ID, p.ID, "open")
	require.NoError(t, err)
	assert.Equal(t, "OPEN", res.Status)
	assert.True(t, f.index.Has(p.ID))
}

func TestCloseRejectedWithSwaps(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	ana := f.store.AddUser("Ana", "ana@example.com")
	ben := f.store.AddUser("Ben", "ben@example.com")
	p := f.store.AddProposal(ana.ID, "Guitar for Spanish", []string{"Guitar"}, []string{"Spanish"})

	app := &entity.Application{ProposalID: p.ID, ApplicantID: ben.ID, PitchMessage: "hi"}
	require.NoError(t, f.store.Applications().Create(ctx, app))
	require.NoError(t, f.store.Swaps().Create(ctx, &entity.Swap{
		ProposalID: p.ID, ApplicationID: app.ID, TeacherID: ana.ID, StudentID: ben.ID,
	}))

	_, err := f.svc.Rescind(ctx, ana.ID, p.ID)
	assert.ErrorIs(t, err, apperror.ErrBusinessRule)

	got, _ := f.store.Proposal(p.ID)
	assert.Equal(t, entity.ProposalStatusOpen, got.Status)
}

func TestGetAndDelete(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	ana := f.store.AddUser("Ana", "ana@example.com")
	ben := f.store.AddUser("Ben", "ben@example.com")
	p := f.store.AddProposal(ana.ID, "Guitar for Spanish", []string{"Guitar"}, []string{"Spanish"})

	detail, err := f.svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", detail.Owner.Name)
	require.NotNil(t, detail.OwnerReputation)
	assert.Nil(t, detail.OwnerReputation.BattingAverage)

	assert.ErrorIs(t, f.svc.Delete(ctx, ben.ID, p.ID), apperror.ErrForbidden)
	require.NoError(t, f.svc.Delete(ctx, ana.ID, p.ID))
	assert.Contains(t, f.index.Deleted, p.ID)

	_, err = f.svc.Get(ctx, p.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, ana.ID, p.ID), apperror.ErrNotFound)
}

func TestSearchUsesIndexOrder(t *testing.T) {
	f := newFixture(t, nil)
	owner := f.store.AddUser("Ana", "ana@example.com")
	first := f.store.AddProposal(owner.ID, "First", []string{"A"}, []string{"B"})
	second := f.store.AddProposal(owner.ID, "Second", []string{"A"}, []string{"B"})
	f.index.Hits = []uuid.UUID{first.ID, uuid.New(), second.ID}

	res, err := f.svc.Search(context.Background(), proposalDto.ProposalFilter{Search: "anything"})
	require.NoError(t, err)
	require.Len(t, res.Data, 2)
	assert.Equal(t, first.ID, res.Data[0].ID)
	assert.Equal(t, second.ID, res.Data[1].ID)
	assert.Equal(t, int64(3), res.Meta.TotalItems)
}

func TestSearchFallsBackWithoutIndex(t *testing.T) {
	store := testutil.NewStore()
	svc := NewProposalService(store.Proposals(), skillService.NewSkillService(store.Skills()), nil, nil, nil, 0, store.Tx())
	owner := store.AddUser("Ana", "ana@example.com")
	p := store.AddProposal(owner.ID, "Guitar for Spanish", []string{"Guitar"}, []string{"Spanish"})

	res, err := svc.Search(context.Background(), proposalDto.ProposalFilter{Search: "guitar"})
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.Equal(t, p.ID, res.Data[0].ID)
}

func TestParseIDs(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	ids, err := parseIDs([]string{a.String() + ", " + b.String(), ""})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a, b}, ids)

	_, err = parseIDs([]string{"not-a-uuid"})
	assert.Error(t, err)
}
