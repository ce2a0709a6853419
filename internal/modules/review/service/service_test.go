package service

import (
	"context"
	"errors"
	"testing"

	"anoa.com/skillswap/internal/entity"
	reviewDto "anoa.com/skillswap/internal/modules/review/dto"
	"anoa.com/skillswap/internal/testutil"
	"anoa.com/skillswap/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store   *testutil.Store
	svc     ReviewService
	teacher entity.User
	student entity.User
}

func newFixture() fixture {
	store := testutil.NewStore()
	return fixture{
		store:   store,
		svc:     NewReviewService(store.Reviews(), store.Swaps(), store.Skills(), store.Tx()),
		teacher: store.AddUser("Ana", "ana@example.com"),
		student: store.AddUser("Ben", "ben@example.com"),
	}
}

// addSwap creates a swap over a fresh proposal offering offered.
func (f fixture) addSwap(t *testing.T, teacher, student entity.User, status entity.SwapStatus, offered ...string) *entity.Swap {
	t.Helper()
	ctx := context.Background()

	p := f.store.AddProposal(teacher.ID, "Proposal", offered, []string{"Anything"})
	app := &entity.Application{ProposalID: p.ID, ApplicantID: student.ID, PitchMessage: "hi"}
	require.NoError(t, f.store.Applications().Create(ctx, app))
	swap := &entity.Swap{ProposalID: p.ID, ApplicationID: app.ID, TeacherID: teacher.ID, StudentID: student.ID, Status: status}
	require.NoError(t, f.store.Swaps().Create(ctx, swap))
	return swap
}

func ptr(s string) *string { return &s }

func TestCreateReviewRequiresCompletedSwap(t *testing.T) {
	f := newFixture()

	for _, status := range []entity.SwapStatus{entity.SwapStatusActive, entity.SwapStatusCancelled} {
		swap := f.addSwap(t, f.teacher, f.student, status, "Guitar")
		_, err := f.svc.CreateReview(context.Background(), f.student.ID, swap.ID, reviewDto.CreateReviewRequest{Rating: 5})
		assert.ErrorIs(t, err, apperror.ErrBusinessRule)
	}
	assert.Equal(t, 0, f.store.Count("reviews"))
}

func TestCreateReviewOncePerAuthor(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	swap := f.addSwap(t, f.teacher, f.student, entity.SwapStatusCompleted, "Guitar")

	res, err := f.svc.CreateReview(ctx, f.student.ID, swap.ID, reviewDto.CreateReviewRequest{Rating: 4, Comment: ptr(" <em>Great</em> teacher ")})
	require.NoError(t, err)
	assert.Equal(t, f.teacher.ID, res.ReceiverID)
	assert.Equal(t, "Ben", res.Author.Name)
	require.NotNil(t, res.Comment)
	assert.Equal(t, "Great teacher", *res.Comment)

	_, err = f.svc.CreateReview(ctx, f.student.ID, swap.ID, reviewDto.CreateReviewRequest{Rating: 1})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	_, err = f.svc.CreateReview(ctx, f.teacher.ID, swap.ID, reviewDto.CreateReviewRequest{Rating: 5})
	assert.NoError(t, err, "the other participant may still review")
	assert.Equal(t, 2, f.store.Count("reviews"))
}

func TestCreateReviewRejects(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	swap := f.addSwap(t, f.teacher, f.student, entity.SwapStatusCompleted, "Guitar")
	stranger := f.store.AddUser("Cara", "cara@example.com")

	_, err := f.svc.CreateReview(ctx, stranger.ID, swap.ID, reviewDto.CreateReviewRequest{Rating: 5})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	for _, rating := range []int{0, 6, -1} {
		_, err = f.svc.CreateReview(ctx, f.student.ID, swap.ID, reviewDto.CreateReviewRequest{Rating: rating})
		assert.ErrorIs(t, err, apperror.ErrInvalidInput, "rating %d", rating)
	}

	_, err = f.svc.CreateReview(ctx, f.student.ID, uuid.New(), reviewDto.CreateReviewRequest{Rating: 5})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestEndorsement(t *testing.T) {
	ctx := context.Background()

	t.Run("student positive review endorses held skills", func(t *testing.T) {
		f := newFixture()
		f.store.AddUserSkill(f.teacher.ID, "Guitar")
		swap := f.addSwap(t, f.teacher, f.student, entity.SwapStatusCompleted, "Guitar", "Piano")

		_, err := f.svc.CreateReview(ctx, f.student.ID, swap.ID, reviewDto.CreateReviewRequest{Rating: 4})
		require.NoError(t, err)

		us, ok := f.store.UserSkill(f.teacher.ID, "Guitar")
		require.True(t, ok)
		assert.Equal(t, 1, us.EndorsementCount)
		assert.Equal(t, entity.SkillSourceEndorsed, us.Source)

		_, ok = f.store.UserSkill(f.teacher.ID, "Piano")
		assert.False(t, ok, "missing user skills are not created")
	})

	t.Run("low rating does not endorse", func(t *testing.T) {
		f := newFixture()
		f.store.AddUserSkill(f.teacher.ID, "Guitar")
		swap := f.addSwap(t, f.teacher, f.student, entity.SwapStatusCompleted, "Guitar")

		_, err := f.svc.CreateReview(ctx, f.student.ID, swap.ID, reviewDto.CreateReviewRequest{Rating: 3})
		require.NoError(t, err)

		us, _ := f.store.UserSkill(f.teacher.ID, "Guitar")
		assert.Equal(t, 0, us.EndorsementCount)
		assert.Equal(t, entity.SkillSourceManual, us.Source)
	})

	t.Run("teacher review does not endorse", func(t *testing.T) {
		f := newFixture()
		f.store.AddUserSkill(f.teacher.ID, "Guitar")
		swap := f.addSwap(t, f.teacher, f.student, entity.SwapStatusCompleted, "Guitar")

		_, err := f.svc.CreateReview(ctx, f.teacher.ID, swap.ID, reviewDto.CreateReviewRequest{Rating: 5})
		require.NoError(t, err)

		us, _ := f.store.UserSkill(f.teacher.ID, "Guitar")
		assert.Equal(t, 0, us.EndorsementCount)
	})

	t.Run("endorsement failure rolls back the review", func(t *testing.T) {
		f := newFixture()
		swap := f.addSwap(t, f.teacher, f.student, entity.SwapStatusCompleted, "Guitar")
		f.store.Fail["skills.Endorse"] = errors.New("db down")

		_, err := f.svc.CreateReview(ctx, f.student.ID, swap.ID, reviewDto.CreateReviewRequest{Rating: 5})
		require.Error(t, err)
		assert.Equal(t, 0, f.store.Count("reviews"))
	})
}

func TestReputationStatsEmpty(t *testing.T) {
	f := newFixture()

	stats, err := f.svc.ReputationStats(context.Background(), f.teacher.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(0), stats.CompletedSwaps)
	assert.Equal(t, int64(0), stats.TotalReviews)
	assert.Nil(t, stats.BattingAverage)
	assert.Zero(t, stats.AverageRating)
}

func TestReputationStats(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	cara := f.store.AddUser("Cara", "cara@example.com")
	dan := f.store.AddUser("Dan", "dan@example.com")

	s1 := f.addSwap(t, f.teacher, f.student, entity.SwapStatusCompleted, "Guitar")
	s2 := f.addSwap(t, f.teacher, cara, entity.SwapStatusCompleted, "Guitar")
	s3 := f.addSwap(t, f.teacher, dan, entity.SwapStatusCancelled, "Guitar")

	for _, r := range []entity.Review{
		{SwapID: s1.ID, AuthorID: f.student.ID, ReceiverID: f.teacher.ID, Rating: 5},
		{SwapID: s2.ID, AuthorID: cara.ID, ReceiverID: f.teacher.ID, Rating: 5},
		{SwapID: s3.ID, AuthorID: dan.ID, ReceiverID: f.teacher.ID, Rating: 2},
	} {
		require.NoError(t, f.store.Reviews().Create(ctx, &r))
	}

	stats, err := f.svc.ReputationStats(ctx, f.teacher.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.CompletedSwaps)
	assert.Equal(t, int64(3), stats.TotalReviews)
	assert.Equal(t, int64(2), stats.PositiveReviews)
	require.NotNil(t, stats.BattingAverage)
	assert.InDelta(t, 1.0, *stats.BattingAverage, 1e-9)
	assert.InDelta(t, 4.0, stats.AverageRating, 1e-9)
}

func TestReputationStatsWithoutCompletedSwaps(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	swap := f.addSwap(t, f.teacher, f.student, entity.SwapStatusActive, "Guitar")
	require.NoError(t, f.store.Reviews().Create(ctx, &entity.Review{SwapID: swap.ID, AuthorID: f.student.ID, ReceiverID: f.teacher.ID, Rating: 4}))

	stats, err := f.svc.ReputationStats(ctx, f.teacher.ID)
	require.NoError(t, err)
	require.NotNil(t, stats.BattingAverage)
	assert.InDelta(t, 1.0, *stats.BattingAverage, 1e-9, "divides by max(completed, 1)")
}

func TestListForUser(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	swap := f.addSwap(t, f.teacher, f.student, entity.SwapStatusCompleted, "Guitar")

	_, err := f.svc.CreateReview(ctx, f.student.ID, swap.ID, reviewDto.CreateReviewRequest{Rating: 5})
	require.NoError(t, err)

	reviews, err := f.svc.ListForUser(ctx, f.teacher.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "Ben", reviews[0].Author.Name)
	assert.Equal(t, "Proposal", reviews[0].ProposalTitle)

	reviews, err = f.svc.ListForUser(ctx, f.student.ID)
	require.NoError(t, err)
	assert.Empty(t, reviews)
}
