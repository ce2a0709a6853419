package service

import (
	"context"
	"fmt"
	"math"

	"anoa.com/skillswap/internal/entity"
	reviewDto "anoa.com/skillswap/internal/modules/review/dto"
	reviewRepo "anoa.com/skillswap/internal/modules/review/repository"
	skillRepo "anoa.com/skillswap/internal/modules/skill/repository"
	swapRepo "anoa.com/skillswap/internal/modules/swap/repository"
	userDto "anoa.com/skillswap/internal/modules/user/dto"
	"anoa.com/skillswap/pkg/apperror"
	"anoa.com/skillswap/pkg/database"
	"anoa.com/skillswap/pkg/sanitize"
	"anoa.com/skillswap/pkg/validator"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ReviewService interface {
	CreateReview(ctx context.Context, authorID, swapID uuid.UUID, req reviewDto.CreateReviewRequest) (*reviewDto.ReviewResponse, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]reviewDto.ReviewResponse, error)
	ReputationStats(ctx context.Context, userID uuid.UUID) (*reviewDto.ReputationStats, error)
}

type reviewService struct {
	reviewRepo reviewRepo.ReviewRepository
	swapRepo   swapRepo.SwapRepository
	skillRepo  skillRepo.SkillRepository
	tx         database.Transactor
}

func NewReviewService(reviewRepo reviewRepo.ReviewRepository, swapRepo swapRepo.SwapRepository, skillRepo skillRepo.SkillRepository, tx database.Transactor) ReviewService {
	return &reviewService{
		reviewRepo: reviewRepo,
		swapRepo:   swapRepo,
		skillRepo:  skillRepo,
		tx:         tx,
	}
}

func (s *reviewService) CreateReview(ctx context.Context, authorID, swapID uuid.UUID, req reviewDto.CreateReviewRequest) (*reviewDto.ReviewResponse, error) {
	if err := validator.Struct(req); err != nil {
		return nil, err
	}

	swap, err := s.swapRepo.FindByID(ctx, swapID)
	if err != nil {
		return nil, err
	}

	if !swap.IsParticipant(authorID) {
		return nil, fmt.Errorf("only swap participants can leave a review: %w", apperror.ErrForbidden)
	}

	if swap.Status != entity.SwapStatusCompleted {
		return nil, fmt.Errorf("reviews open once the swap is completed: %w", apperror.ErrBusinessRule)
	}

	exists, err := s.reviewRepo.Exists(ctx, swap.ID, authorID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("you already reviewed this swap: %w", apperror.ErrConflict)
	}

	review := &entity.Review{
		SwapID:     swap.ID,
		AuthorID:   authorID,
		ReceiverID: swap.Partner(authorID),
		Rating:     req.Rating,
		Comment:    sanitize.TextPtr(req.Comment),
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.reviewRepo.Create(ctx, review); err != nil {
			return err
		}

		// Only the learner endorses, and only for a positive rating.
		if authorID != swap.StudentID || !review.IsPositive() {
			return nil
		}

		skillIDs := make([]uuid.UUID, len(swap.Proposal.OfferedSkills))
		for i, sk := range swap.Proposal.OfferedSkills {
			skillIDs[i] = sk.ID
		}

		endorsed, err := s.skillRepo.Endorse(ctx, swap.TeacherID, skillIDs)
		if err != nil {
			return err
		}
		zap.L().Debug("skills endorsed",
			zap.String("teacher_id", swap.TeacherID.String()),
			zap.Int64("count", endorsed),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}

	author := &swap.Student
	if authorID == swap.TeacherID {
		author = &swap.Teacher
	}
	review.Author = *author
	review.Swap = swap

	res := toResponse(review)
	return &res, nil
}

func (s *reviewService) ListForUser(ctx context.Context, userID uuid.UUID) ([]reviewDto.ReviewResponse, error) {
	reviews, err := s.reviewRepo.ListByReceiver(ctx, userID)
	if err != nil {
		return nil, err
	}

	res := make([]reviewDto.ReviewResponse, len(reviews))
	for i := range reviews {
		res[i] = toResponse(&reviews[i])
	}
	return res, nil
}

func (s *reviewService) ReputationStats(ctx context.Context, userID uuid.UUID) (*reviewDto.ReputationStats, error) {
	completed, err := s.swapRepo.CountCompleted(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats, err := s.reviewRepo.StatsForReceiver(ctx, userID)
	if err != nil {
		return nil, err
	}

	endorsements, err := s.skillRepo.CountEndorsed(ctx, userID)
	if err != nil {
		return nil, err
	}

	res := &reviewDto.ReputationStats{
		CompletedSwaps:    completed,
		TotalReviews:      stats.Total,
		PositiveReviews:   stats.Positive,
		AverageRating:     math.Round(stats.Average*10) / 10,
		TotalEndorsements: endorsements,
	}
	if stats.Total > 0 {
		avg := float64(stats.Positive) / float64(max(completed, 1))
		res.BattingAverage = &avg
	}
	return res, nil
}

func toResponse(r *entity.Review) reviewDto.ReviewResponse {
	res := reviewDto.ReviewResponse{
		ID:         r.ID,
		SwapID:     r.SwapID,
		Rating:     r.Rating,
		Comment:    r.Comment,
		Author:     userDto.ToSummary(&r.Author),
		ReceiverID: r.ReceiverID,
		CreatedAt:  r.CreatedAt,
	}
	if r.Swap != nil {
		res.ProposalTitle = r.Swap.Proposal.Title
	}
	return res
}
