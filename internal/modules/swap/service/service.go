package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"anoa.com/skillswap/internal/entity"
	appRepo "anoa.com/skillswap/internal/modules/application/repository"
	notifService "anoa.com/skillswap/internal/modules/notification/service"
	proposalRepo "anoa.com/skillswap/internal/modules/proposal/repository"
	reviewRepo "anoa.com/skillswap/internal/modules/review/repository"
	search "anoa.com/skillswap/internal/modules/search/service"
	swapDto "anoa.com/skillswap/internal/modules/swap/dto"
	swapRepo "anoa.com/skillswap/internal/modules/swap/repository"
	"anoa.com/skillswap/pkg/apperror"
	"anoa.com/skillswap/pkg/database"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SwapService interface {
	// AcceptApplication turns a pending application into a swap atomically.
	AcceptApplication(ctx context.Context, callerID, applicationID uuid.UUID) (*swapDto.SwapResponse, error)
	UpdateStatus(ctx context.Context, callerID, swapID uuid.UUID, status string) (*swapDto.SwapResponse, error)
	ListMine(ctx context.Context, callerID uuid.UUID, limit int) ([]swapDto.SwapResponse, error)
	Get(ctx context.Context, callerID, swapID uuid.UUID) (*swapDto.SwapResponse, error)
}

type swapService struct {
	repo          swapRepo.SwapRepository
	appRepo       appRepo.ApplicationRepository
	proposalRepo  proposalRepo.ProposalRepository
	reviewRepo    reviewRepo.ReviewRepository
	notifications notifService.NotificationService
	index         search.ProposalIndex
	tx            database.Transactor
	now           func() time.Time
}

func NewSwapService(
	repo swapRepo.SwapRepository,
	appRepo appRepo.ApplicationRepository,
	proposalRepo proposalRepo.ProposalRepository,
	reviewRepo reviewRepo.ReviewRepository,
	notifications notifService.NotificationService,
	index search.ProposalIndex,
	tx database.Transactor,
) SwapService {
	return &swapService{
		repo:          repo,
		appRepo:       appRepo,
		proposalRepo:  proposalRepo,
		reviewRepo:    reviewRepo,
		notifications: notifications,
		index:         index,
		tx:            tx,
		now:           time.Now,
	}
}

func (s *swapService) AcceptApplication(ctx context.Context, callerID, applicationID uuid.UUID) (*swapDto.SwapResponse, error) {
	var swap *entity.Swap
	var proposal *entity.Proposal
	var notification *entity.Notification

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		application, err := s.appRepo.FindByIDForUpdate(ctx, applicationID)
		if err != nil {
			return err
		}

		proposal, err = s.proposalRepo.FindByID(ctx, application.ProposalID)
		if err != nil {
			return err
		}

		if proposal.OwnerID != callerID {
			return fmt.Errorf("only the proposal owner can accept applications: %w", apperror.ErrForbidden)
		}

		exists, err := s.repo.ExistsForApplication(ctx, application.ID)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("a swap already exists for this application: %w", apperror.ErrConflict)
		}

		switch application.Status {
		case entity.ApplicationStatusRejected:
			return fmt.Errorf("a rejected application cannot be accepted: %w", apperror.ErrBusinessRule)
		case entity.ApplicationStatusAccepted:
			return fmt.Errorf("application already accepted: %w", apperror.ErrConflict)
		}

		if proposal.Status == entity.ProposalStatusClosed {
			return fmt.Errorf("this proposal is closed: %w", apperror.ErrBusinessRule)
		}

		swap = &entity.Swap{
			ProposalID:    proposal.ID,
			ApplicationID: application.ID,
			TeacherID:     proposal.OwnerID,
			StudentID:     application.ApplicantID,
			Status:        entity.SwapStatusActive,
			StartedAt:     s.now(),
		}
		if err := s.repo.Create(ctx, swap); err != nil {
			return err
		}

		if err := s.appRepo.UpdateStatus(ctx, application.ID, entity.ApplicationStatusAccepted); err != nil {
			return err
		}

		if err := s.proposalRepo.UpdateStatus(ctx, proposal.ID, entity.ProposalStatusInProgress); err != nil {
			return err
		}

		notification = &entity.Notification{
			UserID:  application.ApplicantID,
			Type:    entity.NotificationApplicationAccepted,
			Message: fmt.Sprintf("Your application to \"%s\" was accepted", proposal.Title),
			Link:    fmt.Sprintf("/dashboard?tab=active-swaps&swapId=%s", swap.ID),
		}
		return s.notifications.Create(ctx, notification)
	})
	if err != nil {
		return nil, err
	}

	s.notifications.Publish(ctx, notification)

	if s.index != nil {
		if err := s.index.DeleteProposal(swap.ProposalID); err != nil {
			zap.L().Warn("failed to remove proposal from index", zap.String("proposal_id", swap.ProposalID.String()), zap.Error(err))
		}
	}

	res, err := s.Get(ctx, callerID, swap.ID)
	if err != nil {
		// The swap is committed; answer from what was written.
		zap.L().Warn("failed to reload accepted swap", zap.String("swap_id", swap.ID.String()), zap.Error(err))
		proposal.Status = entity.ProposalStatusInProgress
		swap.Proposal = *proposal
		swap.Teacher = proposal.Owner
		swap.Student = entity.User{ID: swap.StudentID}
		fallback := toResponse(swap, callerID, false)
		return &fallback, nil
	}
	return res, nil
}

func (s *swapService) UpdateStatus(ctx context.Context, callerID, swapID uuid.UUID, status string) (*swapDto.SwapResponse, error) {
	target := entity.SwapStatus(strings.ToUpper(strings.TrimSpace(status)))
	if !target.Valid() {
		return nil, apperror.NewValidationError(map[string]string{
			"status": "Status must be one of: ACTIVE, COMPLETED, CANCELLED",
		})
	}

	swap, err := s.repo.FindByID(ctx, swapID)
	if err != nil {
		return nil, err
	}

	if !swap.IsParticipant(callerID) {
		return nil, fmt.Errorf("only swap participants can update it: %w", apperror.ErrForbidden)
	}

	if err := s.repo.UpdateStatus(ctx, swap.ID, target, s.now()); err != nil {
		return nil, err
	}

	return s.Get(ctx, callerID, swap.ID)
}

func (s *swapService) ListMine(ctx context.Context, callerID uuid.UUID, limit int) ([]swapDto.SwapResponse, error) {
	swaps, err := s.repo.ListByParticipant(ctx, callerID, limit)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(swaps))
	for i, sw := range swaps {
		ids[i] = sw.ID
	}
	reviewed, err := s.reviewRepo.ReviewedSwapIDs(ctx, callerID, ids)
	if err != nil {
		return nil, err
	}

	res := make([]swapDto.SwapResponse, len(swaps))
	for i := range swaps {
		res[i] = toResponse(&swaps[i], callerID, reviewed[swaps[i].ID])
	}
	return res, nil
}

func (s *swapService) Get(ctx context.Context, callerID, swapID uuid.UUID) (*swapDto.SwapResponse, error) {
	swap, err := s.repo.FindByID(ctx, swapID)
	if err != nil {
		return nil, err
	}

	if !swap.IsParticipant(callerID) {
		return nil, fmt.Errorf("only swap participants can view it: %w", apperror.ErrForbidden)
	}

	reviewed, err := s.reviewRepo.ReviewedSwapIDs(ctx, callerID, []uuid.UUID{swap.ID})
	if err != nil {
		return nil, err
	}

	res := toResponse(swap, callerID, reviewed[swap.ID])
	return &res, nil
}
