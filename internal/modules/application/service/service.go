package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"anoa.com/skillswap/internal/entity"
	appDto "anoa.com/skillswap/internal/modules/application/dto"
	appRepo "anoa.com/skillswap/internal/modules/application/repository"
	notifService "anoa.com/skillswap/internal/modules/notification/service"
	proposalRepo "anoa.com/skillswap/internal/modules/proposal/repository"
	userRepo "anoa.com/skillswap/internal/modules/user/repository"
	"anoa.com/skillswap/pkg/apperror"
	"anoa.com/skillswap/pkg/database"
	"anoa.com/skillswap/pkg/ratelimiter"
	"anoa.com/skillswap/pkg/sanitize"
	"anoa.com/skillswap/pkg/validator"
	"github.com/google/uuid"
)

const incomingLimit = 20

type ApplicationService interface {
	Apply(ctx context.Context, applicantID, proposalID uuid.UUID, req appDto.ApplyRequest) (*appDto.ApplicationResponse, error)
	ListForProposal(ctx context.Context, callerID, proposalID uuid.UUID) ([]appDto.ApplicationResponse, error)
	ListMine(ctx context.Context, applicantID uuid.UUID) ([]appDto.ApplicationResponse, error)
	ListIncoming(ctx context.Context, ownerID uuid.UUID) ([]appDto.ApplicationResponse, error)
	UpdateStatus(ctx context.Context, callerID, applicationID uuid.UUID, status string) (*appDto.ApplicationResponse, error)
}

type applicationService struct {
	repo          appRepo.ApplicationRepository
	proposalRepo  proposalRepo.ProposalRepository
	userRepo      userRepo.UserRepository
	notifications notifService.NotificationService
	limiter       *ratelimiter.Limiter
	cooldown      time.Duration
	tx            database.Transactor
}

func NewApplicationService(
	repo appRepo.ApplicationRepository,
	proposalRepo proposalRepo.ProposalRepository,
	userRepo userRepo.UserRepository,
	notifications notifService.NotificationService,
	limiter *ratelimiter.Limiter,
	cooldown time.Duration,
	tx database.Transactor,
) ApplicationService {
	return &applicationService{
		repo:          repo,
		proposalRepo:  proposalRepo,
		userRepo:      userRepo,
		notifications: notifications,
		limiter:       limiter,
		cooldown:      cooldown,
		tx:            tx,
	}
}

func (s *applicationService) Apply(ctx context.Context, applicantID, proposalID uuid.UUID, req appDto.ApplyRequest) (*appDto.ApplicationResponse, error) {
	proposal, err := s.proposalRepo.FindByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}

	if proposal.OwnerID == applicantID {
		return nil, apperror.ErrSelfApplication
	}

	exists, err := s.repo.Exists(ctx, proposal.ID, applicantID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("you already applied to this proposal: %w", apperror.ErrConflict)
	}

	if proposal.Status == entity.ProposalStatusClosed {
		return nil, fmt.Errorf("this proposal is closed: %w", apperror.ErrBusinessRule)
	}

	req.PitchMessage = sanitize.Text(req.PitchMessage)
	if err := validator.Struct(req); err != nil {
		return nil, err
	}

	applicant, err := s.userRepo.FindByID(ctx, applicantID)
	if err != nil {
		return nil, err
	}

	release, err := s.limiter.Acquire(ctx, applicantID, ratelimiter.ScopeApply, s.cooldown)
	if err != nil {
		return nil, err
	}
	creationFailed := true
	defer func() {
		if creationFailed {
			release()
		}
	}()

	application := &entity.Application{
		ProposalID:   proposal.ID,
		ApplicantID:  applicantID,
		PitchMessage: req.PitchMessage,
		Status:       entity.ApplicationStatusPending,
	}
	notification := &entity.Notification{
		UserID:  proposal.OwnerID,
		Type:    entity.NotificationApplicationReceived,
		Message: fmt.Sprintf("%s applied to \"%s\"", applicant.Name, proposal.Title),
		Link:    fmt.Sprintf("/dashboard?tab=applications&proposalId=%s", proposal.ID),
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, application); err != nil {
			return err
		}
		return s.notifications.Create(ctx, notification)
	})
	if err != nil {
		return nil, err
	}
	creationFailed = false

	s.notifications.Publish(ctx, notification)

	application.Proposal = *proposal
	res := toResponse(application, false, true)
	return &res, nil
}

func (s *applicationService) ListForProposal(ctx context.Context, callerID, proposalID uuid.UUID) ([]appDto.ApplicationResponse, error) {
	proposal, err := s.proposalRepo.FindByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}

	if proposal.OwnerID != callerID {
		return nil, fmt.Errorf("only the owner can view applications: %w", apperror.ErrForbidden)
	}

	applications, err := s.repo.ListByProposal(ctx, proposal.ID)
	if err != nil {
		return nil, err
	}
	return toResponses(applications, true, false), nil
}

func (s *applicationService) ListMine(ctx context.Context, applicantID uuid.UUID) ([]appDto.ApplicationResponse, error) {
	applications, err := s.repo.ListByApplicant(ctx, applicantID)
	if err != nil {
		return nil, err
	}
	return toResponses(applications, false, true), nil
}

func (s *applicationService) ListIncoming(ctx context.Context, ownerID uuid.UUID) ([]appDto.ApplicationResponse, error) {
	applications, err := s.repo.ListForOwner(ctx, ownerID, incomingLimit)
	if err != nil {
		return nil, err
	}
	return toResponses(applications, true, true), nil
}

func (s *applicationService) UpdateStatus(ctx context.Context, callerID, applicationID uuid.UUID, status string) (*appDto.ApplicationResponse, error) {
	target := entity.ApplicationStatus(strings.ToUpper(strings.TrimSpace(status)))
	if !target.Valid() {
		return nil, apperror.NewValidationError(map[string]string{
			"status": "Status must be one of: PENDING, REJECTED",
		})
	}
	if target == entity.ApplicationStatusAccepted {
		return nil, fmt.Errorf("accept applications through the accept endpoint: %w", apperror.ErrBusinessRule)
	}

	application, err := s.repo.FindByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	if application.Proposal.OwnerID != callerID {
		return nil, fmt.Errorf("only the proposal owner can update applications: %w", apperror.ErrForbidden)
	}

	if application.Status == entity.ApplicationStatusAccepted {
		return nil, fmt.Errorf("an accepted application cannot change status: %w", apperror.ErrBusinessRule)
	}

	if application.Status != target {
		if err := s.repo.UpdateStatus(ctx, application.ID, target); err != nil {
			return nil, err
		}
		application.Status = target
	}

	res := toResponse(application, true, true)
	return &res, nil
}
