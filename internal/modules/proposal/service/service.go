package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"anoa.com/skillswap/internal/entity"
	proposalDto "anoa.com/skillswap/internal/modules/proposal/dto"
	proposalRepo "anoa.com/skillswap/internal/modules/proposal/repository"
	reviewService "anoa.com/skillswap/internal/modules/review/service"
	search "anoa.com/skillswap/internal/modules/search/service"
	skillService "anoa.com/skillswap/internal/modules/skill/service"
	"anoa.com/skillswap/pkg/apperror"
	"anoa.com/skillswap/pkg/database"
	commonDto "anoa.com/skillswap/pkg/dto"
	"anoa.com/skillswap/pkg/ratelimiter"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxPageSize     = 50
)

type ProposalService interface {
	Create(ctx context.Context, ownerID uuid.UUID, req proposalDto.CreateProposalRequest) (*proposalDto.ProposalResponse, error)
	ListPublic(ctx context.Context, filter proposalDto.ProposalFilter) (*proposalDto.PaginatedProposalResponse, error)
	ListMine(ctx context.Context, ownerID uuid.UUID) ([]proposalDto.ProposalResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*proposalDto.ProposalDetailResponse, error)
	Search(ctx context.Context, filter proposalDto.ProposalFilter) (*proposalDto.PaginatedProposalResponse, error)
	UpdateStatus(ctx context.Context, callerID, id uuid.UUID, status string) (*proposalDto.ProposalResponse, error)
	Rescind(ctx context.Context, callerID, id uuid.UUID) (*proposalDto.ProposalResponse, error)
	Delete(ctx context.Context, callerID, id uuid.UUID) error
}

type proposalService struct {
	repo     proposalRepo.ProposalRepository
	skills   skillService.SkillService
	reviews  reviewService.ReviewService
	index    search.ProposalIndex
	limiter  *ratelimiter.Limiter
	cooldown time.Duration
	tx       database.Transactor
}

func NewProposalService(
	repo proposalRepo.ProposalRepository,
	skills skillService.SkillService,
	reviews reviewService.ReviewService,
	index search.ProposalIndex,
	limiter *ratelimiter.Limiter,
	cooldown time.Duration,
	tx database.Transactor,
) ProposalService {
	return &proposalService{
		repo:     repo,
		skills:   skills,
		reviews:  reviews,
		index:    index,
		limiter:  limiter,
		cooldown: cooldown,
		tx:       tx,
	}
}

func (s *proposalService) Create(ctx context.Context, ownerID uuid.UUID, req proposalDto.CreateProposalRequest) (*proposalDto.ProposalResponse, error) {
	if ownerID == uuid.Nil {
		return nil, fmt.Errorf("sign in to post a proposal: %w", apperror.ErrUnauthorized)
	}

	req = normalizeCreate(req)
	modality, err := validateCreate(req)
	if err != nil {
		return nil, err
	}

	release, err := s.limiter.Acquire(ctx, ownerID, ratelimiter.ScopeProposal, s.cooldown)
	if err != nil {
		return nil, err
	}
	creationFailed := true
	defer func() {
		if creationFailed {
			release()
		}
	}()

	proposal := &entity.Proposal{
		OwnerID:     ownerID,
		Title:       req.Title,
		Description: req.Description,
		Modality:    modality,
		Status:      entity.ProposalStatusOpen,
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		offered, err := s.skills.Resolve(ctx, req.OfferedSkills)
		if err != nil {
			return err
		}
		needed, err := s.skills.Resolve(ctx, req.NeededSkills)
		if err != nil {
			return err
		}

		proposal.OfferedSkills = offered
		proposal.NeededSkills = needed
		return s.repo.Create(ctx, proposal)
	})
	if err != nil {
		return nil, err
	}
	creationFailed = false

	created, err := s.repo.FindByID(ctx, proposal.ID)
	if err != nil {
		return nil, err
	}
	s.syncIndex(created)

	res := toResponse(created, proposalRepo.Counts{})
	return &res, nil
}

func (s *proposalService) ListPublic(ctx context.Context, filter proposalDto.ProposalFilter) (*proposalDto.PaginatedProposalResponse, error) {
	page, limit := commonDto.Normalize(filter.Page, filter.Limit, defaultPageSize, maxPageSize)

	sf, err := parseFilter(filter)
	if err != nil {
		return nil, err
	}

	proposals, total, err := s.repo.ListOpen(ctx, proposalRepo.ListFilter{
		Search:       strings.TrimSpace(filter.Search),
		Modality:     sf.Modality,
		WantSkillIDs: sf.WantSkillIDs,
		HaveSkillIDs: sf.HaveSkillIDs,
		Offset:       (page - 1) * limit,
		Limit:        limit,
	})
	if err != nil {
		return nil, err
	}

	data, err := s.withCounts(ctx, proposals)
	if err != nil {
		return nil, err
	}

	return &proposalDto.PaginatedProposalResponse{
		Data: data,
		Meta: commonDto.NewPaginationMeta(page, limit, total),
	}, nil
}

func (s *proposalService) ListMine(ctx context.Context, ownerID uuid.UUID) ([]proposalDto.ProposalResponse, error) {
	proposals, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.withCounts(ctx, proposals)
}

func (s *proposalService) Get(ctx context.Context, id uuid.UUID) (*proposalDto.ProposalDetailResponse, error) {
	proposal, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	counts, err := s.repo.Counts(ctx, []uuid.UUID{proposal.ID})
	if err != nil {
		return nil, err
	}

	res := &proposalDto.ProposalDetailResponse{
		ProposalResponse: toResponse(proposal, counts[proposal.ID]),
	}

	if s.reviews != nil {
		stats, err := s.reviews.ReputationStats(ctx, proposal.OwnerID)
		if err != nil {
			return nil, err
		}
		res.OwnerReputation = stats
	}

	return res, nil
}

func (s *proposalService) Search(ctx context.Context, filter proposalDto.ProposalFilter) (*proposalDto.PaginatedProposalResponse, error) {
	if s.index == nil {
		return s.ListPublic(ctx, filter)
	}

	page, limit := commonDto.Normalize(filter.Page, filter.Limit, defaultPageSize, maxPageSize)

	sf, err := parseFilter(filter)
	if err != nil {
		return nil, err
	}

	ids, total, err := s.index.SearchProposals(strings.TrimSpace(filter.Search), sf, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}

	proposals, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	data, err := s.withCounts(ctx, proposals)
	if err != nil {
		return nil, err
	}

	return &proposalDto.PaginatedProposalResponse{
		Data: data,
		Meta: commonDto.NewPaginationMeta(page, limit, total),
	}, nil
}

func (s *proposalService) UpdateStatus(ctx context.Context, callerID, id uuid.UUID, status string) (*proposalDto.ProposalResponse, error) {
	target := entity.ProposalStatus(strings.ToUpper(strings.TrimSpace(status)))
	if !target.Valid() {
		return nil, apperror.NewValidationError(map[string]string{
			"status": "Status must be one of: OPEN, IN_PROGRESS, CLOSED",
		})
	}

	proposal, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if proposal.OwnerID != callerID {
		return nil, fmt.Errorf("only the owner can change this proposal: %w", apperror.ErrForbidden)
	}

	counts, err := s.repo.Counts(ctx, []uuid.UUID{proposal.ID})
	if err != nil {
		return nil, err
	}

	if target == entity.ProposalStatusClosed && counts[proposal.ID].Swaps > 0 {
		return nil, fmt.Errorf("a proposal with swaps cannot be closed: %w", apperror.ErrBusinessRule)
	}

	if err := s.repo.UpdateStatus(ctx, proposal.ID, target); err != nil {
		return nil, err
	}
	proposal.Status = target
	s.syncIndex(proposal)

	res := toResponse(proposal, counts[proposal.ID])
	return &res, nil
}

func (s *proposalService) Rescind(ctx context.Context, callerID, id uuid.UUID) (*proposalDto.ProposalResponse, error) {
	return s.UpdateStatus(ctx, callerID, id, string(entity.ProposalStatusClosed))
}

func (s *proposalService) Delete(ctx context.Context, callerID, id uuid.UUID) error {
	proposal, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if proposal.OwnerID != callerID {
		return fmt.Errorf("only the owner can delete this proposal: %w", apperror.ErrForbidden)
	}

	if err := s.repo.Delete(ctx, proposal.ID); err != nil {
		return err
	}

	if s.index != nil {
		if err := s.index.DeleteProposal(proposal.ID); err != nil {
			zap.L().Warn("failed to remove proposal from index", zap.String("proposal_id", proposal.ID.String()), zap.Error(err))
		}
	}
	return nil
}

func (s *proposalService) withCounts(ctx context.Context, proposals []entity.Proposal) ([]proposalDto.ProposalResponse, error) {
	ids := make([]uuid.UUID, len(proposals))
	for i, p := range proposals {
		ids[i] = p.ID
	}

	counts, err := s.repo.Counts(ctx, ids)
	if err != nil {
		return nil, err
	}

	res := make([]proposalDto.ProposalResponse, len(proposals))
	for i := range proposals {
		res[i] = toResponse(&proposals[i], counts[proposals[i].ID])
	}
	return res, nil
}

// syncIndex keeps the index holding OPEN proposals only. Failures are logged.
func (s *proposalService) syncIndex(p *entity.Proposal) {
	if s.index == nil {
		return
	}

	var err error
	if p.Status == entity.ProposalStatusOpen {
		err = s.index.IndexProposal(p)
	} else {
		err = s.index.DeleteProposal(p.ID)
	}
	if err != nil {
		zap.L().Warn("failed to sync proposal index", zap.String("proposal_id", p.ID.String()), zap.Error(err))
	}
}
