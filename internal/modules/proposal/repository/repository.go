package repository

import (
	"context"
	"database/sql"

	"anoa.com/skillswap/internal/entity"
	"anoa.com/skillswap/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ListFilter struct {
	Search       string
	Modality     entity.Modality
	WantSkillIDs []uuid.UUID
	HaveSkillIDs []uuid.UUID
	Offset       int
	Limit        int
}

type Counts struct {
	Applications int64
	Swaps        int64
}

type ProposalRepository interface {
	Create(ctx context.Context, proposal *entity.Proposal) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Proposal, error)
	// FindByIDs preserves the order of ids and skips missing rows.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Proposal, error)
	ListOpen(ctx context.Context, filter ListFilter) ([]entity.Proposal, int64, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]entity.Proposal, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.ProposalStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
	Counts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Counts, error)
}

type proposalRepository struct {
	db *gorm.DB
}

func NewProposalRepository(db *gorm.DB) ProposalRepository {
	return &proposalRepository{db: db}
}

func (r *proposalRepository) preload(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Owner").
		Preload("OfferedSkills").
		Preload("NeededSkills")
}

func (r *proposalRepository) Create(ctx context.Context, proposal *entity.Proposal) error {
	// Skills already exist; only the join rows are written.
	return database.Conn(ctx, r.db).
		Omit("Owner", "OfferedSkills.*", "NeededSkills.*").
		Create(proposal).Error
}

func (r *proposalRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Proposal, error) {
	var proposal entity.Proposal
	if err := r.preload(database.Conn(ctx, r.db)).
		Where("id = ?", id).
		First(&proposal).Error; err != nil {
		return nil, database.Translate(err, "proposal")
	}
	return &proposal, nil
}

func (r *proposalRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Proposal, error) {
	if len(ids) == 0 {
		return []entity.Proposal{}, nil
	}

	var proposals []entity.Proposal
	if err := r.preload(database.Conn(ctx, r.db)).
		Where("id IN ?", ids).
		Find(&proposals).Error; err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]entity.Proposal, len(proposals))
	for _, p := range proposals {
		byID[p.ID] = p
	}

	ordered := make([]entity.Proposal, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}

func (r *proposalRepository) ListOpen(ctx context.Context, f ListFilter) ([]entity.Proposal, int64, error) {
	var proposals []entity.Proposal
	var total int64

	query := database.Conn(ctx, r.db).
		Model(&entity.Proposal{}).
		Where("proposals.status = ?", entity.ProposalStatusOpen)

	if f.Search != "" {
		query = query.Where(`proposals.title ILIKE @q
			OR proposals.description ILIKE @q
			OR EXISTS (SELECT 1 FROM users u WHERE u.id = proposals.owner_id AND u.name ILIKE @q)
			OR EXISTS (SELECT 1 FROM proposal_offered_skills pos JOIN skills s ON s.id = pos.skill_id
				WHERE pos.proposal_id = proposals.id AND s.name ILIKE @q)
			OR EXISTS (SELECT 1 FROM proposal_needed_skills pns JOIN skills s ON s.id = pns.skill_id
				WHERE pns.proposal_id = proposals.id AND s.name ILIKE @q)`,
			sql.Named("q", "%"+f.Search+"%"))
	}

	if f.Modality != "" {
		query = query.Where("proposals.modality = ?", f.Modality)
	}

	if len(f.WantSkillIDs) > 0 {
		query = query.Where(`EXISTS (SELECT 1 FROM proposal_needed_skills pns
			WHERE pns.proposal_id = proposals.id AND pns.skill_id IN ?)`, f.WantSkillIDs)
	}

	if len(f.HaveSkillIDs) > 0 {
		query = query.Where(`EXISTS (SELECT 1 FROM proposal_offered_skills pos
			WHERE pos.proposal_id = proposals.id AND pos.skill_id IN ?)`, f.HaveSkillIDs)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := r.preload(query).
		Order("proposals.created_at DESC").
		Offset(f.Offset).
		Limit(f.Limit).
		Find(&proposals).Error; err != nil {
		return nil, 0, err
	}

	return proposals, total, nil
}

func (r *proposalRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]entity.Proposal, error) {
	var proposals []entity.Proposal
	if err := r.preload(database.Conn(ctx, r.db)).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&proposals).Error; err != nil {
		return nil, err
	}
	return proposals, nil
}

func (r *proposalRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.ProposalStatus) error {
	return database.Conn(ctx, r.db).
		Model(&entity.Proposal{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *proposalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return database.Conn(ctx, r.db).
		Select("OfferedSkills", "NeededSkills").
		Delete(&entity.Proposal{ID: id}).Error
}

func (r *proposalRepository) Counts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Counts, error) {
	counts := make(map[uuid.UUID]Counts, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}

	type row struct {
		ProposalID uuid.UUID
		Total      int64
	}

	db := database.Conn(ctx, r.db)

	var apps []row
	if err := db.Model(&entity.Application{}).
		Select("proposal_id, COUNT(*) AS total").
		Where("proposal_id IN ?", ids).
		Group("proposal_id").
		Scan(&apps).Error; err != nil {
		return nil, err
	}

	var swaps []row
	if err := db.Model(&entity.Swap{}).
		Select("proposal_id, COUNT(*) AS total").
		Where("proposal_id IN ?", ids).
		Group("proposal_id").
		Scan(&swaps).Error; err != nil {
		return nil, err
	}

	for _, a := range apps {
		c := counts[a.ProposalID]
		c.Applications = a.Total
		counts[a.ProposalID] = c
	}
	for _, s := range swaps {
		c := counts[s.ProposalID]
		c.Swaps = s.Total
		counts[s.ProposalID] = c
	}
	return counts, nil
}
