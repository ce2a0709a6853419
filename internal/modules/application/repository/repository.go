package repository

import (
	"context"

	"anoa.com/skillswap/internal/entity"
	"anoa.com/skillswap/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ApplicationRepository interface {
	Create(ctx context.Context, application *entity.Application) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Application, error)
	// FindByIDForUpdate locks the row until the surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Application, error)
	Exists(ctx context.Context, proposalID, applicantID uuid.UUID) (bool, error)
	ListByProposal(ctx context.Context, proposalID uuid.UUID) ([]entity.Application, error)
	ListByApplicant(ctx context.Context, applicantID uuid.UUID) ([]entity.Application, error)
	ListForOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]entity.Application, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.ApplicationStatus) error
}

type applicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) Create(ctx context.Context, application *entity.Application) error {
	err := database.Conn(ctx, r.db).
		Omit("Proposal", "Applicant").
		Create(application).Error
	return database.Translate(err, "application")
}

func (r *applicationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Application, error) {
	var application entity.Application
	if err := database.Conn(ctx, r.db).
		Preload("Applicant").
		Preload("Proposal").
		Where("id = ?", id).
		First(&application).Error; err != nil {
		return nil, database.Translate(err, "application")
	}
	return &application, nil
}

func (r *applicationRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Application, error) {
	var application entity.Application
	if err := database.Conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&application).Error; err != nil {
		return nil, database.Translate(err, "application")
	}
	return &application, nil
}

func (r *applicationRepository) Exists(ctx context.Context, proposalID, applicantID uuid.UUID) (bool, error) {
	var count int64
	err := database.Conn(ctx, r.db).
		Model(&entity.Application{}).
		Where("proposal_id = ? AND applicant_id = ?", proposalID, applicantID).
		Count(&count).Error
	return count > 0, err
}

func (r *applicationRepository) ListByProposal(ctx context.Context, proposalID uuid.UUID) ([]entity.Application, error) {
	var applications []entity.Application
	if err := database.Conn(ctx, r.db).
		Preload("Applicant").
		Preload("Applicant.Skills", "is_visible = ?", true).
		Preload("Applicant.Skills.Skill").
		Where("proposal_id = ?", proposalID).
		Order("created_at DESC").
		Find(&applications).Error; err != nil {
		return nil, err
	}
	return applications, nil
}

func (r *applicationRepository) ListByApplicant(ctx context.Context, applicantID uuid.UUID) ([]entity.Application, error) {
	var applications []entity.Application
	if err := database.Conn(ctx, r.db).
		Preload("Proposal").
		Preload("Proposal.Owner").
		Preload("Proposal.OfferedSkills").
		Preload("Proposal.NeededSkills").
		Where("applicant_id = ?", applicantID).
		Order("created_at DESC").
		Find(&applications).Error; err != nil {
		return nil, err
	}
	return applications, nil
}

func (r *applicationRepository) ListForOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]entity.Application, error) {
	var applications []entity.Application
	if err := database.Conn(ctx, r.db).
		Preload("Applicant").
		Preload("Proposal").
		Joins("JOIN proposals ON proposals.id = applications.proposal_id").
		Where("proposals.owner_id = ?", ownerID).
		Order("applications.created_at DESC").
		Limit(limit).
		Find(&applications).Error; err != nil {
		return nil, err
	}
	return applications, nil
}

func (r *applicationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.ApplicationStatus) error {
	return database.Conn(ctx, r.db).
		Model(&entity.Application{}).
		Where("id = ?", id).
		Update("status", status).Error
}
