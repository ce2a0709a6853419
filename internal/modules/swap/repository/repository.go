package repository

import (
	"context"
	"time"

	"anoa.com/skillswap/internal/entity"
	"anoa.com/skillswap/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SwapRepository interface {
	Create(ctx context.Context, swap *entity.Swap) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Swap, error)
	ExistsForApplication(ctx context.Context, applicationID uuid.UUID) (bool, error)
	ListByParticipant(ctx context.Context, userID uuid.UUID, limit int) ([]entity.Swap, error)
	// UpdateStatus keeps an existing completion timestamp when completing again.
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.SwapStatus, at time.Time) error
	CountCompleted(ctx context.Context, userID uuid.UUID) (int64, error)
}

type swapRepository struct {
	db *gorm.DB
}

func NewSwapRepository(db *gorm.DB) SwapRepository {
	return &swapRepository{db: db}
}

func (r *swapRepository) preload(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Proposal").
		Preload("Proposal.OfferedSkills").
		Preload("Proposal.NeededSkills").
		Preload("Teacher").
		Preload("Student")
}

func (r *swapRepository) Create(ctx context.Context, swap *entity.Swap) error {
	err := database.Conn(ctx, r.db).
		Omit("Proposal", "Teacher", "Student").
		Create(swap).Error
	return database.Translate(err, "swap")
}

func (r *swapRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Swap, error) {
	var swap entity.Swap
	if err := r.preload(database.Conn(ctx, r.db)).
		Where("id = ?", id).
		First(&swap).Error; err != nil {
		return nil, database.Translate(err, "swap")
	}
	return &swap, nil
}

func (r *swapRepository) ExistsForApplication(ctx context.Context, applicationID uuid.UUID) (bool, error) {
	var count int64
	err := database.Conn(ctx, r.db).
		Model(&entity.Swap{}).
		Where("application_id = ?", applicationID).
		Count(&count).Error
	return count > 0, err
}

func (r *swapRepository) ListByParticipant(ctx context.Context, userID uuid.UUID, limit int) ([]entity.Swap, error) {
	var swaps []entity.Swap
	query := r.preload(database.Conn(ctx, r.db)).
		Where("teacher_id = ? OR student_id = ?", userID, userID).
		Order("started_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&swaps).Error; err != nil {
		return nil, err
	}
	return swaps, nil
}

func (r *swapRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.SwapStatus, at time.Time) error {
	updates := map[string]any{"status": status}
	if status == entity.SwapStatusCompleted {
		updates["completed_at"] = gorm.Expr("COALESCE(completed_at, ?)", at)
	}
	return database.Conn(ctx, r.db).
		Model(&entity.Swap{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *swapRepository) CountCompleted(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := database.Conn(ctx, r.db).
		Model(&entity.Swap{}).
		Where("(teacher_id = ? OR student_id = ?) AND status = ?", userID, userID, entity.SwapStatusCompleted).
		Count(&count).Error
	return count, err
}
