package repository

import (
	"context"

	"anoa.com/skillswap/internal/entity"
	"anoa.com/skillswap/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Stats struct {
	Total    int64
	Positive int64
	Average  float64
}

type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	Exists(ctx context.Context, swapID, authorID uuid.UUID) (bool, error)
	ListByReceiver(ctx context.Context, receiverID uuid.UUID) ([]entity.Review, error)
	StatsForReceiver(ctx context.Context, receiverID uuid.UUID) (Stats, error)
	// ReviewedSwapIDs returns which of swapIDs authorID has already reviewed.
	ReviewedSwapIDs(ctx context.Context, authorID uuid.UUID, swapIDs []uuid.UUID) (map[uuid.UUID]bool, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	err := database.Conn(ctx, r.db).
		Omit("Swap", "Author").
		Create(review).Error
	return database.Translate(err, "review")
}

func (r *reviewRepository) Exists(ctx context.Context, swapID, authorID uuid.UUID) (bool, error) {
	var count int64
	err := database.Conn(ctx, r.db).
		Model(&entity.Review{}).
		Where("swap_id = ? AND author_id = ?", swapID, authorID).
		Count(&count).Error
	return count > 0, err
}

func (r *reviewRepository) ListByReceiver(ctx context.Context, receiverID uuid.UUID) ([]entity.Review, error) {
	var reviews []entity.Review
	if err := database.Conn(ctx, r.db).
		Preload("Author").
		Preload("Swap").
		Preload("Swap.Proposal").
		Where("receiver_id = ?", receiverID).
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *reviewRepository) StatsForReceiver(ctx context.Context, receiverID uuid.UUID) (Stats, error) {
	var stats Stats
	err := database.Conn(ctx, r.db).
		Model(&entity.Review{}).
		Select("COUNT(*) AS total, COALESCE(SUM(CASE WHEN rating >= ? THEN 1 ELSE 0 END), 0) AS positive, COALESCE(AVG(rating), 0) AS average", entity.PositiveRating).
		Where("receiver_id = ?", receiverID).
		Scan(&stats).Error
	return stats, err
}

func (r *reviewRepository) ReviewedSwapIDs(ctx context.Context, authorID uuid.UUID, swapIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	reviewed := make(map[uuid.UUID]bool)
	if len(swapIDs) == 0 {
		return reviewed, nil
	}

	var ids []uuid.UUID
	if err := database.Conn(ctx, r.db).
		Model(&entity.Review{}).
		Where("author_id = ? AND swap_id IN ?", authorID, swapIDs).
		Pluck("swap_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		reviewed[id] = true
	}
	return reviewed, nil
}
