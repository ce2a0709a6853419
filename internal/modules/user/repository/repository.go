package repository

import (
	"context"

	"anoa.com/skillswap/internal/entity"
	"anoa.com/skillswap/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	// CreateIfAbsent inserts user unless the email is taken. It reports whether a row was inserted.
	CreateIfAbsent(ctx context.Context, user *entity.User) (bool, error)
	Update(ctx context.Context, user *entity.User) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var user entity.User
	if err := database.Conn(ctx, r.db).
		Where("id = ?", id).
		First(&user).Error; err != nil {
		return nil, database.Translate(err, "user")
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	if err := database.Conn(ctx, r.db).
		Where("email = ?", email).
		First(&user).Error; err != nil {
		return nil, database.Translate(err, "user")
	}
	return &user, nil
}

func (r *userRepository) CreateIfAbsent(ctx context.Context, user *entity.User) (bool, error) {
	result := database.Conn(ctx, r.db).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
		Create(user)
	if result.Error != nil {
		return false, database.Translate(result.Error, "user")
	}
	return result.RowsAffected > 0, nil
}

func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	return database.Conn(ctx, r.db).
		Model(&entity.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"external_id":  user.ExternalID,
			"name":         user.Name,
			"bio":          user.Bio,
			"industry":     user.Industry,
			"avatar_url":   user.AvatarURL,
			"phone_number": user.PhoneNumber,
		}).Error
}
