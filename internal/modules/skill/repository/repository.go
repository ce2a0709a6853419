package repository

import (
	"context"

	"anoa.com/skillswap/internal/entity"
	"anoa.com/skillswap/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SkillRepository interface {
	// FindOrCreateByNames returns one skill per distinct name, in first-seen order.
	FindOrCreateByNames(ctx context.Context, names []string) ([]entity.Skill, error)
	List(ctx context.Context, search string, limit int) ([]entity.Skill, error)

	FindUserSkillByID(ctx context.Context, id uuid.UUID) (*entity.UserSkill, error)
	ListUserSkills(ctx context.Context, userID uuid.UUID, visibleOnly bool) ([]entity.UserSkill, error)
	CreateUserSkill(ctx context.Context, userSkill *entity.UserSkill) error
	SetUserSkillVisibility(ctx context.Context, id uuid.UUID, visible bool) error
	// Endorse bumps existing (user, skill) rows only and returns how many were touched.
	Endorse(ctx context.Context, userID uuid.UUID, skillIDs []uuid.UUID) (int64, error)
	CountEndorsed(ctx context.Context, userID uuid.UUID) (int64, error)
}

type skillRepository struct {
	db *gorm.DB
}

func NewSkillRepository(db *gorm.DB) SkillRepository {
	return &skillRepository{db: db}
}

func (r *skillRepository) FindOrCreateByNames(ctx context.Context, names []string) ([]entity.Skill, error) {
	names = dedupe(names)
	if len(names) == 0 {
		return []entity.Skill{}, nil
	}

	db := database.Conn(ctx, r.db)

	candidates := make([]entity.Skill, len(names))
	for i, name := range names {
		candidates[i] = entity.Skill{Name: name}
	}
	if err := db.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&candidates).Error; err != nil {
		return nil, database.Translate(err, "skill")
	}

	var found []entity.Skill
	if err := db.Where("name IN ?", names).Find(&found).Error; err != nil {
		return nil, err
	}

	byName := make(map[string]entity.Skill, len(found))
	for _, s := range found {
		byName[s.Name] = s
	}

	ordered := make([]entity.Skill, 0, len(names))
	for _, name := range names {
		if s, ok := byName[name]; ok {
			ordered = append(ordered, s)
		}
	}
	return ordered, nil
}

func (r *skillRepository) List(ctx context.Context, search string, limit int) ([]entity.Skill, error) {
	var skills []entity.Skill
	query := database.Conn(ctx, r.db)
	if search != "" {
		query = query.Where("name ILIKE ?", "%"+search+"%")
	}
	if err := query.Order("name ASC").Limit(limit).Find(&skills).Error; err != nil {
		return nil, err
	}
	return skills, nil
}

func (r *skillRepository) FindUserSkillByID(ctx context.Context, id uuid.UUID) (*entity.UserSkill, error) {
	var us entity.UserSkill
	if err := database.Conn(ctx, r.db).
		Preload("Skill").
		Where("id = ?", id).
		First(&us).Error; err != nil {
		return nil, database.Translate(err, "user skill")
	}
	return &us, nil
}

func (r *skillRepository) ListUserSkills(ctx context.Context, userID uuid.UUID, visibleOnly bool) ([]entity.UserSkill, error) {
	var skills []entity.UserSkill
	query := database.Conn(ctx, r.db).
		Preload("Skill").
		Where("user_id = ?", userID)
	if visibleOnly {
		query = query.Where("is_visible = ?", true)
	}
	if err := query.Order("endorsement_count DESC").Order("created_at ASC").Find(&skills).Error; err != nil {
		return nil, err
	}
	return skills, nil
}

func (r *skillRepository) CreateUserSkill(ctx context.Context, userSkill *entity.UserSkill) error {
	return database.Translate(database.Conn(ctx, r.db).Omit("Skill").Create(userSkill).Error, "user skill")
}

func (r *skillRepository) SetUserSkillVisibility(ctx context.Context, id uuid.UUID, visible bool) error {
	return database.Conn(ctx, r.db).
		Model(&entity.UserSkill{}).
		Where("id = ?", id).
		Update("is_visible", visible).Error
}

func (r *skillRepository) Endorse(ctx context.Context, userID uuid.UUID, skillIDs []uuid.UUID) (int64, error) {
	if len(skillIDs) == 0 {
		return 0, nil
	}
	result := database.Conn(ctx, r.db).
		Model(&entity.UserSkill{}).
		Where("user_id = ? AND skill_id IN ?", userID, skillIDs).
		Updates(map[string]any{
			"endorsement_count": gorm.Expr("endorsement_count + 1"),
			"source":            entity.SkillSourceEndorsed,
		})
	return result.RowsAffected, result.Error
}

func (r *skillRepository) CountEndorsed(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := database.Conn(ctx, r.db).
		Model(&entity.UserSkill{}).
		Where("user_id = ? AND source = ?", userID, entity.SkillSourceEndorsed).
		Count(&count).Error
	return count, err
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
