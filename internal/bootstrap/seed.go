package bootstrap

import (
	"anoa.com/skillswap/internal/entity"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.Skill{},
		&entity.UserSkill{},
		&entity.Proposal{},
		&entity.Application{},
		&entity.Swap{},
		&entity.Message{},
		&entity.Review{},
		&entity.Notification{},
	)
}

var defaultSkills = []string{
	"Guitar", "Piano", "Spanish", "English", "Japanese",
	"Go", "Python", "JavaScript", "React", "SQL",
	"Photography", "Video Editing", "Graphic Design", "Public Speaking", "Cooking",
}

// SeedSkills fills the catalogue so filter pickers are not empty on a fresh database.
func SeedSkills(db *gorm.DB) error {
	skills := make([]entity.Skill, len(defaultSkills))
	for i, name := range defaultSkills {
		skills[i] = entity.Skill{Name: name}
	}

	result := db.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).Create(&skills)
	if result.Error != nil {
		return result.Error
	}

	zap.L().Info("skill catalogue seeded", zap.Int64("inserted", result.RowsAffected))
	return nil
}
