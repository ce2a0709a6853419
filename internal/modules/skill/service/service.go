package service

import (
	"context"
	"strings"

	"anoa.com/skillswap/internal/entity"
	"anoa.com/skillswap/internal/modules/skill/repository"
	commonDto "anoa.com/skillswap/pkg/dto"
)

const listLimit = 50

type SkillService interface {
	List(ctx context.Context, search string) ([]commonDto.SkillResponse, error)
	// Resolve cleans names and gets or creates a skill for each.
	Resolve(ctx context.Context, names []string) ([]entity.Skill, error)
}

type skillService struct {
	repo repository.SkillRepository
}

func NewSkillService(repo repository.SkillRepository) SkillService {
	return &skillService{repo: repo}
}

func (s *skillService) List(ctx context.Context, search string) ([]commonDto.SkillResponse, error) {
	skills, err := s.repo.List(ctx, strings.TrimSpace(search), listLimit)
	if err != nil {
		return nil, err
	}
	return ToResponses(skills), nil
}

func (s *skillService) Resolve(ctx context.Context, names []string) ([]entity.Skill, error) {
	return s.repo.FindOrCreateByNames(ctx, CleanNames(names))
}

// CleanNames splits comma-separated entries, trims them and drops blanks.
// Case is preserved: "React" and "react" are different skills.
func CleanNames(raw []string) []string {
	var out []string
	for _, entry := range raw {
		for _, part := range strings.Split(entry, ",") {
			if name := strings.TrimSpace(part); name != "" {
				out = append(out, name)
			}
		}
	}
	return out
}

func ToResponses(skills []entity.Skill) []commonDto.SkillResponse {
	out := make([]commonDto.SkillResponse, len(skills))
	for i, sk := range skills {
		out[i] = commonDto.SkillResponse{ID: sk.ID, Name: sk.Name}
	}
	return out
}
