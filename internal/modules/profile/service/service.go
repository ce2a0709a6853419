package service

import (
	"context"
	"fmt"

	"anoa.com/skillswap/internal/entity"
	profileDto "anoa.com/skillswap/internal/modules/profile/dto"
	reviewService "anoa.com/skillswap/internal/modules/review/service"
	skillRepo "anoa.com/skillswap/internal/modules/skill/repository"
	skillService "anoa.com/skillswap/internal/modules/skill/service"
	userRepo "anoa.com/skillswap/internal/modules/user/repository"
	"anoa.com/skillswap/pkg/apperror"
	commonDto "anoa.com/skillswap/pkg/dto"
	"anoa.com/skillswap/pkg/sanitize"
	"anoa.com/skillswap/pkg/storage"
	"anoa.com/skillswap/pkg/validator"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ProfileService interface {
	GetMe(ctx context.Context, userID uuid.UUID) (*profileDto.ProfileResponse, error)
	GetPublic(ctx context.Context, userID uuid.UUID) (*profileDto.ProfileResponse, error)
	Update(ctx context.Context, userID uuid.UUID, input profileDto.UpdateProfileInput, avatar *commonDto.AvatarFile) (*profileDto.ProfileResponse, error)
	AddSkill(ctx context.Context, userID uuid.UUID, req profileDto.AddSkillRequest) (*profileDto.UserSkillResponse, error)
	SetSkillVisibility(ctx context.Context, userID, userSkillID uuid.UUID, visible bool) (*profileDto.UserSkillResponse, error)
}

type profileService struct {
	repo         userRepo.UserRepository
	skillRepo    skillRepo.SkillRepository
	skills       skillService.SkillService
	reviews      reviewService.ReviewService
	imageStorage storage.ImageStorage
}

func NewProfileService(repo userRepo.UserRepository, skillRepo skillRepo.SkillRepository, skills skillService.SkillService, reviews reviewService.ReviewService, imageStorage storage.ImageStorage) ProfileService {
	return &profileService{
		repo:         repo,
		skillRepo:    skillRepo,
		skills:       skills,
		reviews:      reviews,
		imageStorage: imageStorage,
	}
}

func (s *profileService) GetMe(ctx context.Context, userID uuid.UUID) (*profileDto.ProfileResponse, error) {
	return s.build(ctx, userID, true)
}

func (s *profileService) GetPublic(ctx context.Context, userID uuid.UUID) (*profileDto.ProfileResponse, error) {
	return s.build(ctx, userID, false)
}

func (s *profileService) Update(ctx context.Context, userID uuid.UUID, input profileDto.UpdateProfileInput, avatar *commonDto.AvatarFile) (*profileDto.ProfileResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		// A blank name keeps the current one.
		if name := sanitize.Inline(*input.Name); name != "" {
			input.Name = &name
		} else {
			input.Name = nil
		}
	}
	if err := validator.Struct(input); err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Bio != nil {
		user.Bio = sanitize.TextPtr(input.Bio)
	}
	if input.Industry != nil {
		user.Industry = sanitize.TextPtr(input.Industry)
	}
	if input.PhoneNumber != nil {
		user.PhoneNumber = sanitize.TextPtr(input.PhoneNumber)
	}

	var previousAvatar, uploaded *string
	if avatar != nil && avatar.Reader != nil && s.imageStorage != nil {
		url, err := s.imageStorage.UploadImage(ctx, avatar.Reader, "avatars", avatar.FileName)
		if err != nil {
			return nil, err
		}
		previousAvatar = user.AvatarURL
		uploaded = &url
		user.AvatarURL = &url
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if uploaded != nil {
			if delErr := s.imageStorage.DeleteImage(ctx, *uploaded); delErr != nil {
				zap.L().Warn("failed to delete orphaned avatar", zap.String("user_id", userID.String()), zap.Error(delErr))
			}
		}
		return nil, err
	}

	if previousAvatar != nil && *previousAvatar != "" {
		if err := s.imageStorage.DeleteImage(ctx, *previousAvatar); err != nil {
			zap.L().Warn("failed to delete previous avatar", zap.String("user_id", userID.String()), zap.Error(err))
		}
	}

	return s.build(ctx, userID, true)
}

func (s *profileService) AddSkill(ctx context.Context, userID uuid.UUID, req profileDto.AddSkillRequest) (*profileDto.UserSkillResponse, error) {
	req.Name = sanitize.Inline(req.Name)
	if err := validator.Struct(req); err != nil {
		return nil, err
	}

	resolved, err := s.skills.Resolve(ctx, []string{req.Name})
	if err != nil {
		return nil, err
	}
	if len(resolved) == 0 {
		return nil, apperror.NewValidationError(map[string]string{"name": "Name is required"})
	}
	skill := resolved[0]

	held, err := s.skillRepo.ListUserSkills(ctx, userID, false)
	if err != nil {
		return nil, err
	}
	for _, us := range held {
		if us.SkillID == skill.ID {
			return nil, fmt.Errorf("you already have this skill: %w", apperror.ErrConflict)
		}
	}

	userSkill := &entity.UserSkill{
		UserID:    userID,
		SkillID:   skill.ID,
		Source:    entity.SkillSourceManual,
		IsVisible: true,
	}
	if err := s.skillRepo.CreateUserSkill(ctx, userSkill); err != nil {
		return nil, err
	}
	userSkill.Skill = skill

	res := toSkillResponse(userSkill)
	return &res, nil
}

func (s *profileService) SetSkillVisibility(ctx context.Context, userID, userSkillID uuid.UUID, visible bool) (*profileDto.UserSkillResponse, error) {
	userSkill, err := s.skillRepo.FindUserSkillByID(ctx, userSkillID)
	if err != nil {
		return nil, err
	}

	if userSkill.UserID != userID {
		return nil, fmt.Errorf("skill belongs to another user: %w", apperror.ErrForbidden)
	}

	if err := s.skillRepo.SetUserSkillVisibility(ctx, userSkill.ID, visible); err != nil {
		return nil, err
	}
	userSkill.IsVisible = visible

	res := toSkillResponse(userSkill)
	return &res, nil
}

func (s *profileService) build(ctx context.Context, userID uuid.UUID, self bool) (*profileDto.ProfileResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	skills, err := s.skillRepo.ListUserSkills(ctx, userID, !self)
	if err != nil {
		return nil, err
	}

	res := &profileDto.ProfileResponse{
		ID:        user.ID,
		Name:      user.Name,
		Bio:       user.Bio,
		Industry:  user.Industry,
		AvatarURL: user.AvatarURL,
		CreatedAt: user.CreatedAt,
		Skills:    make([]profileDto.UserSkillResponse, len(skills)),
	}
	if self {
		res.Email = &user.Email
		res.PhoneNumber = user.PhoneNumber
	}
	for i := range skills {
		res.Skills[i] = toSkillResponse(&skills[i])
	}

	if s.reviews != nil {
		stats, err := s.reviews.ReputationStats(ctx, userID)
		if err != nil {
			return nil, err
		}
		res.Reputation = stats
	}

	return res, nil
}

func toSkillResponse(us *entity.UserSkill) profileDto.UserSkillResponse {
	return profileDto.UserSkillResponse{
		ID:               us.ID,
		SkillID:          us.SkillID,
		Name:             us.Skill.Name,
		Source:           string(us.Source),
		IsVisible:        us.IsVisible,
		EndorsementCount: us.EndorsementCount,
	}
}
