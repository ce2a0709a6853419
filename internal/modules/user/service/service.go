package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"anoa.com/skillswap/internal/entity"
	"anoa.com/skillswap/internal/modules/user/dto"
	"anoa.com/skillswap/internal/modules/user/repository"
	"anoa.com/skillswap/pkg/apperror"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// IdentityService maps provider sessions to internal users.
type IdentityService interface {
	// Resolve returns nil without error when there is no usable session.
	Resolve(ctx context.Context, session *dto.Session) (*uuid.UUID, error)
}

type identityService struct {
	repo repository.UserRepository
}

func NewIdentityService(repo repository.UserRepository) IdentityService {
	return &identityService{repo: repo}
}

func (s *identityService) Resolve(ctx context.Context, session *dto.Session) (*uuid.UUID, error) {
	if session == nil {
		return nil, nil
	}
	email := strings.ToLower(strings.TrimSpace(session.Email))
	if email == "" {
		return nil, nil
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		s.linkExternalID(ctx, user, session.Subject)
		return &user.ID, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	newUser := &entity.User{
		Email: email,
		Name:  entity.DefaultUserName,
	}
	if name := strings.TrimSpace(session.FullName); name != "" {
		newUser.Name = name
	}
	if session.AvatarURL != "" {
		avatar := session.AvatarURL
		newUser.AvatarURL = &avatar
	}
	if session.Subject != "" {
		subject := session.Subject
		newUser.ExternalID = &subject
	}

	created, err := s.repo.CreateIfAbsent(ctx, newUser)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	if created {
		zap.L().Info("user created on first login", zap.String("user_id", newUser.ID.String()))
		return &newUser.ID, nil
	}

	// Lost a race with a concurrent first login for the same email.
	user, err = s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return &user.ID, nil
}

func (s *identityService) linkExternalID(ctx context.Context, user *entity.User, subject string) {
	if subject == "" || (user.ExternalID != nil && *user.ExternalID == subject) {
		return
	}
	user.ExternalID = &subject
	if err := s.repo.Update(ctx, user); err != nil {
		zap.L().Warn("failed to link external id", zap.String("user_id", user.ID.String()), zap.Error(err))
	}
}
