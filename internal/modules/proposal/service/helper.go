package service

import (
	"errors"
	"maps"
	"strings"

	"anoa.com/skillswap/internal/entity"
	proposalDto "anoa.com/skillswap/internal/modules/proposal/dto"
	proposalRepo "anoa.com/skillswap/internal/modules/proposal/repository"
	search "anoa.com/skillswap/internal/modules/search/service"
	skillService "anoa.com/skillswap/internal/modules/skill/service"
	userDto "anoa.com/skillswap/internal/modules/user/dto"
	"anoa.com/skillswap/pkg/apperror"
	"anoa.com/skillswap/pkg/sanitize"
	"anoa.com/skillswap/pkg/validator"
	"github.com/google/uuid"
)

func normalizeCreate(req proposalDto.CreateProposalRequest) proposalDto.CreateProposalRequest {
	req.Title = sanitize.Inline(req.Title)
	req.Description = sanitize.Text(req.Description)
	req.Modality = strings.TrimSpace(req.Modality)
	req.OfferedSkills = skillService.CleanNames(req.OfferedSkills)
	req.NeededSkills = skillService.CleanNames(req.NeededSkills)
	return req
}

// validateCreate merges tag validation with the modality check into one ValidationError.
func validateCreate(req proposalDto.CreateProposalRequest) (entity.Modality, error) {
	fields := make(map[string]string)

	if err := validator.Struct(req); err != nil {
		var ve *apperror.ValidationError
		if !errors.As(err, &ve) {
			return "", err
		}
		maps.Copy(fields, ve.Fields)
	}

	modality, ok := entity.ParseModality(req.Modality)
	if !ok {
		if _, exists := fields["modality"]; !exists {
			fields["modality"] = "Modality must be Remote or In-Person"
		}
	}

	if len(fields) > 0 {
		return "", apperror.NewValidationError(fields)
	}
	return modality, nil
}

func parseFilter(f proposalDto.ProposalFilter) (search.SearchFilter, error) {
	var sf search.SearchFilter
	fields := make(map[string]string)

	if m := strings.TrimSpace(f.Modality); m != "" {
		modality, ok := entity.ParseModality(m)
		if !ok {
			fields["modality"] = "Modality must be Remote or In-Person"
		}
		sf.Modality = modality
	}

	var err error
	if sf.WantSkillIDs, err = parseIDs(f.WantSkillIDs); err != nil {
		fields["want_skill_ids"] = "want_skill_ids must be skill ids"
	}
	if sf.HaveSkillIDs, err = parseIDs(f.HaveSkillIDs); err != nil {
		fields["have_skill_ids"] = "have_skill_ids must be skill ids"
	}

	if len(fields) > 0 {
		return sf, apperror.NewValidationError(fields)
	}
	return sf, nil
}

// parseIDs accepts repeated query values and comma-separated lists.
func parseIDs(raw []string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, entry := range raw {
		for _, part := range strings.Split(entry, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := uuid.Parse(part)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func toResponse(p *entity.Proposal, counts proposalRepo.Counts) proposalDto.ProposalResponse {
	return proposalDto.ProposalResponse{
		ID:               p.ID,
		Title:            p.Title,
		Description:      p.Description,
		Modality:         string(p.Modality),
		Status:           string(p.Status),
		Owner:            userDto.ToSummary(&p.Owner),
		OfferedSkills:    skillService.ToResponses(p.OfferedSkills),
		NeededSkills:     skillService.ToResponses(p.NeededSkills),
		ApplicationCount: counts.Applications,
		SwapCount:        counts.Swaps,
		CreatedAt:        p.CreatedAt,
	}
}
