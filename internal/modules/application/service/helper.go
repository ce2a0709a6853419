package service

import (
	"anoa.com/skillswap/internal/entity"
	appDto "anoa.com/skillswap/internal/modules/application/dto"
	skillService "anoa.com/skillswap/internal/modules/skill/service"
	userDto "anoa.com/skillswap/internal/modules/user/dto"
	"github.com/google/uuid"
)

func toResponses(applications []entity.Application, withApplicant, withProposal bool) []appDto.ApplicationResponse {
	res := make([]appDto.ApplicationResponse, len(applications))
	for i := range applications {
		res[i] = toResponse(&applications[i], withApplicant, withProposal)
	}
	return res
}

func toResponse(a *entity.Application, withApplicant, withProposal bool) appDto.ApplicationResponse {
	res := appDto.ApplicationResponse{
		ID:           a.ID,
		ProposalID:   a.ProposalID,
		PitchMessage: a.PitchMessage,
		Status:       string(a.Status),
		CreatedAt:    a.CreatedAt,
	}

	if withApplicant {
		skills := make([]entity.Skill, 0, len(a.Applicant.Skills))
		for _, us := range a.Applicant.Skills {
			if us.IsVisible {
				skills = append(skills, us.Skill)
			}
		}
		res.Applicant = &appDto.ApplicantProfile{
			UserSummary: userDto.ToSummary(&a.Applicant),
			Skills:      skillService.ToResponses(skills),
		}
	}

	if withProposal {
		p := a.Proposal
		summary := &appDto.ProposalSummary{
			ID:            p.ID,
			Title:         p.Title,
			Modality:      string(p.Modality),
			Status:        string(p.Status),
			OfferedSkills: skillService.ToResponses(p.OfferedSkills),
			NeededSkills:  skillService.ToResponses(p.NeededSkills),
		}
		if p.Owner.ID != uuid.Nil {
			owner := userDto.ToSummary(&p.Owner)
			summary.Owner = &owner
		}
		res.Proposal = summary
	}

	return res
}
