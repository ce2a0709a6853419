package service

import (
	"anoa.com/skillswap/internal/entity"
	skillService "anoa.com/skillswap/internal/modules/skill/service"
	swapDto "anoa.com/skillswap/internal/modules/swap/dto"
	userDto "anoa.com/skillswap/internal/modules/user/dto"
	"github.com/google/uuid"
)

func toResponse(s *entity.Swap, callerID uuid.UUID, reviewed bool) swapDto.SwapResponse {
	res := swapDto.SwapResponse{
		ID:            s.ID,
		ApplicationID: s.ApplicationID,
		Status:        string(s.Status),
		Proposal: swapDto.SwapProposal{
			ID:            s.Proposal.ID,
			Title:         s.Proposal.Title,
			Modality:      string(s.Proposal.Modality),
			OfferedSkills: skillService.ToResponses(s.Proposal.OfferedSkills),
			NeededSkills:  skillService.ToResponses(s.Proposal.NeededSkills),
		},
		Teacher:     userDto.ToSummary(&s.Teacher),
		Student:     userDto.ToSummary(&s.Student),
		HasReviewed: reviewed,
		StartedAt:   s.StartedAt,
		CompletedAt: s.CompletedAt,
	}

	if callerID == s.TeacherID {
		res.Role = swapDto.RoleTeacher
		res.Partner = res.Student
	} else {
		res.Role = swapDto.RoleStudent
		res.Partner = res.Teacher
	}
	return res
}
