package dto

import (
	"anoa.com/skillswap/internal/entity"
	commonDto "anoa.com/skillswap/pkg/dto"
)

func ToSummary(u *entity.User) commonDto.UserSummary {
	if u == nil {
		return commonDto.UserSummary{}
	}
	return commonDto.UserSummary{
		ID:        u.ID,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
		Industry:  u.Industry,
	}
}
