package handler

import (
	"net/http"

	skill "anoa.com/skillswap/internal/modules/skill/service"
	"anoa.com/skillswap/pkg/response"
	"github.com/gin-gonic/gin"
)

type SkillHandler struct {
	service skill.SkillService
}

func NewSkillHandler(service skill.SkillService) *SkillHandler {
	return &SkillHandler{service: service}
}

func (h *SkillHandler) ListSkills(c *gin.Context) {
	skills, err := h.service.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": skills})
}
