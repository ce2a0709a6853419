package handler

import (
	"net/http"

	appDto "anoa.com/skillswap/internal/modules/application/dto"
	application "anoa.com/skillswap/internal/modules/application/service"
	"anoa.com/skillswap/pkg/response"
	"anoa.com/skillswap/pkg/validator"
	"github.com/gin-gonic/gin"
)

type ApplicationHandler struct {
	service application.ApplicationService
}

func NewApplicationHandler(service application.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{service: service}
}

func (h *ApplicationHandler) Apply(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	proposalID, ok := response.ParamUUID(c, "proposal_id")
	if !ok {
		return
	}

	var req appDto.ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.FromBinding(err))
		return
	}

	res, err := h.service.Apply(c.Request.Context(), userID, proposalID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "application sent", "data": res})
}

func (h *ApplicationHandler) ListForProposal(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	proposalID, ok := response.ParamUUID(c, "proposal_id")
	if !ok {
		return
	}

	res, err := h.service.ListForProposal(c.Request.Context(), userID, proposalID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}

func (h *ApplicationHandler) ListMine(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.service.ListMine(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}

func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	applicationID, ok := response.ParamUUID(c, "application_id")
	if !ok {
		return
	}

	var req appDto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.FromBinding(err))
		return
	}

	res, err := h.service.UpdateStatus(c.Request.Context(), userID, applicationID, req.Status)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}
