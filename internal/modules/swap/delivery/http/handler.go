package handler

import (
	"net/http"

	swapDto "anoa.com/skillswap/internal/modules/swap/dto"
	swap "anoa.com/skillswap/internal/modules/swap/service"
	"anoa.com/skillswap/pkg/response"
	"anoa.com/skillswap/pkg/validator"
	"github.com/gin-gonic/gin"
)

type SwapHandler struct {
	service swap.SwapService
}

func NewSwapHandler(service swap.SwapService) *SwapHandler {
	return &SwapHandler{service: service}
}

func (h *SwapHandler) AcceptApplication(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	applicationID, ok := response.ParamUUID(c, "application_id")
	if !ok {
		return
	}

	res, err := h.service.AcceptApplication(c.Request.Context(), userID, applicationID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "application accepted", "data": res})
}

func (h *SwapHandler) ListMine(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.service.ListMine(c.Request.Context(), userID, 0)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}

func (h *SwapHandler) GetSwap(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	swapID, ok := response.ParamUUID(c, "swap_id")
	if !ok {
		return
	}

	res, err := h.service.Get(c.Request.Context(), userID, swapID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}

func (h *SwapHandler) UpdateStatus(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	swapID, ok := response.ParamUUID(c, "swap_id")
	if !ok {
		return
	}

	var req swapDto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.FromBinding(err))
		return
	}

	res, err := h.service.UpdateStatus(c.Request.Context(), userID, swapID, req.Status)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}
