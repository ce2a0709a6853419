package handler

import (
	"net/http"

	messageDto "anoa.com/skillswap/internal/modules/message/dto"
	message "anoa.com/skillswap/internal/modules/message/service"
	"anoa.com/skillswap/pkg/response"
	"anoa.com/skillswap/pkg/validator"
	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	service message.MessageService
}

func NewMessageHandler(service message.MessageService) *MessageHandler {
	return &MessageHandler{service: service}
}

func (h *MessageHandler) SendMessage(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	swapID, ok := response.ParamUUID(c, "swap_id")
	if !ok {
		return
	}

	var req messageDto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.FromBinding(err))
		return
	}

	res, err := h.service.Send(c.Request.Context(), userID, swapID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": res})
}

func (h *MessageHandler) GetMessages(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	swapID, ok := response.ParamUUID(c, "swap_id")
	if !ok {
		return
	}

	res, err := h.service.List(c.Request.Context(), userID, swapID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}
