package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"roomloop-backend/middleware"
	"roomloop-backend/services"
)

type MessageHandler struct {
	messages *services.MessageService
}

func NewMessageHandler(messages *services.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

type postMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *MessageHandler) Post(c *gin.Context) {
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}
	var req postMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content is required"})
		return
	}

	msg, err := h.messages.Post(c.Request.Context(), middleware.UserID(c), roomID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

func (h *MessageHandler) List(c *gin.Context) {
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}
	msgs, err := h.messages.List(c.Request.Context(), middleware.UserID(c), roomID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}
