package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"roomloop-backend/middleware"
	"roomloop-backend/services"
)

type ReactionHandler struct {
	reactions *services.ReactionService
}

func NewReactionHandler(reactions *services.ReactionService) *ReactionHandler {
	return &ReactionHandler{reactions: reactions}
}

type postReactionRequest struct {
	Emoji string `json:"emoji" binding:"required"`
}

func (h *ReactionHandler) Post(c *gin.Context) {
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}
	var req postReactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "emoji is required"})
		return
	}

	reaction, err := h.reactions.Post(c.Request.Context(), middleware.UserID(c), roomID, req.Emoji)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"reaction": reaction})
}

func (h *ReactionHandler) List(c *gin.Context) {
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}
	reactions, err := h.reactions.Recent(c.Request.Context(), middleware.UserID(c), roomID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reactions": reactions})
}
