package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"roomloop-backend/services"
)

// respondError maps service errors to HTTP statuses in one place so every
// handler reports failures the same way.
func respondError(c *gin.Context, err error) {
	var unknown *services.UnknownUsernamesError
	switch {
	case errors.As(err, &unknown):
		c.JSON(http.StatusNotFound, gin.H{"error": "users not found", "usernames": unknown.Usernames})
	case errors.Is(err, services.ErrRoomNotFound),
		errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden),
		errors.Is(err, services.ErrNotInvited):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrRoomNotLive),
		errors.Is(err, services.ErrRoomFull),
		errors.Is(err, services.ErrAlreadyJoined),
		errors.Is(err, services.ErrSelfInvite),
		errors.Is(err, services.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrAuthenticationFailed):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrRegistrationFailed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrCodeAllocationExhausted):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
