package handlers

import (
	"github.com/gin-gonic/gin"

	"roomloop-backend/middleware"
	"roomloop-backend/ws"
)

type WSHandler struct {
	hub *ws.Hub
}

func NewWSHandler(hub *ws.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// Connect upgrades an authenticated request to a websocket. The token comes
// in as a query parameter; the Auth middleware has already validated it.
func (h *WSHandler) Connect(c *gin.Context) {
	h.hub.ServeWS(c.Writer, c.Request, middleware.UserID(c), middleware.Username(c))
}
