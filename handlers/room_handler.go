package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"roomloop-backend/middleware"
	"roomloop-backend/models"
	"roomloop-backend/services"
)

type RoomHandler struct {
	rooms   *services.RoomService
	invites *services.InviteService
}

func NewRoomHandler(rooms *services.RoomService, invites *services.InviteService) *RoomHandler {
	return &RoomHandler{rooms: rooms, invites: invites}
}

type createRoomRequest struct {
	Title           string    `json:"title" binding:"required"`
	Description     string    `json:"description"`
	Visibility      string    `json:"visibility"`
	StartTime       time.Time `json:"startTime" binding:"required"`
	EndTime         time.Time `json:"endTime" binding:"required"`
	MaxParticipants int       `json:"maxParticipants"`
	Tags            []string  `json:"tags"`
}

func (h *RoomHandler) Create(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title, startTime and endTime are required"})
		return
	}

	room, err := h.rooms.CreateRoom(c.Request.Context(), middleware.UserID(c), services.CreateRoomInput{
		Title:           req.Title,
		Description:     req.Description,
		Visibility:      models.Visibility(req.Visibility),
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		MaxParticipants: req.MaxParticipants,
		Tags:            req.Tags,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"room": room})
}

func (h *RoomHandler) Get(c *gin.Context) {
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}
	room, err := h.rooms.GetRoom(c.Request.Context(), middleware.UserID(c), roomID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"room": room})
}

func (h *RoomHandler) Join(c *gin.Context) {
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}
	if err := h.rooms.JoinRoom(c.Request.Context(), middleware.UserID(c), roomID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "joined room"})
}

type inviteRequest struct {
	Usernames []string `json:"usernames" binding:"required"`
}

func (h *RoomHandler) Invite(c *gin.Context) {
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}
	var req inviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "usernames are required"})
		return
	}

	invited, err := h.invites.Invite(c.Request.Context(), middleware.UserID(c), roomID, req.Usernames)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invited": invited})
}

func (h *RoomHandler) ListPublic(c *gin.Context) {
	rooms, err := h.rooms.ListPublicRooms(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

func (h *RoomHandler) ListAccessible(c *gin.Context) {
	rooms, err := h.rooms.ListAccessibleRooms(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

func (h *RoomHandler) ListMine(c *gin.Context) {
	buckets, err := h.rooms.ListUserRooms(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, buckets)
}

func roomIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return 0, false
	}
	return uint(id), true
}
