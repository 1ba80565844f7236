package services

import "roomloop-backend/models"

// Realtime event names are part of the wire contract clients depend on.
const (
	EventRoomStatusChanged = "room_status_changed"
	EventRoomInvitation    = "room_invitation"
	EventReceiveMessage    = "receive_message"
	EventReceiveReaction   = "receive_reaction"
)

// EventSink is the fanout hub as the services see it. Lifecycle events go to
// personal channels (ToUser), content events to room channels (ToRoom,
// sender included). Defined here so services don't import the ws package.
type EventSink interface {
	ToRoom(roomID uint, event string, payload any)
	ToUser(userID uint, event string, payload any)
}

type StatusChangedEvent struct {
	RoomID    uint              `json:"roomId"`
	RoomTitle string            `json:"roomTitle"`
	Status    models.RoomStatus `json:"status"`
}

type InvitationEvent struct {
	RoomID    uint   `json:"roomId"`
	RoomTitle string `json:"roomTitle"`
	InvitedBy string `json:"invitedBy"`
}

type MessageEvent struct {
	RoomID  uint           `json:"roomId"`
	Message models.Message `json:"message"`
}

type ReactionEvent struct {
	RoomID   uint            `json:"roomId"`
	Reaction models.Reaction `json:"reaction"`
}
