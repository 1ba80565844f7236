package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"roomloop-backend/models"
	"roomloop-backend/repository"
)

// Lifecycle recomputes room status at read/write boundaries and persists the
// result, so the stored value tracks wall-clock truth without a background
// timer. The state machine itself is models.ComputeStatus.
type Lifecycle struct {
	rooms repository.RoomRepository
	sink  EventSink
	now   func() time.Time
}

func NewLifecycle(rooms repository.RoomRepository, sink EventSink) *Lifecycle {
	if rooms == nil {
		panic("RoomRepository cannot be nil for Lifecycle")
	}
	if sink == nil {
		panic("EventSink cannot be nil for Lifecycle")
	}
	return &Lifecycle{rooms: rooms, sink: sink, now: time.Now}
}

// Refresh recomputes and persists the room's status. When the refresh
// observes the SCHEDULED to LIVE transition, every participant and invitee is
// notified on their personal channel. Returns whether the status changed.
func (l *Lifecycle) Refresh(ctx context.Context, room *models.Room) bool {
	previous := room.Status
	if !room.RefreshStatus(l.now()) {
		return false
	}

	if err := l.rooms.SaveStatus(ctx, room.ID, room.Status); err != nil {
		// The recomputed value is still correct for this call; the next
		// touch will retry persistence.
		logrus.WithError(err).WithField("room_id", room.ID).Warn("Failed to persist recomputed room status")
	}

	if previous == models.StatusScheduled && room.Status == models.StatusLive {
		event := StatusChangedEvent{RoomID: room.ID, RoomTitle: room.Title, Status: room.Status}
		for _, userID := range room.Participants {
			l.sink.ToUser(userID, EventRoomStatusChanged, event)
		}
		for _, userID := range room.InvitedUsers {
			l.sink.ToUser(userID, EventRoomStatusChanged, event)
		}
		logrus.WithFields(logrus.Fields{
			"room_id": room.ID,
			"status":  room.Status,
		}).Info("Room went live, participants notified")
	}
	return true
}

// Load fetches a room and refreshes its status in the same touch.
func (l *Lifecycle) Load(ctx context.Context, roomID uint) (*models.Room, error) {
	room, err := l.rooms.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		logrus.WithError(err).WithField("room_id", roomID).Error("Failed to load room")
		return nil, ErrInternal
	}
	l.Refresh(ctx, room)
	return room, nil
}
