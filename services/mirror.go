package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"roomloop-backend/models"
	"roomloop-backend/repository"
)

// MirrorRepairer schedules a retry for a failed user-side mirror write.
// Implemented by the asynq task client; nil means no repair backend.
type MirrorRepairer interface {
	EnqueueMirrorRepair(ctx context.Context, userID, roomID uint, relation string) error
}

// MirrorWriter applies the user-side mirror of room membership changes.
// Mirror writes are secondary: the room-side update is authoritative, so a
// failure here is logged and handed to the repairer, never propagated.
type MirrorWriter struct {
	users  repository.UserRepository
	repair MirrorRepairer
}

func NewMirrorWriter(users repository.UserRepository, repair MirrorRepairer) *MirrorWriter {
	if users == nil {
		panic("UserRepository cannot be nil for MirrorWriter")
	}
	return &MirrorWriter{users: users, repair: repair}
}

// MarkJoined mirrors a join or auto-join: adds the room to the user's joined
// set and removes it from invited-to.
func (m *MirrorWriter) MarkJoined(ctx context.Context, userID, roomID uint) {
	if err := m.users.MarkJoined(ctx, userID, roomID); err != nil {
		m.handleFailure(ctx, userID, roomID, models.RelationJoined, err)
	}
}

// AddRelation mirrors a created or invited relation.
func (m *MirrorWriter) AddRelation(ctx context.Context, userID, roomID uint, relation string) {
	if err := m.users.AddRoomRelation(ctx, userID, roomID, relation); err != nil {
		m.handleFailure(ctx, userID, roomID, relation, err)
	}
}

func (m *MirrorWriter) handleFailure(ctx context.Context, userID, roomID uint, relation string, err error) {
	logCtx := logrus.WithFields(logrus.Fields{
		"user_id":  userID,
		"room_id":  roomID,
		"relation": relation,
	})
	logCtx.WithError(err).Warn("Mirror write failed, room-side membership kept")

	if m.repair == nil {
		return
	}
	if err := m.repair.EnqueueMirrorRepair(ctx, userID, roomID, relation); err != nil {
		logCtx.WithError(err).Error("Failed to enqueue mirror repair task")
	}
}
