package services

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"roomloop-backend/models"
	"roomloop-backend/repository"
)

// WriteDecision is the outcome of a write-capability check.
type WriteDecision int

const (
	WriteDenied WriteDecision = iota
	WriteAllowed
	WriteAllowedViaAutoJoin
)

// AccessEvaluator decides read/write capability for a (user, room) pair and
// performs implicit auto-join on writes. Auto-join is an atomic
// check-and-mutate delegated to the room repository, so concurrent writes by
// the same invited user promote them exactly once.
type AccessEvaluator struct {
	rooms  repository.RoomRepository
	mirror *MirrorWriter
}

func NewAccessEvaluator(rooms repository.RoomRepository, mirror *MirrorWriter) *AccessEvaluator {
	if rooms == nil {
		panic("RoomRepository cannot be nil for AccessEvaluator")
	}
	if mirror == nil {
		panic("MirrorWriter cannot be nil for AccessEvaluator")
	}
	return &AccessEvaluator{rooms: rooms, mirror: mirror}
}

// CanRead applies the read rule: public rooms are readable by any
// authenticated user, private rooms by creator, participants, and invitees.
// Reading never mutates membership.
func (e *AccessEvaluator) CanRead(userID uint, room *models.Room) bool {
	if room.Visibility == models.VisibilityPublic {
		return true
	}
	return room.IsCreator(userID) || room.IsParticipant(userID) || room.IsInvited(userID)
}

// AuthorizeWrite applies the write rule for chat and reactions: the room must
// be live, and the writer must be creator or participant. An invited writer
// is auto-joined (removed from invited, added to participants, mirrored on
// the user record) and then allowed. The room's in-memory sets are updated to
// reflect the promotion.
func (e *AccessEvaluator) AuthorizeWrite(ctx context.Context, userID uint, room *models.Room) (WriteDecision, error) {
	if room.Status != models.StatusLive {
		return WriteDenied, ErrRoomNotLive
	}
	if room.IsCreator(userID) || room.IsParticipant(userID) {
		return WriteAllowed, nil
	}
	if !room.IsInvited(userID) {
		return WriteDenied, ErrForbidden
	}

	// Auto-join never enforces capacity: invited users are considered
	// capacity-planned.
	err := e.rooms.AddParticipant(ctx, room.ID, userID, false)
	switch {
	case err == nil:
		e.mirror.MarkJoined(ctx, userID, room.ID)
		logrus.WithFields(logrus.Fields{
			"user_id": userID,
			"room_id": room.ID,
		}).Info("Invited user auto-joined on write")
	case errors.Is(err, repository.ErrAlreadyParticipant):
		// Lost a race against another write by the same user; the
		// promotion already happened.
	case errors.Is(err, repository.ErrRoomNotFound):
		return WriteDenied, ErrRoomNotFound
	default:
		logrus.WithError(err).WithFields(logrus.Fields{
			"user_id": userID,
			"room_id": room.ID,
		}).Error("Auto-join failed")
		return WriteDenied, ErrInternal
	}

	promote(room, userID)
	return WriteAllowedViaAutoJoin, nil
}

// promote moves the user between the room's in-memory sets so the caller's
// copy matches what the repository just committed.
func promote(room *models.Room, userID uint) {
	if !room.IsParticipant(userID) {
		room.Participants = append(room.Participants, userID)
	}
	for i, id := range room.InvitedUsers {
		if id == userID {
			room.InvitedUsers = append(room.InvitedUsers[:i], room.InvitedUsers[i+1:]...)
			break
		}
	}
}
