package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"roomloop-backend/models"
	"roomloop-backend/repository"
)

// InviteService grants invited access to rooms. Only the creator can invite,
// and a batch is all-or-nothing: one unknown username fails the whole call.
type InviteService struct {
	rooms  repository.RoomRepository
	users  repository.UserRepository
	life   *Lifecycle
	mirror *MirrorWriter
	sink   EventSink
}

func NewInviteService(
	rooms repository.RoomRepository,
	users repository.UserRepository,
	life *Lifecycle,
	mirror *MirrorWriter,
	sink EventSink,
) *InviteService {
	return &InviteService{rooms: rooms, users: users, life: life, mirror: mirror, sink: sink}
}

// Invite resolves usernames and adds every resolved user to the room's
// invited set. Users who already participate keep their participant standing
// and are not re-invited. Every resolved user gets a room_invitation event,
// including those whose invite was a no-op.
func (s *InviteService) Invite(ctx context.Context, inviterID, roomID uint, usernames []string) ([]models.User, error) {
	room, err := s.life.Load(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.IsCreator(inviterID) {
		return nil, ErrForbidden
	}
	if len(usernames) == 0 {
		return nil, ErrInvalidInput
	}

	inviter, err := s.users.FindByID(ctx, inviterID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", inviterID).Error("Failed to load inviter")
		return nil, ErrInternal
	}

	found, err := s.users.FindByUsernames(ctx, usernames)
	if err != nil {
		logrus.WithError(err).WithField("room_id", roomID).Error("Failed to resolve invitees")
		return nil, ErrInternal
	}
	if missing := missingUsernames(usernames, found); len(missing) > 0 {
		return nil, &UnknownUsernamesError{Usernames: missing}
	}

	invitees := make([]uint, 0, len(found))
	for _, user := range found {
		if user.ID == inviterID {
			return nil, ErrSelfInvite
		}
		invitees = append(invitees, user.ID)
	}

	if err := s.rooms.AddInvites(ctx, roomID, invitees); err != nil {
		logrus.WithError(err).WithField("room_id", roomID).Error("Failed to record invites")
		return nil, ErrInternal
	}

	event := InvitationEvent{RoomID: room.ID, RoomTitle: room.Title, InvitedBy: inviter.Username}
	for _, user := range found {
		if !room.IsParticipant(user.ID) {
			s.mirror.AddRelation(ctx, user.ID, roomID, models.RelationInvited)
		}
		s.sink.ToUser(user.ID, EventRoomInvitation, event)
	}

	logrus.WithFields(logrus.Fields{
		"room_id":  roomID,
		"inviter":  inviter.Username,
		"invitees": len(found),
	}).Info("Users invited to room")
	return found, nil
}

func missingUsernames(requested []string, found []models.User) []string {
	have := make(map[string]bool, len(found))
	for _, user := range found {
		have[user.Username] = true
	}
	var missing []string
	seen := make(map[string]bool, len(requested))
	for _, name := range requested {
		if !have[name] && !seen[name] {
			seen[name] = true
			missing = append(missing, name)
		}
	}
	return missing
}
