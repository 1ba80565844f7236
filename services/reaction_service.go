package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"roomloop-backend/models"
	"roomloop-backend/repository"
)

const (
	recentReactionLimit = 100
	maxEmojiLength      = 16
)

// ReactionCache is a hot read-through store for the recent-reaction window.
// Implemented by the Redis cache; nil disables caching.
type ReactionCache interface {
	Push(ctx context.Context, reaction models.Reaction)
	Recent(ctx context.Context, roomID uint) ([]models.Reaction, bool)
}

// ReactionService posts emoji reactions and serves the recent window.
type ReactionService struct {
	reactions repository.ReactionRepository
	users     repository.UserRepository
	life      *Lifecycle
	access    *AccessEvaluator
	sink      EventSink
	cache     ReactionCache
}

func NewReactionService(
	reactions repository.ReactionRepository,
	users repository.UserRepository,
	life *Lifecycle,
	access *AccessEvaluator,
	sink EventSink,
	cache ReactionCache,
) *ReactionService {
	return &ReactionService{
		reactions: reactions,
		users:     users,
		life:      life,
		access:    access,
		sink:      sink,
		cache:     cache,
	}
}

// Post authorizes the sender under the same write rule as chat (including
// auto-join), stores the reaction, and broadcasts it to the room channel.
func (s *ReactionService) Post(ctx context.Context, senderID, roomID uint, emoji string) (*models.Reaction, error) {
	emoji = strings.TrimSpace(emoji)
	if emoji == "" || utf8.RuneCountInString(emoji) > maxEmojiLength {
		return nil, ErrInvalidInput
	}

	room, err := s.life.Load(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.AuthorizeWrite(ctx, senderID, room); err != nil {
		return nil, err
	}

	sender, err := s.users.FindByID(ctx, senderID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", senderID).Error("Failed to load sender")
		return nil, ErrInternal
	}

	reaction := &models.Reaction{RoomID: roomID, UserID: senderID, Username: sender.Username, Emoji: emoji}
	if err := s.reactions.Save(ctx, reaction); err != nil {
		logrus.WithError(err).WithField("room_id", roomID).Error("Failed to save reaction")
		return nil, ErrInternal
	}

	if s.cache != nil {
		s.cache.Push(ctx, *reaction)
	}
	s.sink.ToRoom(roomID, EventReceiveReaction, ReactionEvent{RoomID: roomID, Reaction: *reaction})
	return reaction, nil
}

// Recent returns the last reactions in chronological order, gated by the
// read rule. The cache is consulted first; a miss falls through to the store.
func (s *ReactionService) Recent(ctx context.Context, viewerID, roomID uint) ([]models.Reaction, error) {
	room, err := s.life.Load(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !s.access.CanRead(viewerID, room) {
		return nil, ErrNotInvited
	}

	if s.cache != nil {
		if reactions, ok := s.cache.Recent(ctx, roomID); ok {
			return reactions, nil
		}
	}

	reactions, err := s.reactions.ListRecentByRoom(ctx, roomID, recentReactionLimit)
	if err != nil {
		logrus.WithError(err).WithField("room_id", roomID).Error("Failed to list reactions")
		return nil, ErrInternal
	}
	return reactions, nil
}
