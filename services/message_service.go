package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"roomloop-backend/models"
	"roomloop-backend/repository"
)

const defaultHistoryLimit = 100

// MessageService posts and lists room chat messages. Messages are immutable
// once stored.
type MessageService struct {
	messages  repository.MessageRepository
	users     repository.UserRepository
	life      *Lifecycle
	access    *AccessEvaluator
	sink      EventSink
	maxLength int
}

func NewMessageService(
	messages repository.MessageRepository,
	users repository.UserRepository,
	life *Lifecycle,
	access *AccessEvaluator,
	sink EventSink,
	maxLength int,
) *MessageService {
	return &MessageService{
		messages:  messages,
		users:     users,
		life:      life,
		access:    access,
		sink:      sink,
		maxLength: maxLength,
	}
}

// Post validates, authorizes (auto-joining an invited sender), stores, and
// broadcasts a message to the room channel.
func (s *MessageService) Post(ctx context.Context, senderID, roomID uint, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: message content is required", ErrInvalidInput)
	}
	if s.maxLength > 0 && len(content) > s.maxLength {
		return nil, fmt.Errorf("%w: message exceeds %d characters", ErrInvalidInput, s.maxLength)
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

	msg := &models.Message{RoomID: roomID, SenderID: senderID, Username: sender.Username, Content: content}
	if err := s.messages.Save(ctx, msg); err != nil {
		logrus.WithError(err).WithField("room_id", roomID).Error("Failed to save message")
		return nil, ErrInternal
	}

	s.sink.ToRoom(roomID, EventReceiveMessage, MessageEvent{RoomID: roomID, Message: *msg})
	return msg, nil
}

// List returns the room's chat history in chronological order, gated by the
// read rule.
func (s *MessageService) List(ctx context.Context, viewerID, roomID uint) ([]models.Message, error) {
	room, err := s.life.Load(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !s.access.CanRead(viewerID, room) {
		return nil, ErrNotInvited
	}

	msgs, err := s.messages.ListByRoom(ctx, roomID, defaultHistoryLimit)
	if err != nil {
		logrus.WithError(err).WithField("room_id", roomID).Error("Failed to list messages")
		return nil, ErrInternal
	}
	return msgs, nil
}
