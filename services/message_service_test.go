package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomloop-backend/models"
)

func TestPostMessageValidation(t *testing.T) {
	e := newTestEnv(t)
	host := e.user(t, "host")
	room := e.liveRoom(t, host.ID, CreateRoomInput{})

	_, err := e.msgSvc.Post(context.Background(), host.ID, room.ID, "   ")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.msgSvc.Post(context.Background(), host.ID, room.ID, strings.Repeat("x", 1001))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPostMessageRequiresLiveRoom(t *testing.T) {
	e := newTestEnv(t)
	host := e.user(t, "host")

	scheduled := e.scheduledRoom(t, host.ID, CreateRoomInput{})
	_, err := e.msgSvc.Post(context.Background(), host.ID, scheduled.ID, "too early")
	assert.ErrorIs(t, err, ErrRoomNotLive)

	closed := e.closedRoom(t, host.ID, CreateRoomInput{})
	_, err = e.msgSvc.Post(context.Background(), host.ID, closed.ID, "too late")
	assert.ErrorIs(t, err, ErrRoomNotLive)
}

func TestPostMessageDeniesNonMembers(t *testing.T) {
	e := newTestEnv(t)
	host := e.user(t, "host")
	stranger := e.user(t, "stranger")

	// Public visibility grants reads, not writes.
	room := e.liveRoom(t, host.ID, CreateRoomInput{})
	_, err := e.msgSvc.Post(context.Background(), stranger.ID, room.ID, "hi")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestPostMessageBroadcasts(t *testing.T) {
	e := newTestEnv(t)
	host := e.user(t, "host")
	room := e.liveRoom(t, host.ID, CreateRoomInput{})

	msg, err := e.msgSvc.Post(context.Background(), host.ID, room.ID, "hello room")
	require.NoError(t, err)
	assert.Equal(t, host.Username, msg.Username)
	assert.NotZero(t, msg.ID)

	events := e.sink.roomEvents(room.ID, EventReceiveMessage)
	require.Len(t, events, 1)
	payload := events[0].payload.(MessageEvent)
	assert.Equal(t, room.ID, payload.RoomID)
	assert.Equal(t, "hello room", payload.Message.Content)
}

func TestPostMessageAutoJoinsInvitedSender(t *testing.T) {
	e := newTestEnv(t)
	host := e.user(t, "host")
	invitee := e.user(t, "invitee")

	room := e.liveRoom(t, host.ID, CreateRoomInput{Visibility: models.VisibilityPrivate})
	e.invite(t, host.ID, room.ID, invitee.Username)

	_, err := e.msgSvc.Post(context.Background(), invitee.ID, room.ID, "first post")
	require.NoError(t, err)

	loaded, err := e.life.Load(context.Background(), room.ID)
	require.NoError(t, err)
	assert.True(t, loaded.IsParticipant(invitee.ID))
	assert.False(t, loaded.IsInvited(invitee.ID))
}

func TestListMessages(t *testing.T) {
	e := newTestEnv(t)
	host := e.user(t, "host")
	stranger := e.user(t, "stranger")

	room := e.liveRoom(t, host.ID, CreateRoomInput{Visibility: models.VisibilityPrivate})
	for _, text := range []string{"one", "two", "three"} {
		_, err := e.msgSvc.Post(context.Background(), host.ID, room.ID, text)
		require.NoError(t, err)
	}

	_, err := e.msgSvc.List(context.Background(), stranger.ID, room.ID)
	assert.ErrorIs(t, err, ErrNotInvited)

	msgs, err := e.msgSvc.List(context.Background(), host.ID, room.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "one", msgs[0].Content)
	assert.Equal(t, "three", msgs[2].Content)
}
