package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"roomloop-backend/models"
	"roomloop-backend/repository"
)

// fakeSink records every event so tests can assert on fanout.
type fakeSink struct {
	mu     sync.Mutex
	events []sinkEvent
}

type sinkEvent struct {
	target  string // "room" or "user"
	id      uint
	event   string
	payload any
}

func (s *fakeSink) ToRoom(roomID uint, event string, payload any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, sinkEvent{target: "room", id: roomID, event: event, payload: payload})
}

func (s *fakeSink) ToUser(userID uint, event string, payload any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, sinkEvent{target: "user", id: userID, event: event, payload: payload})
}

func (s *fakeSink) roomEvents(roomID uint, event string) []sinkEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []sinkEvent
	for _, e := range s.events {
		if e.target == "room" && e.id == roomID && e.event == event {
			out = append(out, e)
		}
	}
	return out
}

func (s *fakeSink) userEvents(userID uint, event string) []sinkEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []sinkEvent
	for _, e := range s.events {
		if e.target == "user" && e.id == userID && e.event == event {
			out = append(out, e)
		}
	}
	return out
}

// testEnv wires the full service stack onto in-memory repositories.
type testEnv struct {
	rooms     *repository.InMemoryRoomRepo
	users     *repository.InMemoryUserRepo
	messages  *repository.InMemoryMessageRepo
	reactions *repository.InMemoryReactionRepo
	sink      *fakeSink

	mirror    *MirrorWriter
	life      *Lifecycle
	access    *AccessEvaluator
	roomSvc   *RoomService
	inviteSvc *InviteService
	msgSvc    *MessageService
	reactSvc  *ReactionService

	seq int
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	e := &testEnv{
		rooms:     repository.NewInMemoryRoomRepo(),
		users:     repository.NewInMemoryUserRepo(),
		messages:  repository.NewInMemoryMessageRepo(),
		reactions: repository.NewInMemoryReactionRepo(),
		sink:      &fakeSink{},
	}
	e.mirror = NewMirrorWriter(e.users, nil)
	e.life = NewLifecycle(e.rooms, e.sink)
	e.access = NewAccessEvaluator(e.rooms, e.mirror)
	codes := NewCodeAllocator(e.rooms)
	e.roomSvc = NewRoomService(e.rooms, e.users, codes, e.access, e.life, e.mirror)
	e.inviteSvc = NewInviteService(e.rooms, e.users, e.life, e.mirror, e.sink)
	e.msgSvc = NewMessageService(e.messages, e.users, e.life, e.access, e.sink, 1000)
	e.reactSvc = NewReactionService(e.reactions, e.users, e.life, e.access, e.sink, nil)
	return e
}

func (e *testEnv) user(t *testing.T, name string) *models.User {
	t.Helper()
	e.seq++
	u := &models.User{
		Username: name,
		Email:    fmt.Sprintf("%s%d@example.com", name, e.seq),
		Password: "hashed",
	}
	require.NoError(t, e.users.Create(context.Background(), u))
	return u
}

func (e *testEnv) liveRoom(t *testing.T, creatorID uint, in CreateRoomInput) *models.Room {
	t.Helper()
	if in.Title == "" {
		in.Title = "test room"
	}
	if in.StartTime.IsZero() {
		in.StartTime = time.Now().Add(-time.Hour)
	}
	if in.EndTime.IsZero() {
		in.EndTime = time.Now().Add(time.Hour)
	}
	room, err := e.roomSvc.CreateRoom(context.Background(), creatorID, in)
	require.NoError(t, err)
	return room
}

func (e *testEnv) scheduledRoom(t *testing.T, creatorID uint, in CreateRoomInput) *models.Room {
	t.Helper()
	in.StartTime = time.Now().Add(time.Hour)
	in.EndTime = time.Now().Add(2 * time.Hour)
	return e.liveRoom(t, creatorID, in)
}

func (e *testEnv) closedRoom(t *testing.T, creatorID uint, in CreateRoomInput) *models.Room {
	t.Helper()
	in.StartTime = time.Now().Add(-2 * time.Hour)
	in.EndTime = time.Now().Add(-time.Hour)
	return e.liveRoom(t, creatorID, in)
}

func (e *testEnv) invite(t *testing.T, inviterID, roomID uint, usernames ...string) {
	t.Helper()
	_, err := e.inviteSvc.Invite(context.Background(), inviterID, roomID, usernames)
	require.NoError(t, err)
}
