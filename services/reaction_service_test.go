package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomloop-backend/models"
)

type fakeReactionCache struct {
	mu     sync.Mutex
	pushed []models.Reaction
	recent []models.Reaction
	hit    bool
}

func (c *fakeReactionCache) Push(_ context.Context, reaction models.Reaction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pushed = append(c.pushed, reaction)
}

func (c *fakeReactionCache) Recent(context.Context, uint) ([]models.Reaction, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recent, c.hit
}

func TestPostReaction(t *testing.T) {
	e := newTestEnv(t)
	host := e.user(t, "host")
	room := e.liveRoom(t, host.ID, CreateRoomInput{})

	reaction, err := e.reactSvc.Post(context.Background(), host.ID, room.ID, "🎉")
	require.NoError(t, err)
	assert.Equal(t, host.Username, reaction.Username)

	events := e.sink.roomEvents(room.ID, EventReceiveReaction)
	require.Len(t, events, 1)
	payload := events[0].payload.(ReactionEvent)
	assert.Equal(t, "🎉", payload.Reaction.Emoji)

	_, err = e.reactSvc.Post(context.Background(), host.ID, room.ID, "  ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPostReactionRequiresLiveRoom(t *testing.T) {
	e := newTestEnv(t)
	host := e.user(t, "host")
	room := e.scheduledRoom(t, host.ID, CreateRoomInput{})

	_, err := e.reactSvc.Post(context.Background(), host.ID, room.ID, "👀")
	assert.ErrorIs(t, err, ErrRoomNotLive)
}

func TestPostReactionWritesCache(t *testing.T) {
	e := newTestEnv(t)
	cache := &fakeReactionCache{}
	e.reactSvc = NewReactionService(e.reactions, e.users, e.life, e.access, e.sink, cache)

	host := e.user(t, "host")
	room := e.liveRoom(t, host.ID, CreateRoomInput{})

	_, err := e.reactSvc.Post(context.Background(), host.ID, room.ID, "🔥")
	require.NoError(t, err)
	require.Len(t, cache.pushed, 1)
	assert.Equal(t, "🔥", cache.pushed[0].Emoji)
}

func TestRecentReactionsWindow(t *testing.T) {
	e := newTestEnv(t)
	host := e.user(t, "host")
	room := e.liveRoom(t, host.ID, CreateRoomInput{})

	for i := 0; i < 105; i++ {
		_, err := e.reactSvc.Post(context.Background(), host.ID, room.ID, fmt.Sprintf("e%d", i))
		require.NoError(t, err)
	}

	reactions, err := e.reactSvc.Recent(context.Background(), host.ID, room.ID)
	require.NoError(t, err)
	require.Len(t, reactions, 100)
	assert.Equal(t, "e5", reactions[0].Emoji, "oldest surviving reaction first")
	assert.Equal(t, "e104", reactions[99].Emoji, "newest last")
}

func TestRecentReactionsPrefersCacheHit(t *testing.T) {
	e := newTestEnv(t)
	host := e.user(t, "host")
	room := e.liveRoom(t, host.ID, CreateRoomInput{})

	cached := []models.Reaction{{RoomID: room.ID, Emoji: "💾"}}
	cache := &fakeReactionCache{recent: cached, hit: true}
	e.reactSvc = NewReactionService(e.reactions, e.users, e.life, e.access, e.sink, cache)

	reactions, err := e.reactSvc.Recent(context.Background(), host.ID, room.ID)
	require.NoError(t, err)
	assert.Equal(t, cached, reactions)

	// A miss falls back to the store.
	cache.hit = false
	_, err = e.reactSvc.Post(context.Background(), host.ID, room.ID, "📀")
	require.NoError(t, err)
	reactions, err = e.reactSvc.Recent(context.Background(), host.ID, room.ID)
	require.NoError(t, err)
	require.Len(t, reactions, 1)
	assert.Equal(t, "📀", reactions[0].Emoji)
}

func TestRecentReactionsGatedByReadRule(t *testing.T) {
	e := newTestEnv(t)
	host := e.user(t, "host")
	stranger := e.user(t, "stranger")
	room := e.liveRoom(t, host.ID, CreateRoomInput{Visibility: models.VisibilityPrivate})

	_, err := e.reactSvc.Recent(context.Background(), stranger.ID, room.ID)
	assert.ErrorIs(t, err, ErrNotInvited)
}
