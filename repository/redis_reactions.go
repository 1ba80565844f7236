package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"roomloop-backend/models"
)

const (
	// recentReactionWindow bounds how many reactions the cache retains per
	// room; the recent-reaction query never returns more than this.
	recentReactionWindow = 100

	reactionKeyTTL = 24 * time.Hour
)

// RedisReactionCache keeps the bounded recent-reaction window per room in a
// redis list (newest at the head). It sits in front of a ReactionRepository:
// pushes are best-effort, reads fall back to the repository on a miss.
type RedisReactionCache struct {
	client *redis.Client
}

func NewRedisReactionCache(client *redis.Client) *RedisReactionCache {
	if client == nil {
		panic("redis client cannot be nil for RedisReactionCache")
	}
	return &RedisReactionCache{client: client}
}

func reactionKey(roomID uint) string {
	return fmt.Sprintf("room:%d:reactions", roomID)
}

// Push prepends a reaction and trims the list to the window. Failures are
// logged, not surfaced: the repository stays the source of truth.
func (c *RedisReactionCache) Push(ctx context.Context, reaction models.Reaction) {
	data, err := json.Marshal(reaction)
	if err != nil {
		logrus.WithError(err).WithField("room_id", reaction.RoomID).Warn("Reaction cache: marshal failed")
		return
	}
	key := reactionKey(reaction.RoomID)
	pipe := c.client.Pipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, recentReactionWindow-1)
	pipe.Expire(ctx, key, reactionKeyTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		logrus.WithError(err).WithField("room_id", reaction.RoomID).Warn("Reaction cache: push failed")
	}
}

// Recent returns the cached window in chronological order. ok is false when
// the cache has nothing for the room (or errored), signalling a fallback.
func (c *RedisReactionCache) Recent(ctx context.Context, roomID uint) ([]models.Reaction, bool) {
	raw, err := c.client.LRange(ctx, reactionKey(roomID), 0, recentReactionWindow-1).Result()
	if err != nil || len(raw) == 0 {
		if err != nil && err != redis.Nil {
			logrus.WithError(err).WithField("room_id", roomID).Warn("Reaction cache: read failed")
		}
		return nil, false
	}

	// List head is newest; decode back to oldest-first.
	reactions := make([]models.Reaction, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		var reaction models.Reaction
		if err := json.Unmarshal([]byte(raw[i]), &reaction); err != nil {
			logrus.WithError(err).WithField("room_id", roomID).Warn("Reaction cache: corrupt entry, dropping window")
			return nil, false
		}
		reactions = append(reactions, reaction)
	}
	return reactions, true
}
