package repository

import (
	"context"
	"sync"
	"time"

	"roomloop-backend/models"
)

type InMemoryMessageRepo struct {
	mu   sync.RWMutex
	seq  uint
	byR  map[uint][]models.Message
}

func NewInMemoryMessageRepo() *InMemoryMessageRepo {
	return &InMemoryMessageRepo{byR: make(map[uint][]models.Message)}
}

func (r *InMemoryMessageRepo) Save(_ context.Context, msg *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	msg.ID = r.seq
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	r.byR[msg.RoomID] = append(r.byR[msg.RoomID], *msg)
	return nil
}

func (r *InMemoryMessageRepo) ListByRoom(_ context.Context, roomID uint, limit int) ([]models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	msgs := r.byR[roomID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return append([]models.Message(nil), msgs...), nil
}

type InMemoryReactionRepo struct {
	mu  sync.RWMutex
	seq uint
	byR map[uint][]models.Reaction
}

func NewInMemoryReactionRepo() *InMemoryReactionRepo {
	return &InMemoryReactionRepo{byR: make(map[uint][]models.Reaction)}
}

func (r *InMemoryReactionRepo) Save(_ context.Context, reaction *models.Reaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	reaction.ID = r.seq
	if reaction.CreatedAt.IsZero() {
		reaction.CreatedAt = time.Now()
	}
	r.byR[reaction.RoomID] = append(r.byR[reaction.RoomID], *reaction)
	return nil
}

func (r *InMemoryReactionRepo) ListRecentByRoom(_ context.Context, roomID uint, limit int) ([]models.Reaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reactions := r.byR[roomID]
	if limit > 0 && len(reactions) > limit {
		reactions = reactions[len(reactions)-limit:]
	}
	return append([]models.Reaction(nil), reactions...), nil
}
