package repository

import (
	"context"

	"roomloop-backend/models"
)

type MessageRepository interface {
	Save(ctx context.Context, msg *models.Message) error

	// ListByRoom returns messages in chronological order. A limit of 0 means
	// no limit; otherwise the newest limit messages are returned, still
	// oldest-first.
	ListByRoom(ctx context.Context, roomID uint, limit int) ([]models.Message, error)
}

type ReactionRepository interface {
	Save(ctx context.Context, reaction *models.Reaction) error

	// ListRecentByRoom returns the newest limit reactions in chronological
	// order (oldest of the window first).
	ListRecentByRoom(ctx context.Context, roomID uint, limit int) ([]models.Reaction, error)
}
