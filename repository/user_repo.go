package repository

import (
	"context"

	"roomloop-backend/models"
)

// UserRepository stores users and the user-side mirror of room membership.
type UserRepository interface {
	// Create persists a new user. Returns ErrDuplicateEntry when the
	// username or email is taken.
	Create(ctx context.Context, user *models.User) error

	// FindByID loads a user including the mirrored room-id sets.
	FindByID(ctx context.Context, id uint) (*models.User, error)

	FindByUsername(ctx context.Context, username string) (*models.User, error)

	// FindByLogin matches either username or email.
	FindByLogin(ctx context.Context, login string) (*models.User, error)

	// FindByUsernames resolves a batch; absent usernames are simply missing
	// from the result, the caller decides whether that is an error.
	FindByUsernames(ctx context.Context, usernames []string) ([]models.User, error)

	// AddRoomRelation records a mirror row (created/joined/invited).
	// Idempotent.
	AddRoomRelation(ctx context.Context, userID, roomID uint, relation string) error

	// MarkJoined mirrors a join or auto-join: adds the joined relation and
	// removes the invited one.
	MarkJoined(ctx context.Context, userID, roomID uint) error
}
