package repository

import (
	"context"

	"roomloop-backend/models"
)

// RoomRepository stores rooms and their membership sets. Implementations must
// make AddParticipant and AddInvites atomic: the precondition check and the
// set mutation happen as one unit, so concurrent joins cannot overshoot
// capacity or produce duplicate entries.
type RoomRepository interface {
	// Create persists a new room together with its initial participant set
	// (the creator) and assigns the ID.
	Create(ctx context.Context, room *models.Room) error

	// FindByID loads a room including its participant and invited sets.
	// Returns ErrRoomNotFound when absent.
	FindByID(ctx context.Context, id uint) (*models.Room, error)

	// FindByIDs loads the given rooms with membership sets; missing IDs are
	// skipped silently.
	FindByIDs(ctx context.Context, ids []uint) ([]models.Room, error)

	// CodeExists reports whether a room code is taken.
	CodeExists(ctx context.Context, code string) (bool, error)

	// SaveStatus persists a recomputed status for a room.
	SaveStatus(ctx context.Context, roomID uint, status models.RoomStatus) error

	// AddParticipant adds the user to the participant set and removes them
	// from the invited set in one atomic operation. With enforceCapacity set,
	// the capacity precondition is checked inside the same unit. Returns
	// ErrAlreadyParticipant, ErrAtCapacity, or ErrRoomNotFound.
	AddParticipant(ctx context.Context, roomID, userID uint, enforceCapacity bool) error

	// AddInvites unions the given users into the invited set, skipping any
	// that are already participants. Idempotent.
	AddInvites(ctx context.Context, roomID uint, userIDs []uint) error

	// ListPublicOpen returns public rooms whose stored status is not closed,
	// ascending by start time.
	ListPublicOpen(ctx context.Context) ([]models.Room, error)
}
