package repository

import "errors"

var (
	// ErrNotFound means the requested record does not exist.
	ErrNotFound = errors.New("repository: record not found")
	// ErrDuplicateEntry means a write violated a unique constraint.
	ErrDuplicateEntry = errors.New("repository: duplicate entry")

	// ErrAtCapacity is returned by AddParticipant when the capacity
	// precondition fails.
	ErrAtCapacity = errors.New("repository: room at capacity")
	// ErrAlreadyParticipant is returned by AddParticipant when the user is
	// already in the participant set.
	ErrAlreadyParticipant = errors.New("repository: already a participant")
)

var (
	ErrRoomNotFound = ErrNotFound
	ErrUserNotFound = ErrNotFound
)
