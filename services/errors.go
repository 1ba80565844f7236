package services

import (
	"errors"
	"fmt"
	"strings"
)

// Business errors surfaced to callers. Handlers map these onto transport
// status codes; anything not in this taxonomy is an opaque internal failure.
var (
	ErrInternal = errors.New("internal error")

	// Not found.
	ErrRoomNotFound = errors.New("room not found")
	ErrUserNotFound = errors.New("user not found")

	// Forbidden: capability check failed. ErrNotInvited distinguishes the
	// private-room case for caller-side messaging only; both deny.
	ErrForbidden  = errors.New("not authorized")
	ErrNotInvited = errors.New("not invited to this private room")

	// Rejected: valid request, invalid current state.
	ErrRoomNotLive   = errors.New("room is not live")
	ErrRoomFull      = errors.New("room is at maximum capacity")
	ErrAlreadyJoined = errors.New("already joined this room")
	ErrSelfInvite    = errors.New("cannot invite yourself, you are already the host")
	ErrInvalidInput  = errors.New("invalid input")

	// ErrCodeAllocationExhausted is a transient infrastructure fault: code
	// generation gave up within its retry bound. Safe to retry.
	ErrCodeAllocationExhausted = errors.New("could not allocate a unique room code")

	ErrRegistrationFailed   = errors.New("registration failed")
	ErrAuthenticationFailed = errors.New("invalid credentials")
)

// UnknownUsernamesError reports exactly which invitees could not be resolved;
// the invitation is all-or-nothing, so none were applied.
type UnknownUsernamesError struct {
	Usernames []string
}

func (e *UnknownUsernamesError) Error() string {
	return fmt.Sprintf("users not found: %s", strings.Join(e.Usernames, ", "))
}
