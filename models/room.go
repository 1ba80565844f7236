package models

import "time"

type RoomStatus string

const (
	StatusScheduled RoomStatus = "scheduled"
	StatusLive      RoomStatus = "live"
	StatusClosed    RoomStatus = "closed"
)

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Room is a time-boxed space: scheduled before StartTime, live inside
// [StartTime, EndTime), closed after. Status is derived from the window and
// persisted on every touch so the stored value never drifts far from
// wall-clock truth.
type Room struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Code        string     `gorm:"uniqueIndex;size:16;not null" json:"code"`
	Title       string     `gorm:"size:191;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Visibility  Visibility `gorm:"size:16;not null;default:public" json:"visibility"`
	Status      RoomStatus `gorm:"size:16;not null;default:scheduled" json:"status"`
	CreatorID   uint       `gorm:"index;not null" json:"creator_id"`
	StartTime   time.Time  `gorm:"index;not null" json:"start_time"`
	EndTime     time.Time  `gorm:"not null" json:"end_time"`

	// MaxParticipants of 0 means unlimited.
	MaxParticipants int      `json:"max_participants,omitempty"`
	Tags            []string `gorm:"serializer:json" json:"tags"`

	// Membership sets, loaded from the join tables below. Invariants:
	// creator is always a participant, and the two sets are disjoint.
	Participants []uint `gorm:"-" json:"participants"`
	InvitedUsers []uint `gorm:"-" json:"invited_users"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// RoomParticipant is one row of a room's participant set.
type RoomParticipant struct {
	RoomID   uint      `gorm:"primaryKey"`
	UserID   uint      `gorm:"primaryKey;index"`
	JoinedAt time.Time `gorm:"autoCreateTime"`
}

// RoomInvite is one row of a room's invited set. Joining (or auto-joining)
// deletes the row and inserts a RoomParticipant in the same operation.
type RoomInvite struct {
	RoomID    uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"primaryKey;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// ComputeStatus derives a room's status from its window. Pure and total; the
// only place the state machine lives.
func ComputeStatus(now, startTime, endTime time.Time) RoomStatus {
	switch {
	case now.Before(startTime):
		return StatusScheduled
	case now.Before(endTime):
		return StatusLive
	default:
		return StatusClosed
	}
}

// RefreshStatus recomputes the stored status and reports whether it changed,
// so the caller can decide to persist and announce the transition.
func (r *Room) RefreshStatus(now time.Time) bool {
	next := ComputeStatus(now, r.StartTime, r.EndTime)
	if next == r.Status {
		return false
	}
	r.Status = next
	return true
}

func (r *Room) IsCreator(userID uint) bool { return r.CreatorID == userID }

func (r *Room) IsParticipant(userID uint) bool {
	for _, id := range r.Participants {
		if id == userID {
			return true
		}
	}
	return false
}

func (r *Room) IsInvited(userID uint) bool {
	for _, id := range r.InvitedUsers {
		if id == userID {
			return true
		}
	}
	return false
}

// AtCapacity reports whether another participant would exceed the limit.
func (r *Room) AtCapacity() bool {
	return r.MaxParticipants > 0 && len(r.Participants) >= r.MaxParticipants
}
