package models

import "time"

type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"size:191;uniqueIndex;not null" json:"username"`
	Email    string `gorm:"size:191;uniqueIndex;not null" json:"email"`
	Password string `gorm:"type:text;not null" json:"-"`

	// Mirror image of the Room membership sets, maintained as secondary
	// writes (see UserRoom). Loaded from the user_rooms table.
	CreatedRooms   []uint `gorm:"-" json:"created_rooms"`
	JoinedRooms    []uint `gorm:"-" json:"joined_rooms"`
	InvitedToRooms []uint `gorm:"-" json:"invited_to_rooms"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Room relation kinds stored on the user side.
const (
	RelationCreated = "created"
	RelationJoined  = "joined"
	RelationInvited = "invited"
)

// UserRoom is the user-side mirror of a room membership relation. A failed
// mirror write is tolerated and repaired asynchronously; the room-side sets
// stay authoritative.
type UserRoom struct {
	UserID    uint      `gorm:"primaryKey;index"`
	RoomID    uint      `gorm:"primaryKey"`
	Relation  string    `gorm:"primaryKey;size:16"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}
