package models

import "time"

// Reaction shares Message's ownership and immutability contract; only the
// payload shape and retention differ (fanout keeps a bounded recent window).
type Reaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RoomID    uint      `gorm:"index;not null" json:"room_id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Username  string    `gorm:"-" json:"username,omitempty"`
	Emoji     string    `gorm:"size:32;not null" json:"emoji"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
