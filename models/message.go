package models

import "time"

// Message is immutable once created. The sender had write capability at
// creation time; that is not re-checked later.
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RoomID    uint      `gorm:"index;not null" json:"room_id"`
	SenderID  uint      `gorm:"index;not null" json:"sender_id"`
	Username  string    `gorm:"-" json:"username,omitempty"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
