package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeStatus(t *testing.T) {
	start := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	tests := []struct {
		name string
		now  time.Time
		want RoomStatus
	}{
		{"before start", start.Add(-time.Minute), StatusScheduled},
		{"exactly at start", start, StatusLive},
		{"inside window", start.Add(time.Hour), StatusLive},
		{"exactly at end", end, StatusClosed},
		{"after end", end.Add(time.Minute), StatusClosed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeStatus(tt.now, start, end))
		})
	}
}

func TestRefreshStatus(t *testing.T) {
	start := time.Now().Add(-time.Hour)
	room := &Room{Status: StatusScheduled, StartTime: start, EndTime: start.Add(2 * time.Hour)}

	assert.True(t, room.RefreshStatus(time.Now()))
	assert.Equal(t, StatusLive, room.Status)

	// Second refresh inside the same window is a no-op.
	assert.False(t, room.RefreshStatus(time.Now()))
	assert.Equal(t, StatusLive, room.Status)
}

func TestAtCapacity(t *testing.T) {
	room := &Room{MaxParticipants: 2, Participants: []uint{1, 2}}
	assert.True(t, room.AtCapacity())

	room.MaxParticipants = 0
	assert.False(t, room.AtCapacity(), "zero means unlimited")

	room = &Room{MaxParticipants: 3, Participants: []uint{1, 2}}
	assert.False(t, room.AtCapacity())
}

func TestMembershipChecks(t *testing.T) {
	room := &Room{CreatorID: 1, Participants: []uint{1, 2}, InvitedUsers: []uint{3}}

	assert.True(t, room.IsCreator(1))
	assert.False(t, room.IsCreator(2))
	assert.True(t, room.IsParticipant(2))
	assert.True(t, room.IsInvited(3))
	assert.False(t, room.IsParticipant(3))
	assert.False(t, room.IsInvited(4))
}
