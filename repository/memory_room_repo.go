package repository

import (
	"context"
	"sort"
	"sync"

	"roomloop-backend/models"
)

// InMemoryRoomRepo is the default store and the test double. A single mutex
// makes every membership mutation a precondition+mutation unit, which is all
// the atomicity concurrent joins need in-process.
type InMemoryRoomRepo struct {
	mu      sync.RWMutex
	seq     uint
	rooms   map[uint]*models.Room
	parts   map[uint][]uint // roomID -> participant user ids, insertion order
	invites map[uint][]uint // roomID -> invited user ids, insertion order
	byCode  map[string]uint
}

func NewInMemoryRoomRepo() *InMemoryRoomRepo {
	return &InMemoryRoomRepo{
		rooms:   make(map[uint]*models.Room),
		parts:   make(map[uint][]uint),
		invites: make(map[uint][]uint),
		byCode:  make(map[string]uint),
	}
}

func (r *InMemoryRoomRepo) Create(_ context.Context, room *models.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byCode[room.Code]; taken {
		return ErrDuplicateEntry
	}
	r.seq++
	room.ID = r.seq

	stored := *room
	stored.Participants = nil
	stored.InvitedUsers = nil
	r.rooms[room.ID] = &stored
	r.byCode[room.Code] = room.ID

	r.parts[room.ID] = []uint{room.CreatorID}
	room.Participants = []uint{room.CreatorID}
	room.InvitedUsers = nil
	return nil
}

func (r *InMemoryRoomRepo) FindByID(_ context.Context, id uint) (*models.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loadLocked(id)
}

func (r *InMemoryRoomRepo) FindByIDs(_ context.Context, ids []uint) ([]models.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := make([]models.Room, 0, len(ids))
	for _, id := range ids {
		room, err := r.loadLocked(id)
		if err != nil {
			continue
		}
		rooms = append(rooms, *room)
	}
	return rooms, nil
}

func (r *InMemoryRoomRepo) CodeExists(_ context.Context, code string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byCode[code]
	return ok, nil
}

func (r *InMemoryRoomRepo) SaveStatus(_ context.Context, roomID uint, status models.RoomStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}
	room.Status = status
	return nil
}

func (r *InMemoryRoomRepo) AddParticipant(_ context.Context, roomID, userID uint, enforceCapacity bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}
	if contains(r.parts[roomID], userID) {
		return ErrAlreadyParticipant
	}
	if enforceCapacity && room.MaxParticipants > 0 && len(r.parts[roomID]) >= room.MaxParticipants {
		return ErrAtCapacity
	}

	r.parts[roomID] = append(r.parts[roomID], userID)
	r.invites[roomID] = remove(r.invites[roomID], userID)
	return nil
}

func (r *InMemoryRoomRepo) AddInvites(_ context.Context, roomID uint, userIDs []uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[roomID]; !ok {
		return ErrRoomNotFound
	}
	for _, id := range userIDs {
		if contains(r.parts[roomID], id) || contains(r.invites[roomID], id) {
			continue
		}
		r.invites[roomID] = append(r.invites[roomID], id)
	}
	return nil
}

func (r *InMemoryRoomRepo) ListPublicOpen(_ context.Context) ([]models.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var rooms []models.Room
	for id, room := range r.rooms {
		if room.Visibility != models.VisibilityPublic || room.Status == models.StatusClosed {
			continue
		}
		loaded, _ := r.loadLocked(id)
		rooms = append(rooms, *loaded)
	}
	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].StartTime.Before(rooms[j].StartTime)
	})
	return rooms, nil
}

// loadLocked copies the room with its membership sets; callers hold the lock.
func (r *InMemoryRoomRepo) loadLocked(id uint) (*models.Room, error) {
	room, ok := r.rooms[id]
	if !ok {
		return nil, ErrRoomNotFound
	}
	loaded := *room
	loaded.Participants = append([]uint(nil), r.parts[id]...)
	loaded.InvitedUsers = append([]uint(nil), r.invites[id]...)
	return &loaded, nil
}

func contains(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func remove(ids []uint, id uint) []uint {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
