package repository

import (
	"context"
	"sync"
	"time"

	"roomloop-backend/models"
)

type InMemoryUserRepo struct {
	mu        sync.RWMutex
	seq       uint
	byID      map[uint]*models.User
	byU       map[string]uint
	byE       map[string]uint
	relations map[uint]map[string][]uint // userID -> relation -> room ids
}

func NewInMemoryUserRepo() *InMemoryUserRepo {
	return &InMemoryUserRepo{
		byID:      make(map[uint]*models.User),
		byU:       make(map[string]uint),
		byE:       make(map[string]uint),
		relations: make(map[uint]map[string][]uint),
	}
}

func (r *InMemoryUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byU[user.Username]; taken {
		return ErrDuplicateEntry
	}
	if _, taken := r.byE[user.Email]; taken {
		return ErrDuplicateEntry
	}
	r.seq++
	user.ID = r.seq
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	stored := *user
	r.byID[user.ID] = &stored
	r.byU[user.Username] = user.ID
	r.byE[user.Email] = user.ID
	r.relations[user.ID] = make(map[string][]uint)
	return nil
}

func (r *InMemoryUserRepo) FindByID(_ context.Context, id uint) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loadLocked(id)
}

func (r *InMemoryUserRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byU[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	return r.loadLocked(id)
}

func (r *InMemoryUserRepo) FindByLogin(_ context.Context, login string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byU[login]
	if !ok {
		id, ok = r.byE[login]
	}
	if !ok {
		return nil, ErrUserNotFound
	}
	return r.loadLocked(id)
}

func (r *InMemoryUserRepo) FindByUsernames(_ context.Context, usernames []string) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]models.User, 0, len(usernames))
	for _, name := range usernames {
		id, ok := r.byU[name]
		if !ok {
			continue
		}
		u, err := r.loadLocked(id)
		if err != nil {
			continue
		}
		users = append(users, *u)
	}
	return users, nil
}

func (r *InMemoryUserRepo) AddRoomRelation(_ context.Context, userID, roomID uint, relation string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rel, ok := r.relations[userID]
	if !ok {
		return ErrUserNotFound
	}
	if !contains(rel[relation], roomID) {
		rel[relation] = append(rel[relation], roomID)
	}
	return nil
}

func (r *InMemoryUserRepo) MarkJoined(_ context.Context, userID, roomID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rel, ok := r.relations[userID]
	if !ok {
		return ErrUserNotFound
	}
	if !contains(rel[models.RelationJoined], roomID) {
		rel[models.RelationJoined] = append(rel[models.RelationJoined], roomID)
	}
	rel[models.RelationInvited] = remove(rel[models.RelationInvited], roomID)
	return nil
}

func (r *InMemoryUserRepo) loadLocked(id uint) (*models.User, error) {
	user, ok := r.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	loaded := *user
	rel := r.relations[id]
	loaded.CreatedRooms = append([]uint(nil), rel[models.RelationCreated]...)
	loaded.JoinedRooms = append([]uint(nil), rel[models.RelationJoined]...)
	loaded.InvitedToRooms = append([]uint(nil), rel[models.RelationInvited]...)
	return &loaded, nil
}
