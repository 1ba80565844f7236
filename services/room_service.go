package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"roomloop-backend/models"
	"roomloop-backend/repository"
)

type RoomService struct {
	rooms  repository.RoomRepository
	users  repository.UserRepository
	codes  *CodeAllocator
	access *AccessEvaluator
	life   *Lifecycle
	mirror *MirrorWriter
}

func NewRoomService(
	rooms repository.RoomRepository,
	users repository.UserRepository,
	codes *CodeAllocator,
	access *AccessEvaluator,
	life *Lifecycle,
	mirror *MirrorWriter,
) *RoomService {
	return &RoomService{rooms: rooms, users: users, codes: codes, access: access, life: life, mirror: mirror}
}

type CreateRoomInput struct {
	Title           string
	Description     string
	Visibility      models.Visibility
	StartTime       time.Time
	EndTime         time.Time
	MaxParticipants int
	Tags            []string
}

// CreateRoom allocates a code and persists a new room with the creator as
// first participant. Status is computed from the window at creation time.
func (s *RoomService) CreateRoom(ctx context.Context, creatorID uint, in CreateRoomInput) (*models.Room, error) {
	logCtx := logrus.WithField("creator_id", creatorID)

	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if !in.StartTime.Before(in.EndTime) {
		return nil, fmt.Errorf("%w: start time must be before end time", ErrInvalidInput)
	}
	if in.MaxParticipants < 0 {
		return nil, fmt.Errorf("%w: max participants cannot be negative", ErrInvalidInput)
	}
	if in.Visibility == "" {
		in.Visibility = models.VisibilityPublic
	}
	if in.Visibility != models.VisibilityPublic && in.Visibility != models.VisibilityPrivate {
		return nil, fmt.Errorf("%w: visibility must be public or private", ErrInvalidInput)
	}

	code, err := s.codes.Allocate(ctx)
	if err != nil {
		if errors.Is(err, ErrCodeAllocationExhausted) {
			return nil, err
		}
		logCtx.WithError(err).Error("Room code allocation failed")
		return nil, ErrInternal
	}

	room := &models.Room{
		Code:            code,
		Title:           in.Title,
		Description:     in.Description,
		Visibility:      in.Visibility,
		Status:          models.ComputeStatus(time.Now(), in.StartTime, in.EndTime),
		CreatorID:       creatorID,
		StartTime:       in.StartTime,
		EndTime:         in.EndTime,
		MaxParticipants: in.MaxParticipants,
		Tags:            in.Tags,
	}
	if err := s.rooms.Create(ctx, room); err != nil {
		logCtx.WithError(err).Error("Failed to persist new room")
		return nil, ErrInternal
	}

	s.mirror.AddRelation(ctx, creatorID, room.ID, models.RelationCreated)
	s.mirror.AddRelation(ctx, creatorID, room.ID, models.RelationJoined)

	logCtx.WithFields(logrus.Fields{"room_id": room.ID, "code": room.Code}).Info("Room created")
	return room, nil
}

// GetRoom loads a room for a viewer, refreshing its status (which may emit
// the went-live broadcast). Private rooms require the read rule.
func (s *RoomService) GetRoom(ctx context.Context, viewerID, roomID uint) (*models.Room, error) {
	room, err := s.life.Load(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !s.access.CanRead(viewerID, room) {
		return nil, ErrNotInvited
	}
	return room, nil
}

// JoinRoom adds the user to the participant set. The capacity precondition
// and the dedup check run atomically in the repository, so concurrent joins
// cannot overshoot maxParticipants.
func (s *RoomService) JoinRoom(ctx context.Context, userID, roomID uint) error {
	room, err := s.life.Load(ctx, roomID)
	if err != nil {
		return err
	}

	if room.Visibility == models.VisibilityPrivate &&
		!room.IsCreator(userID) && !room.IsInvited(userID) && !room.IsParticipant(userID) {
		return ErrNotInvited
	}

	if err := s.rooms.AddParticipant(ctx, roomID, userID, true); err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyParticipant):
			return ErrAlreadyJoined
		case errors.Is(err, repository.ErrAtCapacity):
			return ErrRoomFull
		case errors.Is(err, repository.ErrRoomNotFound):
			return ErrRoomNotFound
		default:
			logrus.WithError(err).WithFields(logrus.Fields{
				"user_id": userID,
				"room_id": roomID,
			}).Error("Failed to join room")
			return ErrInternal
		}
	}

	s.mirror.MarkJoined(ctx, userID, roomID)
	logrus.WithFields(logrus.Fields{"user_id": userID, "room_id": roomID}).Info("User joined room")
	return nil
}

// RoomBuckets are the four de-duplicated views of a user's rooms.
type RoomBuckets struct {
	Upcoming []models.Room `json:"upcoming"`
	Live     []models.Room `json:"live"`
	Past     []models.Room `json:"past"`
	Invites  []models.Room `json:"invites"`
}

// ListUserRooms splits the user's rooms into upcoming/live/past (rooms they
// created or joined) and invites (non-closed rooms they are only invited
// to). Every returned room has a freshly recomputed status, and a stale
// invited-mirror entry for a room the user already participates in is
// repaired on the way through.
func (s *RoomService) ListUserRooms(ctx context.Context, userID uint) (*RoomBuckets, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to load user")
		return nil, ErrInternal
	}

	memberIDs := union(user.CreatedRooms, user.JoinedRooms)
	memberRooms, err := s.rooms.FindByIDs(ctx, memberIDs)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to load member rooms")
		return nil, ErrInternal
	}
	invitedRooms, err := s.rooms.FindByIDs(ctx, user.InvitedToRooms)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to load invited rooms")
		return nil, ErrInternal
	}

	buckets := &RoomBuckets{}
	seen := make(map[uint]bool)

	for i := range memberRooms {
		room := &memberRooms[i]
		s.life.Refresh(ctx, room)
		if seen[room.ID] {
			continue
		}
		seen[room.ID] = true
		switch room.Status {
		case models.StatusScheduled:
			buckets.Upcoming = append(buckets.Upcoming, *room)
		case models.StatusLive:
			buckets.Live = append(buckets.Live, *room)
		case models.StatusClosed:
			buckets.Past = append(buckets.Past, *room)
		}
	}

	for i := range invitedRooms {
		room := &invitedRooms[i]
		s.life.Refresh(ctx, room)
		if seen[room.ID] {
			continue
		}
		seen[room.ID] = true
		if room.IsParticipant(userID) {
			// Stale mirror: the room-side set says joined. Repair and
			// file the room under its membership bucket.
			s.mirror.MarkJoined(ctx, userID, room.ID)
			switch room.Status {
			case models.StatusScheduled:
				buckets.Upcoming = append(buckets.Upcoming, *room)
			case models.StatusLive:
				buckets.Live = append(buckets.Live, *room)
			case models.StatusClosed:
				buckets.Past = append(buckets.Past, *room)
			}
			continue
		}
		if room.Status != models.StatusClosed {
			buckets.Invites = append(buckets.Invites, *room)
		}
	}

	sortByStart(buckets.Upcoming)
	sortByStart(buckets.Live)
	sortByStart(buckets.Invites)
	sort.Slice(buckets.Past, func(i, j int) bool {
		return buckets.Past[i].EndTime.After(buckets.Past[j].EndTime)
	})
	return buckets, nil
}

// ListPublicRooms returns non-closed public rooms, ascending by start time.
func (s *RoomService) ListPublicRooms(ctx context.Context) ([]models.Room, error) {
	rooms, err := s.rooms.ListPublicOpen(ctx)
	if err != nil {
		logrus.WithError(err).Error("Failed to list public rooms")
		return nil, ErrInternal
	}
	open := rooms[:0]
	for i := range rooms {
		s.life.Refresh(ctx, &rooms[i])
		if rooms[i].Status != models.StatusClosed {
			open = append(open, rooms[i])
		}
	}
	return open, nil
}

// ListAccessibleRooms returns non-closed public rooms plus non-closed
// private rooms the user can read, ascending by start time.
func (s *RoomService) ListAccessibleRooms(ctx context.Context, userID uint) ([]models.Room, error) {
	public, err := s.ListPublicRooms(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[uint]bool, len(public))
	for _, room := range public {
		seen[room.ID] = true
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to load user")
		return nil, ErrInternal
	}

	ids := union(union(user.CreatedRooms, user.JoinedRooms), user.InvitedToRooms)
	rooms, err := s.rooms.FindByIDs(ctx, ids)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to load user rooms")
		return nil, ErrInternal
	}

	all := public
	for i := range rooms {
		room := &rooms[i]
		if seen[room.ID] || room.Visibility != models.VisibilityPrivate {
			continue
		}
		s.life.Refresh(ctx, room)
		if room.Status == models.StatusClosed {
			continue
		}
		seen[room.ID] = true
		all = append(all, *room)
	}
	sortByStart(all)
	return all, nil
}

func sortByStart(rooms []models.Room) {
	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].StartTime.Before(rooms[j].StartTime)
	})
}

func union(a, b []uint) []uint {
	seen := make(map[uint]bool, len(a)+len(b))
	out := make([]uint, 0, len(a)+len(b))
	for _, id := range a {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, id := range b {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
