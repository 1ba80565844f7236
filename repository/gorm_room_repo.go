package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"roomloop-backend/models"
)

// GormRoomRepo is the MySQL-backed store. Membership mutations run inside a
// transaction holding a row lock on the room, which makes the capacity and
// dedup preconditions hold under concurrent joins.
type GormRoomRepo struct {
	db *gorm.DB
}

func NewGormRoomRepo(db *gorm.DB) *GormRoomRepo {
	if db == nil {
		panic("database connection cannot be nil for GormRoomRepo")
	}
	return &GormRoomRepo{db: db}
}

func (r *GormRoomRepo) Create(ctx context.Context, room *models.Room) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(room).Error; err != nil {
			return err
		}
		return tx.Create(&models.RoomParticipant{RoomID: room.ID, UserID: room.CreatorID}).Error
	})
	if err != nil {
		if isDuplicateEntry(err) {
			return ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: create room: %w", err)
	}
	room.Participants = []uint{room.CreatorID}
	room.InvitedUsers = nil
	return nil
}

func (r *GormRoomRepo) FindByID(ctx context.Context, id uint) (*models.Room, error) {
	var room models.Room
	if err := r.db.WithContext(ctx).First(&room, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("gorm: find room %d: %w", id, err)
	}
	if err := r.loadMembership(ctx, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *GormRoomRepo) FindByIDs(ctx context.Context, ids []uint) ([]models.Room, error) {
	var rooms []models.Room
	if len(ids) == 0 {
		return rooms, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rooms).Error; err != nil {
		return nil, fmt.Errorf("gorm: find rooms by ids: %w", err)
	}
	for i := range rooms {
		if err := r.loadMembership(ctx, &rooms[i]); err != nil {
			return nil, err
		}
	}
	return rooms, nil
}

func (r *GormRoomRepo) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Room{}).Where("code = ?", code).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("gorm: count rooms by code: %w", err)
	}
	return count > 0, nil
}

func (r *GormRoomRepo) SaveStatus(ctx context.Context, roomID uint, status models.RoomStatus) error {
	res := r.db.WithContext(ctx).Model(&models.Room{}).Where("id = ?", roomID).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("gorm: save room %d status: %w", roomID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRoomNotFound
	}
	return nil
}

func (r *GormRoomRepo) AddParticipant(ctx context.Context, roomID, userID uint, enforceCapacity bool) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var room models.Room
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&room, roomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoomNotFound
			}
			return err
		}

		var existing int64
		if err := tx.Model(&models.RoomParticipant{}).
			Where("room_id = ? AND user_id = ?", roomID, userID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrAlreadyParticipant
		}

		if enforceCapacity && room.MaxParticipants > 0 {
			var count int64
			if err := tx.Model(&models.RoomParticipant{}).
				Where("room_id = ?", roomID).
				Count(&count).Error; err != nil {
				return err
			}
			if count >= int64(room.MaxParticipants) {
				return ErrAtCapacity
			}
		}

		if err := tx.Create(&models.RoomParticipant{RoomID: roomID, UserID: userID}).Error; err != nil {
			if isDuplicateEntry(err) {
				return ErrAlreadyParticipant
			}
			return err
		}
		return tx.Where("room_id = ? AND user_id = ?", roomID, userID).
			Delete(&models.RoomInvite{}).Error
	})
	if err != nil {
		if errors.Is(err, ErrRoomNotFound) || errors.Is(err, ErrAlreadyParticipant) || errors.Is(err, ErrAtCapacity) {
			return err
		}
		return fmt.Errorf("gorm: add participant %d to room %d: %w", userID, roomID, err)
	}
	return nil
}

func (r *GormRoomRepo) AddInvites(ctx context.Context, roomID uint, userIDs []uint) error {
	if len(userIDs) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var room models.Room
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&room, roomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoomNotFound
			}
			return err
		}

		var participantIDs []uint
		if err := tx.Model(&models.RoomParticipant{}).
			Where("room_id = ? AND user_id IN ?", roomID, userIDs).
			Pluck("user_id", &participantIDs).Error; err != nil {
			return err
		}
		isParticipant := make(map[uint]bool, len(participantIDs))
		for _, id := range participantIDs {
			isParticipant[id] = true
		}

		var invites []models.RoomInvite
		for _, id := range userIDs {
			if isParticipant[id] {
				continue
			}
			invites = append(invites, models.RoomInvite{RoomID: roomID, UserID: id})
		}
		if len(invites) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&invites).Error
	})
	if err != nil {
		if errors.Is(err, ErrRoomNotFound) {
			return err
		}
		return fmt.Errorf("gorm: add invites to room %d: %w", roomID, err)
	}
	return nil
}

func (r *GormRoomRepo) ListPublicOpen(ctx context.Context) ([]models.Room, error) {
	var rooms []models.Room
	err := r.db.WithContext(ctx).
		Where("visibility = ? AND status <> ?", models.VisibilityPublic, models.StatusClosed).
		Order("start_time ASC").
		Find(&rooms).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list public open rooms: %w", err)
	}
	for i := range rooms {
		if err := r.loadMembership(ctx, &rooms[i]); err != nil {
			return nil, err
		}
	}
	return rooms, nil
}

func (r *GormRoomRepo) loadMembership(ctx context.Context, room *models.Room) error {
	if err := r.db.WithContext(ctx).Model(&models.RoomParticipant{}).
		Where("room_id = ?", room.ID).
		Order("joined_at ASC").
		Pluck("user_id", &room.Participants).Error; err != nil {
		return fmt.Errorf("gorm: load participants for room %d: %w", room.ID, err)
	}
	if err := r.db.WithContext(ctx).Model(&models.RoomInvite{}).
		Where("room_id = ?", room.ID).
		Order("created_at ASC").
		Pluck("user_id", &room.InvitedUsers).Error; err != nil {
		return fmt.Errorf("gorm: load invites for room %d: %w", room.ID, err)
	}
	return nil
}

func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
