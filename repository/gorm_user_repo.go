package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"roomloop-backend/models"
)

type GormUserRepo struct {
	db *gorm.DB
}

func NewGormUserRepo(db *gorm.DB) *GormUserRepo {
	if db == nil {
		panic("database connection cannot be nil for GormUserRepo")
	}
	return &GormUserRepo{db: db}
}

func (r *GormUserRepo) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isDuplicateEntry(err) {
			return ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: create user: %w", err)
	}
	return nil
}

func (r *GormUserRepo) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("gorm: find user %d: %w", id, err)
	}
	if err := r.loadRelations(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, "username = ?", username)
}

func (r *GormUserRepo) FindByLogin(ctx context.Context, login string) (*models.User, error) {
	return r.findOne(ctx, "username = ? OR email = ?", login, login)
}

func (r *GormUserRepo) FindByUsernames(ctx context.Context, usernames []string) ([]models.User, error) {
	var users []models.User
	if len(usernames) == 0 {
		return users, nil
	}
	err := r.db.WithContext(ctx).Where("username IN ?", usernames).Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: find users by usernames: %w", err)
	}
	return users, nil
}

func (r *GormUserRepo) AddRoomRelation(ctx context.Context, userID, roomID uint, relation string) error {
	row := models.UserRoom{UserID: userID, RoomID: roomID, Relation: relation}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("gorm: add %s relation user %d room %d: %w", relation, userID, roomID, err)
	}
	return nil
}

func (r *GormUserRepo) MarkJoined(ctx context.Context, userID, roomID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := models.UserRoom{UserID: userID, RoomID: roomID, Relation: models.RelationJoined}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ? AND room_id = ? AND relation = ?", userID, roomID, models.RelationInvited).
			Delete(&models.UserRoom{}).Error
	})
	if err != nil {
		return fmt.Errorf("gorm: mark joined user %d room %d: %w", userID, roomID, err)
	}
	return nil
}

func (r *GormUserRepo) findOne(ctx context.Context, query string, args ...any) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where(query, args...).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("gorm: find user: %w", err)
	}
	if err := r.loadRelations(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormUserRepo) loadRelations(ctx context.Context, user *models.User) error {
	var rows []models.UserRoom
	err := r.db.WithContext(ctx).
		Where("user_id = ?", user.ID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return fmt.Errorf("gorm: load room relations for user %d: %w", user.ID, err)
	}
	for _, row := range rows {
		switch row.Relation {
		case models.RelationCreated:
			user.CreatedRooms = append(user.CreatedRooms, row.RoomID)
		case models.RelationJoined:
			user.JoinedRooms = append(user.JoinedRooms, row.RoomID)
		case models.RelationInvited:
			user.InvitedToRooms = append(user.InvitedToRooms, row.RoomID)
		}
	}
	return nil
}
