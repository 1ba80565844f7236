package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"roomloop-backend/models"
)

type GormMessageRepo struct {
	db *gorm.DB
}

func NewGormMessageRepo(db *gorm.DB) *GormMessageRepo {
	if db == nil {
		panic("database connection cannot be nil for GormMessageRepo")
	}
	return &GormMessageRepo{db: db}
}

func (r *GormMessageRepo) Save(ctx context.Context, msg *models.Message) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("gorm: save message: %w", err)
	}
	return nil
}

func (r *GormMessageRepo) ListByRoom(ctx context.Context, roomID uint, limit int) ([]models.Message, error) {
	// Newest window first, then reversed to chronological order.
	var msgs []models.Message
	q := r.db.WithContext(ctx).Where("room_id = ?", roomID).Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("gorm: list messages for room %d: %w", roomID, err)
	}
	reverseMessages(msgs)
	return msgs, nil
}

type GormReactionRepo struct {
	db *gorm.DB
}

func NewGormReactionRepo(db *gorm.DB) *GormReactionRepo {
	if db == nil {
		panic("database connection cannot be nil for GormReactionRepo")
	}
	return &GormReactionRepo{db: db}
}

func (r *GormReactionRepo) Save(ctx context.Context, reaction *models.Reaction) error {
	if err := r.db.WithContext(ctx).Create(reaction).Error; err != nil {
		return fmt.Errorf("gorm: save reaction: %w", err)
	}
	return nil
}

func (r *GormReactionRepo) ListRecentByRoom(ctx context.Context, roomID uint, limit int) ([]models.Reaction, error) {
	var reactions []models.Reaction
	q := r.db.WithContext(ctx).Where("room_id = ?", roomID).Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&reactions).Error; err != nil {
		return nil, fmt.Errorf("gorm: list reactions for room %d: %w", roomID, err)
	}
	reverseReactions(reactions)
	return reactions, nil
}

func reverseMessages(msgs []models.Message) {
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
}

func reverseReactions(reactions []models.Reaction) {
	for i, j := 0, len(reactions)-1; i < j; i, j = i+1, j-1 {
		reactions[i], reactions[j] = reactions[j], reactions[i]
	}
}
