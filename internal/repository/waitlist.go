package repository

import (
	"context"

	"github.com/campus-events/backend/internal/entity"
	"github.com/campus-events/backend/pkg/xcontext"
)

type WaitlistRepository interface {
	Create(ctx context.Context, data *entity.WaitlistEntry) error
	Get(ctx context.Context, eventID, userID string) (*entity.WaitlistEntry, error)
	GetByEventID(ctx context.Context, eventID string) ([]entity.WaitlistEntry, error)
	Delete(ctx context.Context, eventID, userID string) (bool, error)
	Count(ctx context.Context, eventID string) (int64, error)
}

type waitlistRepository struct{}

func NewWaitlistRepository() WaitlistRepository {
	return &waitlistRepository{}
}

func (r *waitlistRepository) Create(ctx context.Context, data *entity.WaitlistEntry) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *waitlistRepository) Get(ctx context.Context, eventID, userID string) (*entity.WaitlistEntry, error) {
	result := entity.WaitlistEntry{}
	err := xcontext.DB(ctx).
		Where("event_id=? AND user_id=?", eventID, userID).
		Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *waitlistRepository) GetByEventID(ctx context.Context, eventID string) ([]entity.WaitlistEntry, error) {
	result := []entity.WaitlistEntry{}
	err := xcontext.DB(ctx).
		Preload("User").
		Where("event_id=?", eventID).
		Order("created_at ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Delete removes the row for good so the user can join again later.
func (r *waitlistRepository) Delete(ctx context.Context, eventID, userID string) (bool, error) {
	tx := xcontext.DB(ctx).Unscoped().
		Where("event_id=? AND user_id=?", eventID, userID).
		Delete(&entity.WaitlistEntry{})
	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected > 0, nil
}

func (r *waitlistRepository) Count(ctx context.Context, eventID string) (int64, error) {
	var count int64
	err := xcontext.DB(ctx).Model(&entity.WaitlistEntry{}).
		Where("event_id=?", eventID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}
