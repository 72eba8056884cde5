package repository

import (
	"context"

	"github.com/campus-events/backend/internal/entity"
	"github.com/campus-events/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type EventFilter struct {
	CreatedBy string

	// OnlyListed keeps published public events.
	OnlyListed bool
}

type EventRepository interface {
	Create(ctx context.Context, data *entity.Event) error
	GetByID(ctx context.Context, id string) (*entity.Event, error)
	GetByIDs(ctx context.Context, ids []string) ([]entity.Event, error)
	GetList(ctx context.Context, filter EventFilter, offset, limit int) ([]entity.Event, error)
	UpdateByID(ctx context.Context, id string, data map[string]any) error
	DeleteByID(ctx context.Context, id string) error
	IncreaseIssued(ctx context.Context, id string) (bool, error)
	CountByStatus(ctx context.Context) ([]GroupCount, error)
}

type eventRepository struct{}

func NewEventRepository() EventRepository {
	return &eventRepository{}
}

func (r *eventRepository) Create(ctx context.Context, data *entity.Event) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*entity.Event, error) {
	result := entity.Event{}
	if err := xcontext.DB(ctx).Preload("Creator").Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *eventRepository) GetByIDs(ctx context.Context, ids []string) ([]entity.Event, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	result := []entity.Event{}
	if err := xcontext.DB(ctx).Preload("Creator").Find(&result, "id IN (?)", ids).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *eventRepository) GetList(
	ctx context.Context, filter EventFilter, offset, limit int,
) ([]entity.Event, error) {
	result := []entity.Event{}
	tx := xcontext.DB(ctx).
		Preload("Creator").
		Offset(offset).
		Order("start_time ASC")

	if limit > 0 {
		tx = tx.Limit(limit)
	}

	if filter.CreatedBy != "" {
		tx = tx.Where("created_by=?", filter.CreatedBy)
	}

	if filter.OnlyListed {
		tx = tx.Where("status=? AND is_public=?", entity.EventPublished, true)
	}

	if err := tx.Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *eventRepository) UpdateByID(ctx context.Context, id string, data map[string]any) error {
	if len(data) == 0 {
		return nil
	}

	return xcontext.DB(ctx).Model(&entity.Event{}).Where("id=?", id).Updates(data).Error
}

func (r *eventRepository) DeleteByID(ctx context.Context, id string) error {
	return xcontext.DB(ctx).Delete(&entity.Event{}, "id=?", id).Error
}

// IncreaseIssued reserves one seat. It reports false without changing
// anything when the event has reached its capacity.
func (r *eventRepository) IncreaseIssued(ctx context.Context, id string) (bool, error) {
	tx := xcontext.DB(ctx).Model(&entity.Event{}).
		Where("id=? AND (capacity IS NULL OR issued_count < capacity)", id).
		Update("issued_count", gorm.Expr("issued_count+?", 1))
	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected == 1, nil
}

func (r *eventRepository) CountByStatus(ctx context.Context) ([]GroupCount, error) {
	return countGroupBy(ctx, &entity.Event{}, "status", nil)
}
