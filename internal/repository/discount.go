package repository

import (
	"context"

	"github.com/campus-events/backend/internal/entity"
	"github.com/campus-events/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type DiscountRepository interface {
	Create(ctx context.Context, data *entity.Discount) error
	GetByID(ctx context.Context, id string) (*entity.Discount, error)
	GetByEventID(ctx context.Context, eventID string) ([]entity.Discount, error)
	GetActiveByCode(ctx context.Context, eventID, code string) (*entity.Discount, error)
	GetByCode(ctx context.Context, eventID, code string) (*entity.Discount, error)
	UpdateActive(ctx context.Context, id string, active bool) error
	IncreaseUsage(ctx context.Context, id string) (bool, error)
}

type discountRepository struct{}

func NewDiscountRepository() DiscountRepository {
	return &discountRepository{}
}

func (r *discountRepository) Create(ctx context.Context, data *entity.Discount) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *discountRepository) GetByID(ctx context.Context, id string) (*entity.Discount, error) {
	result := entity.Discount{}
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *discountRepository) GetByEventID(ctx context.Context, eventID string) ([]entity.Discount, error) {
	result := []entity.Discount{}
	err := xcontext.DB(ctx).
		Where("event_id=?", eventID).
		Order("created_at ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// GetActiveByCode expects code to be uppercased already.
func (r *discountRepository) GetActiveByCode(
	ctx context.Context, eventID, code string,
) (*entity.Discount, error) {
	result := entity.Discount{}
	err := xcontext.DB(ctx).
		Where("event_id=? AND code=? AND active=?", eventID, code, true).
		Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *discountRepository) GetByCode(ctx context.Context, eventID, code string) (*entity.Discount, error) {
	result := entity.Discount{}
	err := xcontext.DB(ctx).Unscoped().
		Where("event_id=? AND code=?", eventID, code).
		Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *discountRepository) UpdateActive(ctx context.Context, id string, active bool) error {
	return xcontext.DB(ctx).Model(&entity.Discount{}).Where("id=?", id).Update("active", active).Error
}

// IncreaseUsage consumes one use of the code. It reports false when the code
// has no uses left.
func (r *discountRepository) IncreaseUsage(ctx context.Context, id string) (bool, error) {
	tx := xcontext.DB(ctx).Model(&entity.Discount{}).
		Where("id=? AND active=? AND (max_uses IS NULL OR used_count < max_uses)", id, true).
		Update("used_count", gorm.Expr("used_count+?", 1))
	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected == 1, nil
}
