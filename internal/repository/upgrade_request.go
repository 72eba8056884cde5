package repository

import (
	"context"
	"errors"
	"time"

	"github.com/campus-events/backend/internal/entity"
	"github.com/campus-events/backend/pkg/xcontext"
)

var ErrNotPending = errors.New("request is not pending")

type UpgradeRequestRepository interface {
	Create(ctx context.Context, data *entity.UpgradeRequest) error
	GetByID(ctx context.Context, id string) (*entity.UpgradeRequest, error)
	GetPendingByUserID(ctx context.Context, userID string) (*entity.UpgradeRequest, error)
	GetList(ctx context.Context, status entity.UpgradeRequestStatus, offset, limit int) ([]entity.UpgradeRequest, error)
	Review(ctx context.Context, id, reviewerID string, status entity.UpgradeRequestStatus, at time.Time) error
}

type upgradeRequestRepository struct{}

func NewUpgradeRequestRepository() UpgradeRequestRepository {
	return &upgradeRequestRepository{}
}

func (r *upgradeRequestRepository) Create(ctx context.Context, data *entity.UpgradeRequest) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *upgradeRequestRepository) GetByID(ctx context.Context, id string) (*entity.UpgradeRequest, error) {
	result := entity.UpgradeRequest{}
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *upgradeRequestRepository) GetPendingByUserID(
	ctx context.Context, userID string,
) (*entity.UpgradeRequest, error) {
	result := entity.UpgradeRequest{}
	err := xcontext.DB(ctx).
		Where("user_id=? AND status=?", userID, entity.UpgradePending).
		Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *upgradeRequestRepository) GetList(
	ctx context.Context, status entity.UpgradeRequestStatus, offset, limit int,
) ([]entity.UpgradeRequest, error) {
	result := []entity.UpgradeRequest{}
	tx := xcontext.DB(ctx).
		Preload("User").
		Offset(offset).
		Limit(limit).
		Order("created_at ASC")

	if status != "" {
		tx = tx.Where("status=?", status)
	}

	if err := tx.Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

// Review moves a pending request to status. It returns ErrNotPending when the
// request was already reviewed.
func (r *upgradeRequestRepository) Review(
	ctx context.Context, id, reviewerID string, status entity.UpgradeRequestStatus, at time.Time,
) error {
	tx := xcontext.DB(ctx).Model(&entity.UpgradeRequest{}).
		Where("id=? AND status=?", id, entity.UpgradePending).
		Updates(map[string]any{
			"status":      status,
			"reviewer_id": reviewerID,
			"reviewed_at": at,
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return ErrNotPending
	}

	return nil
}
