package repository

import (
	"context"

	"github.com/campus-events/backend/internal/entity"
	"github.com/campus-events/backend/pkg/xcontext"
	"gorm.io/gorm"
)

// AttendanceRepository has no update or delete; records are append-only.
type AttendanceRepository interface {
	Create(ctx context.Context, data *entity.Attendance) error
	GetByEventID(ctx context.Context, eventID string) ([]entity.Attendance, error)
	CountBySource(ctx context.Context, eventID string) ([]GroupCount, error)
}

type attendanceRepository struct{}

func NewAttendanceRepository() AttendanceRepository {
	return &attendanceRepository{}
}

func (r *attendanceRepository) Create(ctx context.Context, data *entity.Attendance) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *attendanceRepository) GetByEventID(ctx context.Context, eventID string) ([]entity.Attendance, error) {
	result := []entity.Attendance{}
	err := xcontext.DB(ctx).
		Where("event_id=?", eventID).
		Order("id ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *attendanceRepository) CountBySource(ctx context.Context, eventID string) ([]GroupCount, error) {
	return countGroupBy(ctx, &entity.Attendance{}, "source", func(tx *gorm.DB) *gorm.DB {
		return tx.Where("event_id=?", eventID)
	})
}
