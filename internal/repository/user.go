package repository

import (
	"context"

	"github.com/campus-events/backend/internal/entity"
	"github.com/campus-events/backend/pkg/xcontext"
)

type UserRepository interface {
	Create(ctx context.Context, data *entity.User) error
	UpdateByID(ctx context.Context, id string, data *entity.User) error
	UpdateRole(ctx context.Context, id string, role entity.GlobalRole) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]entity.User, error)
	CountByRole(ctx context.Context) ([]GroupCount, error)
	Count(ctx context.Context) (int64, error)
}

type userRepository struct{}

func NewUserRepository() UserRepository {
	return &userRepository{}
}

func (r *userRepository) Create(ctx context.Context, data *entity.User) error {
	return xcontext.DB(ctx).Create(data).Error
}

// UpdateByID only writes the non-empty profile fields of data.
func (r *userRepository) UpdateByID(ctx context.Context, id string, data *entity.User) error {
	updateMap := map[string]any{}
	if data.Name != "" {
		updateMap["name"] = data.Name
	}

	if data.RollNumber != "" {
		updateMap["roll_number"] = data.RollNumber
	}

	if data.Phone != "" {
		updateMap["phone"] = data.Phone
	}

	if len(updateMap) == 0 {
		return nil
	}

	return xcontext.DB(ctx).Model(&entity.User{}).Where("id=?", id).Updates(updateMap).Error
}

func (r *userRepository) UpdateRole(ctx context.Context, id string, role entity.GlobalRole) error {
	return xcontext.DB(ctx).Model(&entity.User{}).Where("id=?", id).Update("role", role).Error
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var record entity.User
	if err := xcontext.DB(ctx).Where("id=?", id).Take(&record).Error; err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var record entity.User
	if err := xcontext.DB(ctx).Where("email=?", email).Take(&record).Error; err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []string) ([]entity.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var records []entity.User
	if err := xcontext.DB(ctx).Where("id IN (?)", ids).Find(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}

func (r *userRepository) CountByRole(ctx context.Context) ([]GroupCount, error) {
	return countGroupBy(ctx, &entity.User{}, "role", nil)
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := xcontext.DB(ctx).Model(&entity.User{}).Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}
