package repository

import (
	"context"

	"github.com/campus-events/backend/pkg/xcontext"
	"gorm.io/gorm"
)

// GroupCount is one row of a GROUP BY count.
type GroupCount struct {
	Name  string
	Total int64
}

func countGroupBy(
	ctx context.Context, model any, column string, scope func(*gorm.DB) *gorm.DB,
) ([]GroupCount, error) {
	tx := xcontext.DB(ctx).Model(model).
		Select(column + " AS name, COUNT(*) AS total").
		Group(column)

	if scope != nil {
		tx = scope(tx)
	}

	result := []GroupCount{}
	if err := tx.Scan(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}
