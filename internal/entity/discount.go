package entity

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

type Discount struct {
	Base

	EventID string `gorm:"uniqueIndex:idx_discount_event_code"`
	Event   Event  `gorm:"foreignKey:EventID"`
	Code    string `gorm:"uniqueIndex:idx_discount_event_code"`

	// Percentage is applied before FlatAmount.
	Percentage decimal.Decimal `gorm:"type:decimal(5,2)"`
	FlatAmount int64

	MaxUses   sql.NullInt64
	UsedCount int64
	Active    bool
}
