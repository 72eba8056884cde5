package migration

import (
	"context"

	"github.com/campus-events/backend/internal/entity"
	"github.com/campus-events/backend/pkg/xcontext"
)

// AutoMigrate creates or alters every table of the service.
func AutoMigrate(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&entity.User{},
		&entity.UpgradeRequest{},
		&entity.Event{},
		&entity.Discount{},
		&entity.Ticket{},
		&entity.Attendance{},
		&entity.WaitlistEntry{},
	)
}
