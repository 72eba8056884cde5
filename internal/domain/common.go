package domain

import (
	"context"
	"strings"
	"time"

	"github.com/campus-events/backend/internal/common"
	"github.com/campus-events/backend/internal/entity"
	"github.com/campus-events/backend/pkg/errorx"
	"github.com/campus-events/backend/pkg/xcontext"
	"github.com/campus-events/backend/pkg/xredis"
	"github.com/shopspring/decimal"

	mathutil "github.com/pkg/math"
)

var hundred = decimal.NewFromInt(100)

// checkLimit applies the default limit and rejects limits beyond the
// configured maximum.
func checkLimit(ctx context.Context, offset, limit int) (int, error) {
	apiCfg := xcontext.Configs(ctx).ApiServer
	if limit == 0 {
		limit = apiCfg.DefaultLimit
	}

	if limit < 0 || offset < 0 {
		return 0, errorx.New(errorx.BadRequest, "Offset and limit must be positive")
	}

	if limit > apiCfg.MaxLimit {
		return 0, errorx.New(errorx.BadRequest, "Exceed the maximum of limit (%d)", apiCfg.MaxLimit)
	}

	return limit, nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func parseTime(field, value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, errorx.New(errorx.BadRequest, "Invalid %s, expected RFC3339", field)
	}

	return t, nil
}

// resolveBasePrice picks the tier price of the event, then the configured
// fallback of the tier, then the flat price of the event.
func resolveBasePrice(ctx context.Context, event *entity.Event, groupType entity.GroupType) int64 {
	if price, ok := event.TierPrice(groupType); ok && price > 0 {
		return price
	}

	if price := xcontext.Configs(ctx).Ticket.FallbackPrices[string(groupType)]; price > 0 {
		return price
	}

	return event.Price
}

// applyDiscount takes the floored percentage off price first, then the flat
// amount. The result is never negative.
func applyDiscount(price int64, discount *entity.Discount) int64 {
	if discount == nil {
		return price
	}

	amount := decimal.NewFromInt(price)
	if discount.Percentage.IsPositive() {
		cut := amount.Mul(discount.Percentage).Div(hundred).Floor()
		amount = amount.Sub(cut)
	}

	amount = amount.Sub(decimal.NewFromInt(discount.FlatAmount))
	return mathutil.MaxInt64(amount.IntPart(), 0)
}

// discountExhausted reports whether the code has no uses left.
func discountExhausted(discount *entity.Discount) bool {
	return discount.MaxUses.Valid && discount.UsedCount >= discount.MaxUses.Int64
}

// invalidateStatistic drops cached aggregates touched by a write. Failures are
// only logged.
func invalidateStatistic(ctx context.Context, redisClient xredis.Client, eventID string) {
	if redisClient == nil {
		return
	}

	err := redisClient.Del(ctx, common.RedisKeyEventStatistic(eventID), common.RedisKeyPlatformStatistic)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot invalidate statistic cache of event %s: %v", eventID, err)
	}
}
