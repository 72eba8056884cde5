package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/campus-events/backend/internal/common"
	"github.com/campus-events/backend/pkg/router"
	"github.com/campus-events/backend/pkg/xcontext"
)

func WithStartTime() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		return xcontext.WithStartTime(ctx, time.Now()), nil
	}
}

func Prometheus() router.CloserFunc {
	return func(ctx context.Context) {
		req := xcontext.HTTPRequest(ctx)
		code := fmt.Sprint(router.ErrorCode(xcontext.Error(ctx)))

		common.PromCounters[common.HTTPRequestTotal].WithLabelValues(req.Method, code).Inc()

		if start := xcontext.StartTime(ctx); !start.IsZero() {
			common.PromHistograms[common.HTTPRequestDurationSeconds].
				WithLabelValues(req.Method, code).
				Observe(time.Since(start).Seconds())
		}
	}
}
