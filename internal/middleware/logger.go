package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/campus-events/backend/pkg/router"
	"github.com/campus-events/backend/pkg/xcontext"
)

func Logger() router.CloserFunc {
	return func(ctx context.Context) {
		req := xcontext.HTTPRequest(ctx)
		info := fmt.Sprintf("%s | %s", req.Method, req.URL.Path)
		if start := xcontext.StartTime(ctx); !start.IsZero() {
			info = fmt.Sprintf("%s | %s", info, time.Since(start).Round(time.Microsecond))
		}

		switch code := router.ErrorCode(xcontext.Error(ctx)); code {
		case 0:
			xcontext.Logger(ctx).Infof("%s", info)
		case -1:
			xcontext.Logger(ctx).Errorf("%s | %d | %v", info, code, xcontext.Error(ctx))
		default:
			xcontext.Logger(ctx).Warnf("%s | %d", info, code)
		}
	}
}
