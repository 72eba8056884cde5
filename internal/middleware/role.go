package middleware

import (
	"context"

	"github.com/campus-events/backend/internal/common"
	"github.com/campus-events/backend/internal/repository"
	"github.com/campus-events/backend/pkg/errorx"
	"github.com/campus-events/backend/pkg/router"
	"github.com/campus-events/backend/pkg/xcontext"
)

// RoleGuard rejects requests whose user role is not listed for the path in
// common.RBAC.
type RoleGuard struct {
	globalRoleVerifier *common.GlobalRoleVerifier
}

func NewRoleGuard(userRepo repository.UserRepository) *RoleGuard {
	return &RoleGuard{
		globalRoleVerifier: common.NewGlobalRoleVerifier(userRepo),
	}
}

func (g *RoleGuard) Middleware() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		path := xcontext.HTTPRequest(ctx).URL.Path
		roles, ok := common.RBAC[path]
		if !ok {
			return nil, nil
		}

		if err := g.globalRoleVerifier.Verify(ctx, roles...); err != nil {
			xcontext.Logger(ctx).Debugf("Role guard rejected %s: %v", path, err)
			return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
		}

		return nil, nil
	}
}
