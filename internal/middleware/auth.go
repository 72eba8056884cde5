package middleware

import (
	"context"
	"strings"

	"github.com/campus-events/backend/internal/model"
	"github.com/campus-events/backend/pkg/errorx"
	"github.com/campus-events/backend/pkg/router"
	"github.com/campus-events/backend/pkg/xcontext"
)

type AuthVerifier struct {
	withAccessToken bool
	optional        bool
}

func NewAuthVerifier() *AuthVerifier {
	return &AuthVerifier{}
}

func (a *AuthVerifier) WithAccessToken() *AuthVerifier {
	a.withAccessToken = true
	return a
}

// Optional lets anonymous requests through. A valid token still sets the
// request user.
func (a *AuthVerifier) Optional() *AuthVerifier {
	a.optional = true
	return a
}

func (a *AuthVerifier) Middleware() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		if a.withAccessToken {
			if token := accessToken(ctx); token != "" {
				var info model.AccessToken
				if err := xcontext.TokenEngine(ctx).Verify(token, &info); err == nil && info.ID != "" {
					return xcontext.WithRequestUserID(ctx, info.ID), nil
				}

				if !a.optional {
					return nil, errorx.New(errorx.Unauthenticated, "Invalid or expired access token")
				}
			}
		}

		if a.optional {
			return nil, nil
		}

		return nil, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
	}
}

// accessToken reads a bearer token, falling back to the access token cookie.
func accessToken(ctx context.Context) string {
	req := xcontext.HTTPRequest(ctx)

	authorization := req.Header.Get("Authorization")
	if auth, token, found := strings.Cut(authorization, " "); found {
		if strings.EqualFold(auth, "Bearer") {
			return token
		}
		return ""
	}

	cookie, err := req.Cookie(xcontext.Configs(ctx).Auth.AccessToken.Name)
	if err != nil || cookie == nil {
		return ""
	}

	return cookie.Value
}
