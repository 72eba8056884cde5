package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/campus-events/backend/pkg/router"
	"github.com/campus-events/backend/pkg/xcontext"
)

type AccessTokenResponse interface {
	AccessTokenInfo() string
}

// HandleSetAccessToken mirrors the access token of login responses into a
// cookie so browser clients do not need to keep it themselves.
func HandleSetAccessToken() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		tokenResp, ok := xcontext.GetResponse(ctx).(AccessTokenResponse)
		if !ok {
			return nil, nil
		}

		cfg := xcontext.Configs(ctx)
		http.SetCookie(xcontext.HTTPWriter(ctx), &http.Cookie{
			Name:     cfg.Auth.AccessToken.Name,
			Value:    tokenResp.AccessTokenInfo(),
			Path:     "/",
			Expires:  time.Now().Add(cfg.Auth.AccessToken.Expiration.Duration),
			Secure:   cfg.IsProduction(),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		return nil, nil
	}
}
