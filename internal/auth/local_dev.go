package auth

import (
	"context"
	"net/http"
)

// LocalDevUID is the identity every unauthenticated call gets in local mode.
const LocalDevUID = "local-dev-user"

// NewLocalDevInterceptor provides a mock user context for local development.
// Claims set by an earlier interceptor, such as an impersonated user, win.
func NewLocalDevInterceptor() *Interceptor {
	return &Interceptor{
		authenticate: func(ctx context.Context, _ http.Header) (context.Context, error) {
			if _, ok := GetUserClaims(ctx); ok {
				return ctx, nil
			}
			return withUserClaims(ctx, &UserClaims{
				UID:         LocalDevUID,
				Email:       "dev@localhost",
				DisplayName: "Local Dev User",
				Verified:    true,
			}), nil
		},
	}
}
