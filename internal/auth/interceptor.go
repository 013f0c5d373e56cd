package auth

import (
	"context"
	"net/http"
	"slices"

	"connectrpc.com/connect"
)

// authenticator resolves the caller from request headers.
type authenticator func(ctx context.Context, header http.Header) (context.Context, error)

// Interceptor authenticates unary and streaming handler calls alike.
type Interceptor struct {
	authenticate authenticator
}

var _ connect.Interceptor = (*Interceptor)(nil)

func (i *Interceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		if req.Spec().IsClient || isPublicEndpoint(req.Spec().Procedure) {
			return next(ctx, req)
		}
		ctx, err := i.authenticate(ctx, req.Header())
		if err != nil {
			return nil, err
		}
		return next(ctx, req)
	}
}

func (i *Interceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next
}

func (i *Interceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return func(ctx context.Context, conn connect.StreamingHandlerConn) error {
		if isPublicEndpoint(conn.Spec().Procedure) {
			return next(ctx, conn)
		}
		ctx, err := i.authenticate(ctx, conn.RequestHeader())
		if err != nil {
			return err
		}
		return next(ctx, conn)
	}
}

// NewAuthInterceptor requires a valid Bearer ID token on every call.
// Calls that already carry claims from an earlier interceptor pass through.
func NewAuthInterceptor(v Verifier) *Interceptor {
	return &Interceptor{
		authenticate: func(ctx context.Context, header http.Header) (context.Context, error) {
			if _, ok := GetUserClaims(ctx); ok {
				return ctx, nil
			}

			token, err := ExtractTokenFromHeader(header.Get("Authorization"))
			if err != nil {
				return ctx, connect.NewError(connect.CodeUnauthenticated, err)
			}

			claims, err := v.VerifyToken(ctx, token)
			if err != nil {
				return ctx, connect.NewError(connect.CodeUnauthenticated, err)
			}
			return withUserClaims(ctx, claims), nil
		},
	}
}

// NewDebugInterceptor allows impersonation via the X-Debug-Impersonate-User
// header. It does nothing unless skipAuth is set.
// ONLY use this in development - never in production!
func NewDebugInterceptor(skipAuth bool) *Interceptor {
	return &Interceptor{
		authenticate: func(ctx context.Context, header http.Header) (context.Context, error) {
			if !skipAuth {
				return ctx, nil
			}
			impersonate := header.Get("X-Debug-Impersonate-User")
			if impersonate == "" {
				return ctx, nil
			}
			return withUserClaims(ctx, &UserClaims{
				UID:         impersonate,
				Email:       impersonate + "@debug.local",
				DisplayName: header.Get("X-Debug-User-Name"),
			}), nil
		},
	}
}

var publicEndpoints = []string{
	"/health",
	"/ping",
}

// isPublicEndpoint checks if an endpoint should be accessible without authentication
func isPublicEndpoint(procedure string) bool {
	return slices.Contains(publicEndpoints, procedure)
}

type contextKey string

const userClaimsKey contextKey = "user_claims"

func withUserClaims(ctx context.Context, claims *UserClaims) context.Context {
	return context.WithValue(ctx, userClaimsKey, claims)
}

// WithUserClaims is the exported version for testing purposes
func WithUserClaims(ctx context.Context, claims *UserClaims) context.Context {
	return withUserClaims(ctx, claims)
}

// GetUserClaims extracts user claims from context
func GetUserClaims(ctx context.Context) (*UserClaims, bool) {
	claims, ok := ctx.Value(userClaimsKey).(*UserClaims)
	return claims, ok && claims != nil
}

// GetUserID is a convenience function to get the user ID from context
func GetUserID(ctx context.Context) (string, bool) {
	if claims, ok := GetUserClaims(ctx); ok {
		return claims.UID, true
	}
	return "", false
}
