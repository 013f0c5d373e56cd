package auth

import (
	"context"
	"fmt"

	"connectrpc.com/connect"
	"github.com/budgetbolt/backend/internal/model"
)

// RequireAuth extracts user claims from context or returns an unauthenticated error
func RequireAuth(ctx context.Context) (*UserClaims, error) {
	claims, ok := GetUserClaims(ctx)
	if !ok || claims.UID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, fmt.Errorf("user not authenticated"))
	}
	return claims, nil
}

// Profile converts claims into the profile shown to the user.
func Profile(c *UserClaims) model.UserProfile {
	if c == nil {
		return model.UserProfile{}
	}
	return model.UserProfile{
		UID:         c.UID,
		DisplayName: c.DisplayName,
		Email:       c.Email,
		PhotoURL:    c.Picture,
	}
}

// NormalizePageSize returns a valid page size (default 100, max 1000)
func NormalizePageSize(pageSize int32) int32 {
	if pageSize <= 0 {
		return 100
	}
	if pageSize > 1000 {
		return 1000
	}
	return pageSize
}

// WrapStoreError wraps a store error with the operation that failed
func WrapStoreError(operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("failed to %s: %w", operation, err)
}
