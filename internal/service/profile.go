package service

import (
	"context"

	"connectrpc.com/connect"
	"github.com/budgetbolt/backend/internal/api"
	"github.com/budgetbolt/backend/internal/auth"
)

// GetProfile returns the caller's account as the identity provider reports it
func (s *BudgetService) GetProfile(ctx context.Context, req *connect.Request[api.GetProfileRequest]) (*connect.Response[api.GetProfileResponse], error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.GetProfileResponse{Profile: auth.Profile(claims)}), nil
}

// SignOut ends the caller's session: subscriptions stop, settings reset to
// defaults and queued notices are dropped.
func (s *BudgetService) SignOut(ctx context.Context, req *connect.Request[api.SignOutRequest]) (*connect.Response[api.SignOutResponse], error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}
	log := s.userLog(claims.UID)

	if req.Msg.AllDevices && s.revoker != nil {
		if err := s.revoker.RevokeSessions(ctx, claims.UID); err != nil {
			log.Error().Err(err).Msg("failed to revoke sessions")
			return nil, toConnectError(auth.WrapStoreError("revoke sessions", err))
		}
	}

	s.sessions.End(claims.UID)
	s.feed.Forget(claims.UID)
	if s.tokens != nil {
		s.tokens.Forget(claims.UID)
	}
	log.Info().Bool("all_devices", req.Msg.AllDevices).Msg("signed out")

	return connect.NewResponse(&api.SignOutResponse{}), nil
}
