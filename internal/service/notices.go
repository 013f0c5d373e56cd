package service

import (
	"context"
	"fmt"

	"connectrpc.com/connect"
	"github.com/budgetbolt/backend/internal/api"
	"github.com/budgetbolt/backend/internal/auth"
	"github.com/budgetbolt/backend/internal/notify"
)

// ListNotices returns the caller's queued notices, such as failed writes
func (s *BudgetService) ListNotices(ctx context.Context, req *connect.Request[api.ListNoticesRequest]) (*connect.Response[api.ListNoticesResponse], error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	var notices []notify.Notice
	if req.Msg.Peek {
		notices = s.feed.Pending(claims.UID)
	} else {
		notices = s.feed.Drain(claims.UID)
	}
	if notices == nil {
		notices = []notify.Notice{}
	}
	return connect.NewResponse(&api.ListNoticesResponse{Notices: notices}), nil
}

// RegisterPushToken registers a device for push notices
func (s *BudgetService) RegisterPushToken(ctx context.Context, req *connect.Request[api.RegisterPushTokenRequest]) (*connect.Response[api.RegisterPushTokenResponse], error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.Token == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("token is required"))
	}
	if s.push == nil {
		return nil, connect.NewError(connect.CodeUnimplemented, fmt.Errorf("push notifications are disabled"))
	}

	if err := s.push.RegisterToken(ctx, claims.UID, req.Msg.Token); err != nil {
		return nil, toConnectError(auth.WrapStoreError("register push token", err))
	}
	return connect.NewResponse(&api.RegisterPushTokenResponse{}), nil
}

// UnregisterPushToken removes a device registration
func (s *BudgetService) UnregisterPushToken(ctx context.Context, req *connect.Request[api.UnregisterPushTokenRequest]) (*connect.Response[api.UnregisterPushTokenResponse], error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.Token == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("token is required"))
	}
	if s.push == nil {
		return nil, connect.NewError(connect.CodeUnimplemented, fmt.Errorf("push notifications are disabled"))
	}

	if err := s.push.UnregisterToken(ctx, claims.UID, req.Msg.Token); err != nil {
		return nil, toConnectError(auth.WrapStoreError("unregister push token", err))
	}
	return connect.NewResponse(&api.UnregisterPushTokenResponse{}), nil
}
