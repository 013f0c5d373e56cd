package service

import (
	"context"

	"connectrpc.com/connect"
	"github.com/budgetbolt/backend/internal/api"
)

// GetSettings returns the caller's settings. Defaults are served while the
// stored record is loading or being created.
func (s *BudgetService) GetSettings(ctx context.Context, req *connect.Request[api.GetSettingsRequest]) (*connect.Response[api.GetSettingsResponse], error) {
	_, sess, err := s.userSession(ctx)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.GetSettingsResponse{
		Settings: sess.Settings.Settings(),
		Loading:  sess.Settings.Loading(),
	}), nil
}

// UpdateSettings merges the set fields of the patch into the caller's settings
func (s *BudgetService) UpdateSettings(ctx context.Context, req *connect.Request[api.UpdateSettingsRequest]) (*connect.Response[api.UpdateSettingsResponse], error) {
	_, sess, err := s.userSession(ctx)
	if err != nil {
		return nil, err
	}
	updated, _, err := sess.Settings.Update(ctx, req.Msg.Patch)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.UpdateSettingsResponse{Settings: updated}), nil
}
