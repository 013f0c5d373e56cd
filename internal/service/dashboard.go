package service

import (
	"context"
	"fmt"
	"time"

	"connectrpc.com/connect"
	"github.com/budgetbolt/backend/internal/api"
	"github.com/budgetbolt/backend/internal/auth"
	"github.com/budgetbolt/backend/internal/metrics"
	"github.com/budgetbolt/backend/internal/money"
	"github.com/budgetbolt/backend/internal/session"
)

const recentTransactions = 5

// greetingKey picks the localisation key of the dashboard greeting.
func greetingKey(t time.Time) string {
	switch h := t.Hour(); {
	case h < 12:
		return "dashboard.greeting.morning"
	case h < 18:
		return "dashboard.greeting.afternoon"
	default:
		return "dashboard.greeting.evening"
	}
}

// callerLocation resolves the request's time zone. Empty keeps the
// server's own zone.
func callerLocation(zone string) (*time.Location, error) {
	if zone == "" {
		return nil, nil
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("timeZone: unknown zone %q", zone))
	}
	return loc, nil
}

func (s *BudgetService) dashboard(claims *auth.UserClaims, sess *session.Session, loc *time.Location) api.Dashboard {
	now := s.now()
	if loc != nil {
		now = now.In(loc)
	}
	snap := sess.Snapshot()
	totals := metrics.ComputeTotals(snap.Transactions)
	f := money.For(snap.Settings)

	name := claims.DisplayName
	if name == "" {
		name = "User"
	}

	return api.Dashboard{
		GreetingKey: greetingKey(now),
		DisplayName: name,
		Totals:      totals,
		Formatted: api.FormattedTotals{
			Income:  f.Format(totals.Income),
			Expense: f.Format(totals.Expense),
			Balance: f.Format(totals.Balance),
		},
		Breakdown:   metrics.CategoryBreakdown(snap.Transactions, snap.Categories),
		Monthly:     metrics.MonthlySeries(snap.Transactions),
		Budgets:     metrics.MonthlyBudgets(snap.Transactions, snap.Categories, now),
		Recent:      metrics.Recent(snap.Transactions, recentTransactions),
		Goals:       goalViews(snap.Goals),
		ActiveGoals: int32(metrics.ActiveGoals(snap.Goals)),
		Settings:    snap.Settings,
		Loaded:      sess.Loaded(),
		GeneratedAt: now.UTC().Format(time.RFC3339),
	}
}

// GetDashboard computes the caller's dashboard from their live records
func (s *BudgetService) GetDashboard(ctx context.Context, req *connect.Request[api.GetDashboardRequest]) (*connect.Response[api.GetDashboardResponse], error) {
	claims, sess, err := s.userSession(ctx)
	if err != nil {
		return nil, err
	}
	loc, err := callerLocation(req.Msg.TimeZone)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.GetDashboardResponse{Dashboard: s.dashboard(claims, sess, loc)}), nil
}

// WatchDashboard sends the dashboard now and again after every change to
// the caller's records or settings. It ends with the request or the session.
func (s *BudgetService) WatchDashboard(ctx context.Context, req *connect.Request[api.WatchDashboardRequest], stream *connect.ServerStream[api.WatchDashboardResponse]) error {
	claims, sess, err := s.userSession(ctx)
	if err != nil {
		return err
	}
	loc, err := callerLocation(req.Msg.TimeZone)
	if err != nil {
		return err
	}

	changes, release := sess.Changes()
	defer release()

	send := func() error {
		return stream.Send(&api.WatchDashboardResponse{Dashboard: s.dashboard(claims, sess, loc)})
	}
	if err := send(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-sess.Done():
			return nil
		case <-changes:
			if err := send(); err != nil {
				return err
			}
		}
	}
}
