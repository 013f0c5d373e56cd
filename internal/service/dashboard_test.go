package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	_ "time/tzdata"

	"connectrpc.com/connect"
	"github.com/budgetbolt/backend/internal/api"
	"github.com/budgetbolt/backend/internal/auth"
	"github.com/budgetbolt/backend/internal/model"
	"github.com/budgetbolt/backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGreetingKey(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "dashboard.greeting.morning", greetingKey(day.Add(6*time.Hour)))
	assert.Equal(t, "dashboard.greeting.morning", greetingKey(day.Add(11*time.Hour+59*time.Minute)))
	assert.Equal(t, "dashboard.greeting.afternoon", greetingKey(day.Add(12*time.Hour)))
	assert.Equal(t, "dashboard.greeting.evening", greetingKey(day.Add(18*time.Hour)))
}

func TestGetDashboard(t *testing.T) {
	st := store.NewMemoryStore()
	seedCategory(t, st, "user-123", "salary", "Salary", model.Income)
	seedCategory(t, st, "user-123", "food", "Groceries", model.Expense)
	require.NoError(t, st.Set(context.Background(), store.SettingsPath("user-123"), map[string]any{"currency": "USD", "language": "en-US"}))
	env := newTestEnv(t, st)
	env.svc.now = func() time.Time { return time.Date(2026, 3, 15, 14, 0, 0, 0, time.UTC) }
	ctx := testContextWithProfile("user-123", "Thandi")

	createTx(t, env.svc, ctx, model.TransactionInput{Amount: 100, Type: model.Income, CategoryID: "salary", Date: "2026-03-01"})
	createTx(t, env.svc, ctx, model.TransactionInput{Amount: 40, Type: model.Expense, CategoryID: "food", Date: "2026-03-05"})
	_, err := env.svc.CreateGoal(ctx, connect.NewRequest(&api.CreateGoalRequest{Goal: model.GoalInput{Title: "Bike", TargetAmount: 200, CurrentAmount: 50, Deadline: "2026-09-01"}}))
	require.NoError(t, err)

	resp, err := env.svc.GetDashboard(ctx, connect.NewRequest(&api.GetDashboardRequest{}))
	require.NoError(t, err)
	d := resp.Msg.Dashboard

	assert.Equal(t, "dashboard.greeting.afternoon", d.GreetingKey)
	assert.Equal(t, "Thandi", d.DisplayName)
	assert.Equal(t, 100.0, d.Totals.Income)
	assert.Equal(t, 40.0, d.Totals.Expense)
	assert.Equal(t, 60.0, d.Totals.Balance)
	assert.Contains(t, d.Formatted.Balance, "60.00")

	require.Len(t, d.Breakdown, 1)
	assert.Equal(t, "Groceries", d.Breakdown[0].Category)
	assert.Equal(t, "#22c55e", d.Breakdown[0].Color)

	require.Len(t, d.Monthly, 1)
	assert.Equal(t, "Mar 2026", d.Monthly[0].Period)

	require.Len(t, d.Recent, 2)
	assert.Equal(t, "2026-03-05", d.Recent[0].Date)

	assert.Equal(t, int32(1), d.ActiveGoals)
	require.Len(t, d.Goals, 1)
	assert.InDelta(t, 25.0, d.Goals[0].Progress, 1e-9)
	assert.Equal(t, model.USD, d.Settings.Currency)
	assert.True(t, d.Loaded)
}

func TestGetDashboardUsesCallerZone(t *testing.T) {
	env := newTestEnv(t, store.NewMemoryStore())
	env.svc.now = func() time.Time { return time.Date(2026, 3, 15, 14, 0, 0, 0, time.UTC) }
	ctx := testContextWithUser("user-123")

	tests := []struct {
		zone string
		want string
	}{
		{zone: "", want: "dashboard.greeting.afternoon"},
		{zone: "UTC", want: "dashboard.greeting.afternoon"},
		{zone: "Asia/Tokyo", want: "dashboard.greeting.evening"},
		{zone: "America/Los_Angeles", want: "dashboard.greeting.morning"},
	}
	for _, tt := range tests {
		resp, err := env.svc.GetDashboard(ctx, connect.NewRequest(&api.GetDashboardRequest{TimeZone: tt.zone}))
		require.NoError(t, err, tt.zone)
		assert.Equal(t, tt.want, resp.Msg.Dashboard.GreetingKey, tt.zone)
		assert.Equal(t, "2026-03-15T14:00:00Z", resp.Msg.Dashboard.GeneratedAt, tt.zone)
	}

	_, err := env.svc.GetDashboard(ctx, connect.NewRequest(&api.GetDashboardRequest{TimeZone: "Mars/Olympus_Mons"}))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
}

func TestGetDashboardEmpty(t *testing.T) {
	env := newTestEnv(t, store.NewMemoryStore())

	resp, err := env.svc.GetDashboard(testContextWithUser("user-123"), connect.NewRequest(&api.GetDashboardRequest{}))
	require.NoError(t, err)
	d := resp.Msg.Dashboard
	assert.Equal(t, "User", d.DisplayName)
	assert.Zero(t, d.Totals.Balance)
	assert.Empty(t, d.Breakdown)
	assert.Empty(t, d.Recent)
	assert.Zero(t, d.ActiveGoals)
	assert.Equal(t, model.DefaultSettings(), d.Settings)
}

func TestWatchDashboardStreamsChanges(t *testing.T) {
	env := newTestEnv(t, store.NewMemoryStore())

	path, handler := api.NewBudgetServiceHandler(env.svc, connect.WithInterceptors(auth.NewLocalDevInterceptor()))
	mux := http.NewServeMux()
	mux.Handle(path, handler)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := api.NewBudgetServiceClient(srv.Client(), srv.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := client.WatchDashboard(ctx, connect.NewRequest(&api.WatchDashboardRequest{}))
	require.NoError(t, err)
	defer stream.Close()

	require.True(t, stream.Receive(), "first frame: %v", stream.Err())
	assert.Zero(t, stream.Msg().Dashboard.Totals.Income)

	_, err = client.CreateTransaction(ctx, connect.NewRequest(&api.CreateTransactionRequest{
		Transaction: model.TransactionInput{Amount: 250, Type: model.Income, CategoryID: "salary", Date: "2026-03-01"},
	}))
	require.NoError(t, err)

	for stream.Receive() {
		if stream.Msg().Dashboard.Totals.Income == 250 {
			return
		}
	}
	t.Fatalf("no frame with the new transaction: %v", stream.Err())
}
