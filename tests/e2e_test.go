package tests

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/budgetbolt/backend/internal/api"
	"github.com/budgetbolt/backend/internal/auth"
	"github.com/budgetbolt/backend/internal/dispatch"
	"github.com/budgetbolt/backend/internal/model"
	"github.com/budgetbolt/backend/internal/notify"
	"github.com/budgetbolt/backend/internal/service"
	"github.com/budgetbolt/backend/internal/session"
	"github.com/budgetbolt/backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type testServer struct {
	url string
}

func newTestServer(t *testing.T, st store.Store, interceptors ...connect.Interceptor) *testServer {
	t.Helper()
	feed := notify.NewFeed(notify.DefaultFeedSize)
	writes := dispatch.New(st, feed, dispatch.WithTimeout(2*time.Second))
	sessions := session.NewManager(st, writes, session.WithSnapshotWait(time.Second))

	path, handler := api.NewBudgetServiceHandler(
		service.NewBudgetService(sessions, writes, feed),
		connect.WithInterceptors(interceptors...),
	)
	mux := http.NewServeMux()
	mux.Handle(path, handler)
	server := httptest.NewServer(mux)

	t.Cleanup(func() {
		server.Close()
		sessions.Close()
	})
	return &testServer{url: server.URL}
}

func impersonate(uid string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			req.Header().Set("X-Debug-Impersonate-User", uid)
			req.Header().Set("X-Debug-User-Name", "Demo "+uid)
			return next(ctx, req)
		}
	}
}

func bearer(token string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			req.Header().Set("Authorization", "Bearer "+token)
			return next(ctx, req)
		}
	}
}

func TestE2EBudgetFlow(t *testing.T) {
	srv := newTestServer(t, store.NewMemoryStore(), auth.NewLocalDevInterceptor())
	client := api.NewBudgetServiceClient(http.DefaultClient, srv.url)
	ctx := context.Background()

	t.Run("health check", func(t *testing.T) {
		resp, err := http.Get(srv.url + "/")
		require.NoError(t, err)
		defer resp.Body.Close()
		// only service procedures are registered
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	var groceries, salary string
	t.Run("create categories", func(t *testing.T) {
		limit := 500.0
		resp, err := client.CreateCategory(ctx, connect.NewRequest(&api.CreateCategoryRequest{Category: model.CategoryInput{
			Name: "Groceries", Type: model.Expense, Color: "#f97316", Icon: "Utensils", MonthlyBudget: &limit,
		}}))
		require.NoError(t, err)
		groceries = resp.Msg.Category.ID

		resp, err = client.CreateCategory(ctx, connect.NewRequest(&api.CreateCategoryRequest{Category: model.CategoryInput{
			Name: "Salary", Type: model.Income, Color: "#16a34a", Icon: "Rocket",
		}}))
		require.NoError(t, err)
		salary = resp.Msg.Category.ID
		assert.Equal(t, model.IconFallback, resp.Msg.Category.Icon)

		list, err := client.ListCategories(ctx, connect.NewRequest(&api.ListCategoriesRequest{}))
		require.NoError(t, err)
		assert.Len(t, list.Msg.Categories, 2)
		assert.Len(t, list.Msg.Income, 1)
		assert.Len(t, list.Msg.Expense, 1)
	})

	t.Run("record transactions", func(t *testing.T) {
		for _, in := range []model.TransactionInput{
			{Amount: 2000, Type: model.Income, CategoryID: salary, Date: "2026-04-01", Notes: "April salary"},
			{Amount: 320.5, Type: model.Expense, CategoryID: groceries, Date: "2026-04-03", Notes: "Weekly shop"},
			{Amount: 110, Type: model.Expense, CategoryID: groceries, Date: "2026-04-10", Notes: "Market"},
		} {
			resp, err := client.CreateTransaction(ctx, connect.NewRequest(&api.CreateTransactionRequest{Transaction: in}))
			require.NoError(t, err)
			assert.NotEmpty(t, resp.Msg.Transaction.ID)
		}

		_, err := client.CreateTransaction(ctx, connect.NewRequest(&api.CreateTransactionRequest{
			Transaction: model.TransactionInput{Amount: -5, Type: model.Expense, CategoryID: groceries, Date: "2026-04-10"},
		}))
		assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

		list, err := client.ListTransactions(ctx, connect.NewRequest(&api.ListTransactionsRequest{Type: model.FilterExpense}))
		require.NoError(t, err)
		require.Len(t, list.Msg.Transactions, 2)
		assert.Equal(t, "2026-04-10", list.Msg.Transactions[0].Date)
		assert.Equal(t, "Groceries", list.Msg.Transactions[0].Category)
	})

	t.Run("search and export", func(t *testing.T) {
		found, err := client.SearchTransactions(ctx, connect.NewRequest(&api.SearchTransactionsRequest{Query: "shop"}))
		require.NoError(t, err)
		require.Len(t, found.Msg.Results, 1)
		assert.Equal(t, 320.5, found.Msg.Results[0].Amount)

		exported, err := client.ExportTransactions(ctx, connect.NewRequest(&api.ExportTransactionsRequest{}))
		require.NoError(t, err)
		assert.Equal(t, int32(3), exported.Msg.Rows)
		assert.True(t, strings.HasSuffix(exported.Msg.Filename, ".csv"))
		assert.Contains(t, string(exported.Msg.Data), "Weekly shop")
	})

	t.Run("goals", func(t *testing.T) {
		created, err := client.CreateGoal(ctx, connect.NewRequest(&api.CreateGoalRequest{Goal: model.GoalInput{
			Title: "Emergency fund", TargetAmount: 1000, CurrentAmount: 100, Deadline: "2026-12-31",
		}}))
		require.NoError(t, err)

		resp, err := client.ContributeToGoal(ctx, connect.NewRequest(&api.ContributeToGoalRequest{
			ID: created.Msg.Goal.ID, Kind: model.Deposit, Amount: 150,
		}))
		require.NoError(t, err)
		assert.InDelta(t, 25.0, resp.Msg.Goal.Progress, 1e-9)

		_, err = client.ContributeToGoal(ctx, connect.NewRequest(&api.ContributeToGoalRequest{
			ID: created.Msg.Goal.ID, Kind: model.Withdraw, Amount: 1000,
		}))
		assert.Equal(t, connect.CodeFailedPrecondition, connect.CodeOf(err))
	})

	t.Run("settings and dashboard", func(t *testing.T) {
		usd := model.USD
		_, err := client.UpdateSettings(ctx, connect.NewRequest(&api.UpdateSettingsRequest{Patch: model.SettingsPatch{Currency: &usd}}))
		require.NoError(t, err)

		resp, err := client.GetDashboard(ctx, connect.NewRequest(&api.GetDashboardRequest{}))
		require.NoError(t, err)
		d := resp.Msg.Dashboard
		assert.Equal(t, 2000.0, d.Totals.Income)
		assert.Equal(t, 430.5, d.Totals.Expense)
		assert.Contains(t, d.Formatted.Balance, "1,569.50")
		assert.Equal(t, int32(1), d.ActiveGoals)
		require.Len(t, d.Budgets, 1)
		assert.Equal(t, "Groceries", d.Budgets[0].Category)
		assert.Equal(t, model.USD, d.Settings.Currency)
	})

	t.Run("suggestions are unavailable without a model", func(t *testing.T) {
		_, err := client.SuggestBudgetGoals(ctx, connect.NewRequest(&api.SuggestBudgetGoalsRequest{}))
		assert.Equal(t, connect.CodeUnavailable, connect.CodeOf(err))
	})
}

func TestE2EUsersAreIsolated(t *testing.T) {
	srv := newTestServer(t, store.NewMemoryStore(), auth.NewDebugInterceptor(true), auth.NewLocalDevInterceptor())
	ctx := context.Background()

	alice := api.NewBudgetServiceClient(http.DefaultClient, srv.url, connect.WithInterceptors(impersonate("alice")))
	bob := api.NewBudgetServiceClient(http.DefaultClient, srv.url, connect.WithInterceptors(impersonate("bob")))

	_, err := alice.CreateTransaction(ctx, connect.NewRequest(&api.CreateTransactionRequest{
		Transaction: model.TransactionInput{Amount: 75, Type: model.Expense, CategoryID: "misc", Date: "2026-04-02"},
	}))
	require.NoError(t, err)

	mine, err := alice.ListTransactions(ctx, connect.NewRequest(&api.ListTransactionsRequest{}))
	require.NoError(t, err)
	assert.Len(t, mine.Msg.Transactions, 1)

	theirs, err := bob.ListTransactions(ctx, connect.NewRequest(&api.ListTransactionsRequest{}))
	require.NoError(t, err)
	assert.Empty(t, theirs.Msg.Transactions)

	profile, err := bob.GetProfile(ctx, connect.NewRequest(&api.GetProfileRequest{}))
	require.NoError(t, err)
	assert.Equal(t, "bob", profile.Msg.Profile.UID)
	assert.Equal(t, "Demo bob", profile.Msg.Profile.DisplayName)
}

type stubVerifier struct{}

func (stubVerifier) VerifyToken(ctx context.Context, token string) (*auth.UserClaims, error) {
	if token != "valid-token" {
		return nil, errors.New("token expired")
	}
	return &auth.UserClaims{UID: "token-user", Email: "token-user@example.com"}, nil
}

func TestE2ERequiresToken(t *testing.T) {
	srv := newTestServer(t, store.NewMemoryStore(), auth.NewAuthInterceptor(stubVerifier{}))
	ctx := context.Background()

	anonymous := api.NewBudgetServiceClient(http.DefaultClient, srv.url)
	_, err := anonymous.GetSettings(ctx, connect.NewRequest(&api.GetSettingsRequest{}))
	assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))

	expired := api.NewBudgetServiceClient(http.DefaultClient, srv.url, connect.WithInterceptors(bearer("old-token")))
	_, err = expired.GetSettings(ctx, connect.NewRequest(&api.GetSettingsRequest{}))
	assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))

	signedIn := api.NewBudgetServiceClient(http.DefaultClient, srv.url, connect.WithInterceptors(bearer("valid-token")))
	resp, err := signedIn.GetSettings(ctx, connect.NewRequest(&api.GetSettingsRequest{}))
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSettings(), resp.Msg.Settings)
}

func TestE2EStoreUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := store.NewMockStore(ctrl)
	mockStore.EXPECT().
		Subscribe(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("firestore: deadline exceeded")).
		AnyTimes()
	mockStore.EXPECT().
		SubscribeDoc(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("firestore: deadline exceeded")).
		AnyTimes()

	srv := newTestServer(t, mockStore, auth.NewLocalDevInterceptor())
	client := api.NewBudgetServiceClient(http.DefaultClient, srv.url)

	_, err := client.GetDashboard(context.Background(), connect.NewRequest(&api.GetDashboardRequest{}))
	require.Error(t, err)
	assert.Equal(t, connect.CodeInternal, connect.CodeOf(err))
}
