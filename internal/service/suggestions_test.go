package service

import (
	"encoding/json"
	"fmt"
	"testing"

	"connectrpc.com/connect"
	"github.com/budgetbolt/backend/internal/api"
	"github.com/budgetbolt/backend/internal/model"
	"github.com/budgetbolt/backend/internal/session"
	"github.com/budgetbolt/backend/internal/store"
	"github.com/budgetbolt/backend/internal/suggest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestionsDeriveInputsFromRecords(t *testing.T) {
	st := store.NewMemoryStore()
	seedCategory(t, st, "user-123", "food", "Groceries", model.Expense)
	env := newTestEnv(t, st)
	fake := &fakeSuggester{}
	env.svc.SetSuggester(fake)
	ctx := testContextWithUser("user-123")

	createTx(t, env.svc, ctx, model.TransactionInput{Amount: 3000, Type: model.Income, CategoryID: "salary", Date: "2026-03-01"})
	createTx(t, env.svc, ctx, model.TransactionInput{Amount: 450, Type: model.Expense, CategoryID: "food", Date: "2026-03-04"})

	resp, err := env.svc.SuggestBudgetImprovements(ctx, connect.NewRequest(&api.SuggestBudgetImprovementsRequest{}))
	require.NoError(t, err)
	assert.Equal(t, []string{"Cook at home twice a week"}, resp.Msg.Suggestions)

	var history []model.Transaction
	require.NoError(t, json.Unmarshal([]byte(fake.improvements.TransactionHistory), &history))
	assert.Len(t, history, 2)
	assert.Equal(t, "[]", fake.improvements.FinancialGoals)
	assert.Equal(t, "ZAR", fake.improvements.Currency)

	goals, err := env.svc.SuggestMeaningfulGoals(ctx, connect.NewRequest(&api.SuggestMeaningfulGoalsRequest{}))
	require.NoError(t, err)
	assert.NotEmpty(t, goals.Msg.SuggestedGoals)
	assert.Equal(t, 3000.0, fake.meaningful.Income)
	assert.Contains(t, fake.meaningful.SpendingPatterns, "Groceries")
	assert.Contains(t, fake.meaningful.SpendingPatterns, "100%")

	_, err = env.svc.SuggestBudgetGoals(ctx, connect.NewRequest(&api.SuggestBudgetGoalsRequest{}))
	require.NoError(t, err)
	assert.Equal(t, fake.improvements.TransactionHistory, fake.budgetGoals.TransactionHistory)
}

func TestSuggestionOverrides(t *testing.T) {
	env := newTestEnv(t, store.NewMemoryStore())
	fake := &fakeSuggester{}
	env.svc.SetSuggester(fake)
	ctx := testContextWithUser("user-123")

	income := 3500.0
	patterns := "Spends moderately on food and transport."
	_, err := env.svc.SuggestMeaningfulGoals(ctx, connect.NewRequest(&api.SuggestMeaningfulGoalsRequest{
		Income:           &income,
		SpendingPatterns: &patterns,
	}))
	require.NoError(t, err)
	assert.Equal(t, suggest.MeaningfulGoalsInput{Income: 3500, SpendingPatterns: patterns}, fake.meaningful)

	usd := "USD"
	_, err = env.svc.SuggestBudgetGoals(ctx, connect.NewRequest(&api.SuggestBudgetGoalsRequest{Currency: &usd}))
	require.NoError(t, err)
	assert.Equal(t, "USD", fake.budgetGoals.Currency)
	assert.Equal(t, "[]", fake.budgetGoals.TransactionHistory)
}

func TestSuggestionFailureIsGeneric(t *testing.T) {
	env := newTestEnv(t, store.NewMemoryStore())
	env.svc.SetSuggester(&fakeSuggester{err: fmt.Errorf("%w: model returned prose", suggest.ErrSuggestionFailed)})
	ctx := testContextWithUser("user-123")

	_, err := env.svc.SuggestBudgetGoals(ctx, connect.NewRequest(&api.SuggestBudgetGoalsRequest{}))
	require.Error(t, err)
	assert.Equal(t, connect.CodeUnavailable, connect.CodeOf(err))

	var ce *connect.Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, suggest.UserMessage, ce.Message())
}

func TestSuggestionsNotConfigured(t *testing.T) {
	env := newTestEnv(t, store.NewMemoryStore())

	_, err := env.svc.SuggestBudgetImprovements(testContextWithUser("user-123"), connect.NewRequest(&api.SuggestBudgetImprovementsRequest{}))
	assert.Equal(t, connect.CodeUnavailable, connect.CodeOf(err))

	env.svc.SetSuggester(&fakeSuggester{})
	_, err = env.svc.SuggestBudgetImprovements(testContextWithUser(""), connect.NewRequest(&api.SuggestBudgetImprovementsRequest{}))
	assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
}

func TestSpendingPatternsWithoutExpenses(t *testing.T) {
	snap := session.Snapshot{
		Transactions: []model.Transaction{{ID: "t1", Amount: 100, Type: model.Income, Category: "Salary", Date: "2026-03-01"}},
		Settings:     model.DefaultSettings(),
	}
	assert.Equal(t, "No expenses recorded yet.", spendingPatterns(snap))
}
