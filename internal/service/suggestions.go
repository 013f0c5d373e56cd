package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"connectrpc.com/connect"
	"github.com/budgetbolt/backend/internal/api"
	"github.com/budgetbolt/backend/internal/metrics"
	"github.com/budgetbolt/backend/internal/money"
	"github.com/budgetbolt/backend/internal/session"
	"github.com/budgetbolt/backend/internal/suggest"
)

// suggestionInputs are the prompt inputs derived from a session.
type suggestionInputs struct {
	transactionHistory string
	financialGoals     string
	currency           string
	income             float64
	spendingPatterns   string
}

func deriveInputs(snap session.Snapshot) (suggestionInputs, error) {
	history, err := json.Marshal(snap.Transactions)
	if err != nil {
		return suggestionInputs{}, fmt.Errorf("failed to encode transaction history: %w", err)
	}
	goals, err := json.Marshal(snap.Goals)
	if err != nil {
		return suggestionInputs{}, fmt.Errorf("failed to encode goals: %w", err)
	}
	if snap.Transactions == nil {
		history = []byte("[]")
	}
	if snap.Goals == nil {
		goals = []byte("[]")
	}

	return suggestionInputs{
		transactionHistory: string(history),
		financialGoals:     string(goals),
		currency:           string(snap.Settings.Currency),
		income:             metrics.ComputeTotals(snap.Transactions).Income,
		spendingPatterns:   spendingPatterns(snap),
	}, nil
}

// spendingPatterns describes where the money goes, largest category first.
func spendingPatterns(snap session.Snapshot) string {
	breakdown := metrics.CategoryBreakdown(snap.Transactions, snap.Categories)
	if len(breakdown) == 0 {
		return "No expenses recorded yet."
	}

	f := money.For(snap.Settings)
	expense := metrics.ComputeTotals(snap.Transactions).Expense
	parts := make([]string, 0, len(breakdown))
	for _, sl := range breakdown {
		share := 0.0
		if expense > 0 {
			share = sl.Amount / expense
		}
		parts = append(parts, fmt.Sprintf("%s %s (%s)", sl.Category, f.Format(sl.Amount), f.Percent(share)))
	}
	return "Spending by category: " + strings.Join(parts, ", ") + "."
}

func pick[T any](override *T, derived T) T {
	if override != nil {
		return *override
	}
	return derived
}

func (s *BudgetService) suggestionSession(ctx context.Context) (string, suggestionInputs, error) {
	claims, sess, err := s.userSession(ctx)
	if err != nil {
		return "", suggestionInputs{}, err
	}
	if s.suggester == nil {
		return "", suggestionInputs{}, connect.NewError(connect.CodeUnavailable, fmt.Errorf("suggestions are not configured"))
	}
	in, err := deriveInputs(sess.Snapshot())
	if err != nil {
		return "", suggestionInputs{}, toConnectError(err)
	}
	return claims.UID, in, nil
}

func (s *BudgetService) suggestionFailed(uid, name string, err error) error {
	s.userLog(uid).Warn().Err(err).Str("request", name).Msg("suggestion failed")
	return toConnectError(err)
}

// SuggestBudgetImprovements asks the model for ways to improve the caller's budget
func (s *BudgetService) SuggestBudgetImprovements(ctx context.Context, req *connect.Request[api.SuggestBudgetImprovementsRequest]) (*connect.Response[api.SuggestBudgetImprovementsResponse], error) {
	uid, derived, err := s.suggestionSession(ctx)
	if err != nil {
		return nil, err
	}

	out, err := s.suggester.SuggestBudgetImprovements(ctx, suggest.BudgetImprovementsInput{
		TransactionHistory: pick(req.Msg.TransactionHistory, derived.transactionHistory),
		FinancialGoals:     pick(req.Msg.FinancialGoals, derived.financialGoals),
		Currency:           pick(req.Msg.Currency, derived.currency),
	})
	if err != nil {
		return nil, s.suggestionFailed(uid, "budgetImprovements", err)
	}
	return connect.NewResponse(&api.SuggestBudgetImprovementsResponse{Suggestions: out.Suggestions}), nil
}

// SuggestMeaningfulGoals asks the model for goals fitting the caller's income and spending
func (s *BudgetService) SuggestMeaningfulGoals(ctx context.Context, req *connect.Request[api.SuggestMeaningfulGoalsRequest]) (*connect.Response[api.SuggestGoalsResponse], error) {
	uid, derived, err := s.suggestionSession(ctx)
	if err != nil {
		return nil, err
	}

	out, err := s.suggester.SuggestMeaningfulGoals(ctx, suggest.MeaningfulGoalsInput{
		Income:           pick(req.Msg.Income, derived.income),
		SpendingPatterns: pick(req.Msg.SpendingPatterns, derived.spendingPatterns),
	})
	if err != nil {
		return nil, s.suggestionFailed(uid, "meaningfulGoals", err)
	}
	return connect.NewResponse(&api.SuggestGoalsResponse{SuggestedGoals: out.SuggestedGoals}), nil
}

// SuggestBudgetGoals asks the model for budget goals based on the caller's history
func (s *BudgetService) SuggestBudgetGoals(ctx context.Context, req *connect.Request[api.SuggestBudgetGoalsRequest]) (*connect.Response[api.SuggestGoalsResponse], error) {
	uid, derived, err := s.suggestionSession(ctx)
	if err != nil {
		return nil, err
	}

	out, err := s.suggester.SuggestBudgetGoals(ctx, suggest.BudgetGoalsInput{
		TransactionHistory: pick(req.Msg.TransactionHistory, derived.transactionHistory),
		Currency:           pick(req.Msg.Currency, derived.currency),
	})
	if err != nil {
		return nil, s.suggestionFailed(uid, "budgetGoals", err)
	}
	return connect.NewResponse(&api.SuggestGoalsResponse{SuggestedGoals: out.SuggestedGoals}), nil
}
