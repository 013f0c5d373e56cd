// Package api declares the BudgetService RPC surface: its messages, the
// procedure names, a handler constructor and a typed client.
package api

import (
	"github.com/budgetbolt/backend/internal/metrics"
	"github.com/budgetbolt/backend/internal/model"
	"github.com/budgetbolt/backend/internal/notify"
)

// Profile

type GetProfileRequest struct{}

type GetProfileResponse struct {
	Profile model.UserProfile `json:"profile"`
}

type SignOutRequest struct {
	// AllDevices also revokes the user's refresh tokens at the identity provider.
	AllDevices bool `json:"allDevices,omitempty"`
}

type SignOutResponse struct{}

// Transactions

type ListTransactionsRequest struct {
	Type  model.TypeFilter `json:"type,omitempty"`
	Limit int32            `json:"limit,omitempty"`
}

type ListTransactionsResponse struct {
	Transactions []model.Transaction `json:"transactions"`
	Loaded       bool                `json:"loaded"`
}

type CreateTransactionRequest struct {
	Transaction model.TransactionInput `json:"transaction"`
}

type CreateTransactionResponse struct {
	Transaction model.Transaction `json:"transaction"`
}

type UpdateTransactionRequest struct {
	ID          string                 `json:"id"`
	Transaction model.TransactionInput `json:"transaction"`
}

type UpdateTransactionResponse struct {
	Transaction model.Transaction `json:"transaction"`
}

type DeleteTransactionRequest struct {
	ID string `json:"id"`
}

type DeleteTransactionResponse struct{}

type SearchTransactionsRequest struct {
	Query     string           `json:"query,omitempty"`
	Category  string           `json:"category,omitempty"`
	Type      model.TypeFilter `json:"type,omitempty"`
	AmountMin float64          `json:"amountMin,omitempty"`
	AmountMax float64          `json:"amountMax,omitempty"`
	StartDate string           `json:"startDate,omitempty"`
	EndDate   string           `json:"endDate,omitempty"`
	Page      int32            `json:"page,omitempty"`
	PageSize  int32            `json:"pageSize,omitempty"`
}

type SearchTransactionsResponse struct {
	Results    []model.Transaction `json:"results"`
	TotalCount int32               `json:"totalCount"`
	TotalPages int32               `json:"totalPages"`
	Page       int32               `json:"page"`
}

type ExportTransactionsRequest struct {
	Type model.TypeFilter `json:"type,omitempty"`
}

type ExportTransactionsResponse struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"data"`
	Rows        int32  `json:"rows"`
	ObjectPath  string `json:"objectPath,omitempty"`
}

// Categories

type ListCategoriesRequest struct{}

type ListCategoriesResponse struct {
	Categories []model.Category `json:"categories"`
	Income     []model.Category `json:"income"`
	Expense    []model.Category `json:"expense"`
}

type CreateCategoryRequest struct {
	Category model.CategoryInput `json:"category"`
}

type CreateCategoryResponse struct {
	Category model.Category `json:"category"`
}

type UpdateCategoryRequest struct {
	ID       string              `json:"id"`
	Category model.CategoryInput `json:"category"`
}

type UpdateCategoryResponse struct {
	Category model.Category `json:"category"`
}

type DeleteCategoryRequest struct {
	ID string `json:"id"`
}

type DeleteCategoryResponse struct{}

// Goals

// GoalView is a goal with its progress percentage.
type GoalView struct {
	model.Goal
	Progress float64 `json:"progress"`
}

type ListGoalsRequest struct{}

type ListGoalsResponse struct {
	Goals []GoalView `json:"goals"`
}

type CreateGoalRequest struct {
	Goal model.GoalInput `json:"goal"`
}

type CreateGoalResponse struct {
	Goal GoalView `json:"goal"`
}

type UpdateGoalRequest struct {
	ID   string          `json:"id"`
	Goal model.GoalInput `json:"goal"`
}

type UpdateGoalResponse struct {
	Goal GoalView `json:"goal"`
}

type DeleteGoalRequest struct {
	ID string `json:"id"`
}

type DeleteGoalResponse struct{}

type ContributeToGoalRequest struct {
	ID     string                 `json:"id"`
	Kind   model.ContributionKind `json:"kind"`
	Amount float64                `json:"amount"`
}

type ContributeToGoalResponse struct {
	Goal GoalView `json:"goal"`
}

// Settings

type GetSettingsRequest struct{}

type GetSettingsResponse struct {
	Settings model.UserSettings `json:"settings"`
	Loading  bool               `json:"loading"`
}

type UpdateSettingsRequest struct {
	Patch model.SettingsPatch `json:"patch"`
}

type UpdateSettingsResponse struct {
	Settings model.UserSettings `json:"settings"`
}

// Dashboard

// GetDashboardRequest carries the caller's IANA time zone, e.g.
// "Africa/Johannesburg". The greeting and the budget month follow it; an
// empty zone means the server's.
type GetDashboardRequest struct {
	TimeZone string `json:"timeZone,omitempty"`
}

type WatchDashboardRequest struct {
	TimeZone string `json:"timeZone,omitempty"`
}

// FormattedTotals holds the totals rendered in the user's currency and language.
type FormattedTotals struct {
	Income  string `json:"income"`
	Expense string `json:"expense"`
	Balance string `json:"balance"`
}

type Dashboard struct {
	GreetingKey string                  `json:"greetingKey"`
	DisplayName string                  `json:"displayName,omitempty"`
	Totals      metrics.Totals          `json:"totals"`
	Formatted   FormattedTotals         `json:"formatted"`
	Breakdown   []metrics.CategorySlice `json:"breakdown"`
	Monthly     []metrics.MonthBucket   `json:"monthly"`
	Budgets     []metrics.BudgetUsage   `json:"budgets"`
	Recent      []model.Transaction     `json:"recent"`
	Goals       []GoalView              `json:"goals"`
	ActiveGoals int32                   `json:"activeGoals"`
	Settings    model.UserSettings      `json:"settings"`
	Loaded      bool                    `json:"loaded"`
	GeneratedAt string                  `json:"generatedAt"`
}

type GetDashboardResponse struct {
	Dashboard Dashboard `json:"dashboard"`
}

type WatchDashboardResponse struct {
	Dashboard Dashboard `json:"dashboard"`
}

// Suggestions. Omitted inputs are derived from the user's records.

type SuggestBudgetImprovementsRequest struct {
	TransactionHistory *string `json:"transactionHistory,omitempty"`
	FinancialGoals     *string `json:"financialGoals,omitempty"`
	Currency           *string `json:"currency,omitempty"`
}

type SuggestBudgetImprovementsResponse struct {
	Suggestions []string `json:"suggestions"`
}

type SuggestMeaningfulGoalsRequest struct {
	Income           *float64 `json:"income,omitempty"`
	SpendingPatterns *string  `json:"spendingPatterns,omitempty"`
}

type SuggestBudgetGoalsRequest struct {
	TransactionHistory *string `json:"transactionHistory,omitempty"`
	Currency           *string `json:"currency,omitempty"`
}

type SuggestGoalsResponse struct {
	SuggestedGoals []string `json:"suggestedGoals"`
}

// Notices

type ListNoticesRequest struct {
	// Peek leaves the notices queued.
	Peek bool `json:"peek,omitempty"`
}

type ListNoticesResponse struct {
	Notices []notify.Notice `json:"notices"`
}

type RegisterPushTokenRequest struct {
	Token string `json:"token"`
}

type RegisterPushTokenResponse struct{}

type UnregisterPushTokenRequest struct {
	Token string `json:"token"`
}

type UnregisterPushTokenResponse struct{}
