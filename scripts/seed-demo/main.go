// seed-demo fills a running backend with a month of demo data: categories
// with budgets, transactions and a few savings goals.
//
// Usage:
//
//	go run ./scripts/seed-demo
//	API_URL=http://localhost:8111 AUTH_TOKEN=... go run ./scripts/seed-demo
//	USER_ID=demo-user go run ./scripts/seed-demo   # backend with SKIP_AUTH=true
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"connectrpc.com/connect"
	"github.com/budgetbolt/backend/internal/api"
	"github.com/budgetbolt/backend/internal/logger"
	"github.com/budgetbolt/backend/internal/model"
)

var log = logger.Component("seed-demo")

func main() {
	apiURL := os.Getenv("API_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8111"
	}

	var opts []connect.ClientOption
	switch {
	case os.Getenv("AUTH_TOKEN") != "":
		log.Info().Msg("Using provided auth token")
		opts = append(opts, connect.WithInterceptors(headerInterceptor("Authorization", "Bearer "+os.Getenv("AUTH_TOKEN"))))
	case os.Getenv("USER_ID") != "":
		log.Info().Str("user", os.Getenv("USER_ID")).Msg("Impersonating user - backend must run with SKIP_AUTH=true")
		opts = append(opts, connect.WithInterceptors(headerInterceptor("X-Debug-Impersonate-User", os.Getenv("USER_ID"))))
	default:
		log.Info().Msg("No auth token provided - seeding the local dev user")
	}

	client := api.NewBudgetServiceClient(&http.Client{Timeout: 30 * time.Second}, apiURL, opts...)
	ctx := context.Background()

	if err := seedCategories(ctx, client); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed categories")
	}
	if err := seedTransactions(ctx, client); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed transactions")
	}
	if err := seedGoals(ctx, client); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed goals")
	}

	if err := verify(ctx, client); err != nil {
		log.Fatal().Err(err).Msg("Verification failed")
	}
	log.Info().Msg("Seeded all demo data")
}

func headerInterceptor(key, value string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			req.Header().Set(key, value)
			return next(ctx, req)
		}
	}
}

func budget(v float64) *float64 { return &v }

var categories = []struct {
	id    string
	input model.CategoryInput
}{
	{"salary", model.CategoryInput{Name: "Salary", Type: model.Income, Color: "#16a34a", Icon: "Briefcase"}},
	{"freelance", model.CategoryInput{Name: "Freelance", Type: model.Income, Color: "#0ea5e9", Icon: "PenTool"}},
	{"groceries", model.CategoryInput{Name: "Groceries", Type: model.Expense, Color: "#f97316", Icon: "Utensils", MonthlyBudget: budget(4000)}},
	{"transport", model.CategoryInput{Name: "Transport", Type: model.Expense, Color: "#6366f1", Icon: "Bus", MonthlyBudget: budget(1500)}},
	{"housing", model.CategoryInput{Name: "Housing", Type: model.Expense, Color: "#a855f7", Icon: "Home", MonthlyBudget: budget(9000)}},
	{"entertainment", model.CategoryInput{Name: "Entertainment", Type: model.Expense, Color: "#ec4899", Icon: "Ticket", MonthlyBudget: budget(800)}},
}

// created maps the seed ids above to the ids the server assigned.
var created = map[string]string{}

func seedCategories(ctx context.Context, client *api.BudgetServiceClient) error {
	for _, c := range categories {
		resp, err := client.CreateCategory(ctx, connect.NewRequest(&api.CreateCategoryRequest{Category: c.input}))
		if err != nil {
			return fmt.Errorf("failed to create category %q: %w", c.input.Name, err)
		}
		created[c.id] = resp.Msg.Category.ID
		log.Info().Str("name", c.input.Name).Msg("Created category")
	}
	return nil
}

func seedTransactions(ctx context.Context, client *api.BudgetServiceClient) error {
	txs := []struct {
		category string
		kind     model.TransactionType
		amount   float64
		daysAgo  int
		notes    string
	}{
		{"salary", model.Income, 32000, 1, "Monthly salary"},
		{"freelance", model.Income, 4500, 12, "Logo design"},
		{"groceries", model.Expense, 1240.50, 0, "Weekly shop"},
		{"groceries", model.Expense, 980.20, 7, "Weekly shop"},
		{"groceries", model.Expense, 1105.75, 14, "Weekly shop"},
		{"transport", model.Expense, 850, 3, "Fuel"},
		{"transport", model.Expense, 120, 9, "Parking"},
		{"housing", model.Expense, 8500, 1, "Rent"},
		{"entertainment", model.Expense, 189, 5, "Streaming subscriptions"},
		{"entertainment", model.Expense, 420, 16, "Concert tickets"},
		{"salary", model.Income, 32000, 31, "Monthly salary"},
		{"housing", model.Expense, 8500, 31, "Rent"},
		{"groceries", model.Expense, 3620, 35, "Month of groceries"},
	}

	for _, t := range txs {
		date := time.Now().AddDate(0, 0, -t.daysAgo).Format(time.DateOnly)
		_, err := client.CreateTransaction(ctx, connect.NewRequest(&api.CreateTransactionRequest{
			Transaction: model.TransactionInput{
				Amount:     t.amount,
				Type:       t.kind,
				CategoryID: created[t.category],
				Date:       date,
				Notes:      t.notes,
			},
		}))
		if err != nil {
			return fmt.Errorf("failed to create transaction %q: %w", t.notes, err)
		}
	}
	log.Info().Int("count", len(txs)).Msg("Created transactions")
	return nil
}

func seedGoals(ctx context.Context, client *api.BudgetServiceClient) error {
	goals := []model.GoalInput{
		{Title: "Emergency fund", TargetAmount: 60000, CurrentAmount: 18000, Deadline: deadline(12), Priority: model.PriorityHigh},
		{Title: "Holiday in Mozambique", TargetAmount: 25000, CurrentAmount: 6000, Deadline: deadline(8)},
		{Title: "New laptop", TargetAmount: 22000, CurrentAmount: 22000, Deadline: deadline(2), Priority: model.PriorityLow, Status: model.GoalCompleted},
	}
	for _, g := range goals {
		if _, err := client.CreateGoal(ctx, connect.NewRequest(&api.CreateGoalRequest{Goal: g})); err != nil {
			return fmt.Errorf("failed to create goal %q: %w", g.Title, err)
		}
		log.Info().Str("title", g.Title).Msg("Created goal")
	}
	return nil
}

func deadline(months int) string {
	return time.Now().AddDate(0, months, 0).Format(time.DateOnly)
}

func verify(ctx context.Context, client *api.BudgetServiceClient) error {
	resp, err := client.GetDashboard(ctx, connect.NewRequest(&api.GetDashboardRequest{}))
	if err != nil {
		return fmt.Errorf("failed to load dashboard: %w", err)
	}
	d := resp.Msg.Dashboard
	if len(d.Recent) == 0 {
		return fmt.Errorf("dashboard shows no transactions")
	}
	log.Info().
		Str("income", d.Formatted.Income).
		Str("expense", d.Formatted.Expense).
		Str("balance", d.Formatted.Balance).
		Int32("activeGoals", d.ActiveGoals).
		Msg("Dashboard totals")
	return nil
}
