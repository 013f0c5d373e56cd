// Package metrics derives the dashboard figures from a user's records.
//
// Every function is pure and recomputed on each call; nil slices are
// treated as empty. Sums are accumulated as decimals so that totals and
// breakdowns agree exactly regardless of summation order. Amounts in
// different currencies are added together without conversion.
package metrics

import (
	"cmp"
	"slices"
	"time"

	"github.com/budgetbolt/backend/internal/model"
	"github.com/shopspring/decimal"
)

// MonthLabel is the display format of a MonthlySeries period.
const MonthLabel = "Jan 2006"

// Totals is the income, expense and balance of a set of transactions.
type Totals struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Balance float64 `json:"balance"`
}

// CategorySlice is one category's share of expenses.
type CategorySlice struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Color    string  `json:"color"`
}

// MonthBucket holds one calendar month's income and expense.
type MonthBucket struct {
	Period  string  `json:"period"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

// BudgetUsage compares a category's spend in a month to its monthly budget.
type BudgetUsage struct {
	CategoryID string  `json:"categoryId"`
	Category   string  `json:"category"`
	Budget     float64 `json:"budget"`
	Spent      float64 `json:"spent"`
	Remaining  float64 `json:"remaining"`
	Percent    float64 `json:"percent"`
}

func dec(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func float(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

// ComputeTotals sums income and expense. Balance is income minus expense.
func ComputeTotals(txs []model.Transaction) Totals {
	income, expense := decimal.Zero, decimal.Zero
	for _, tx := range txs {
		switch tx.Type {
		case model.Income:
			income = income.Add(dec(tx.Amount))
		case model.Expense:
			expense = expense.Add(dec(tx.Amount))
		}
	}
	t := Totals{Income: float(income), Expense: float(expense)}
	t.Balance = t.Income - t.Expense
	return t
}

// CategoryBreakdown groups expenses by their denormalised category name.
// Colours come from the category with the same name, or
// model.DefaultCategoryColor when none matches. Slices are ordered by
// amount, largest first, then by name.
func CategoryBreakdown(txs []model.Transaction, categories []model.Category) []CategorySlice {
	sums := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		if tx.Type != model.Expense {
			continue
		}
		sums[tx.Category] = sums[tx.Category].Add(dec(tx.Amount))
	}

	colors := make(map[string]string, len(categories))
	for _, c := range categories {
		if _, seen := colors[c.Name]; !seen {
			colors[c.Name] = c.Color
		}
	}

	out := make([]CategorySlice, 0, len(sums))
	for name, sum := range sums {
		color, ok := colors[name]
		if !ok {
			color = model.DefaultCategoryColor
		}
		out = append(out, CategorySlice{Category: name, Amount: float(sum), Color: color})
	}

	slices.SortFunc(out, func(a, b CategorySlice) int {
		if c := cmp.Compare(b.Amount, a.Amount); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	return out
}

// MonthlySeries buckets transactions by the calendar month of their date,
// most recent month first. Transactions with unparseable dates are skipped.
func MonthlySeries(txs []model.Transaction) []MonthBucket {
	type acc struct {
		month           time.Time
		income, expense decimal.Decimal
	}
	buckets := make(map[time.Time]*acc)

	for _, tx := range txs {
		if tx.Type != model.Income && tx.Type != model.Expense {
			continue
		}
		t, err := model.ParseDate(tx.Date)
		if err != nil {
			continue
		}
		month := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		b, ok := buckets[month]
		if !ok {
			b = &acc{month: month}
			buckets[month] = b
		}
		if tx.Type == model.Income {
			b.income = b.income.Add(dec(tx.Amount))
		} else {
			b.expense = b.expense.Add(dec(tx.Amount))
		}
	}

	months := make([]*acc, 0, len(buckets))
	for _, b := range buckets {
		months = append(months, b)
	}
	slices.SortFunc(months, func(a, b *acc) int {
		return b.month.Compare(a.month)
	})

	out := make([]MonthBucket, 0, len(months))
	for _, b := range months {
		out = append(out, MonthBucket{
			Period:  b.month.Format(MonthLabel),
			Income:  float(b.income),
			Expense: float(b.expense),
		})
	}
	return out
}

// GoalProgress is the saved percentage of a goal's target. It is not
// clamped: overshooting yields more than 100. A non-positive target gives 0.
func GoalProgress(g model.Goal) float64 {
	if g.TargetAmount <= 0 {
		return 0
	}
	return float(dec(g.CurrentAmount).Div(dec(g.TargetAmount)).Mul(decimal.NewFromInt(100)))
}

// ActiveGoals counts goals still being saved for.
func ActiveGoals(goals []model.Goal) int {
	n := 0
	for _, g := range goals {
		if g.Status == model.GoalActive {
			n++
		}
	}
	return n
}

// Recent returns the n newest transactions by date. Ties keep input order.
func Recent(txs []model.Transaction, n int) []model.Transaction {
	out := SortByDateDesc(txs)
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// SortByDateDesc returns a copy of txs ordered newest first.
func SortByDateDesc(txs []model.Transaction) []model.Transaction {
	out := slices.Clone(txs)
	if out == nil {
		out = []model.Transaction{}
	}
	slices.SortStableFunc(out, func(a, b model.Transaction) int {
		return compareDates(b.Date, a.Date)
	})
	return out
}

// compareDates orders parseable dates chronologically ahead of unparseable ones.
func compareDates(a, b string) int {
	ta, errA := model.ParseDate(a)
	tb, errB := model.ParseDate(b)
	switch {
	case errA == nil && errB == nil:
		return ta.Compare(tb)
	case errA != nil && errB != nil:
		return cmp.Compare(a, b)
	case errA != nil:
		return -1
	default:
		return 1
	}
}

// FilterByType keeps transactions matching f.
func FilterByType(txs []model.Transaction, f model.TypeFilter) []model.Transaction {
	out := make([]model.Transaction, 0, len(txs))
	for _, tx := range txs {
		if f.Matches(tx.Type) {
			out = append(out, tx)
		}
	}
	return out
}

// MonthlyBudgets reports spend against budget for every expense category
// that has a monthly budget, for the calendar month containing now.
// Spend is matched by category id.
func MonthlyBudgets(txs []model.Transaction, categories []model.Category, now time.Time) []BudgetUsage {
	spent := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		if tx.Type != model.Expense {
			continue
		}
		t, err := model.ParseDate(tx.Date)
		if err != nil || t.Year() != now.Year() || t.Month() != now.Month() {
			continue
		}
		spent[tx.CategoryID] = spent[tx.CategoryID].Add(dec(tx.Amount))
	}

	out := []BudgetUsage{}
	for _, c := range categories {
		if c.Type != model.Expense || c.MonthlyBudget == nil {
			continue
		}
		budget := dec(*c.MonthlyBudget)
		used := spent[c.ID]
		usage := BudgetUsage{
			CategoryID: c.ID,
			Category:   c.Name,
			Budget:     float(budget),
			Spent:      float(used),
			Remaining:  float(budget.Sub(used)),
		}
		if budget.IsPositive() {
			usage.Percent = float(used.Div(budget).Mul(decimal.NewFromInt(100)))
		}
		out = append(out, usage)
	}
	return out
}
