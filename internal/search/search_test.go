package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/budgetbolt/backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture() []model.Transaction {
	return []model.Transaction{
		{ID: "t1", Amount: 45.5, Type: model.Expense, Category: "Groceries", Date: "2026-03-02T10:00:00Z", Notes: "Weekly shop at Woolworths"},
		{ID: "t2", Amount: 5400, Type: model.Income, Category: "Salary", Date: "2026-03-01T08:00:00Z", Notes: "March salary"},
		{ID: "t3", Amount: 120, Type: model.Expense, Category: "Dining", Date: "2026-02-20T19:30:00Z", Notes: "Dinner with Sipho"},
		{ID: "t4", Amount: 12, Type: model.Expense, Category: "Groceries", Date: "2026-02-10T09:00:00Z", Notes: "milk"},
	}
}

func newLocal() *Local {
	return NewLocal(func(ctx context.Context, uid string) ([]model.Transaction, error) {
		if uid != "u1" {
			return nil, nil
		}
		return fixture(), nil
	})
}

func ids(txs []model.Transaction) []string {
	out := make([]string, 0, len(txs))
	for _, tx := range txs {
		out = append(out, tx.ID)
	}
	return out
}

func TestLocalSearch(t *testing.T) {
	feb := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	endFeb := time.Date(2026, 2, 28, 23, 59, 59, 0, time.UTC)

	tests := []struct {
		name   string
		params Params
		want   []string
	}{
		{name: "empty query returns all newest first", params: Params{}, want: []string{"t1", "t2", "t3", "t4"}},
		{name: "matches notes case-insensitively", params: Params{Query: "woolworths"}, want: []string{"t1"}},
		{name: "matches category name", params: Params{Query: "GROCER"}, want: []string{"t1", "t4"}},
		{name: "every term must match", params: Params{Query: "dinner sipho"}, want: []string{"t3"}},
		{name: "type filter", params: Params{Type: model.FilterIncome}, want: []string{"t2"}},
		{name: "category filter", params: Params{Category: "groceries"}, want: []string{"t1", "t4"}},
		{name: "amount range", params: Params{AmountMin: 20, AmountMax: 200}, want: []string{"t1", "t3"}},
		{name: "date range", params: Params{StartDate: &feb, EndDate: &endFeb}, want: []string{"t3", "t4"}},
		{name: "no match", params: Params{Query: "petrol"}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.params.UserID = "u1"
			resp, err := newLocal().Search(context.Background(), tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(resp.Results))
			assert.Equal(t, len(tt.want), resp.TotalCount)
		})
	}
}

func TestLocalSearchPagination(t *testing.T) {
	l := newLocal()

	resp, err := l.Search(context.Background(), Params{UserID: "u1", PageSize: 3, Page: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"t4"}, ids(resp.Results))
	assert.Equal(t, 4, resp.TotalCount)
	assert.Equal(t, 2, resp.TotalPages)
	assert.Equal(t, 1, resp.Page)

	resp, err = l.Search(context.Background(), Params{UserID: "u1", PageSize: 3, Page: 5})
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
}

func TestLocalSearchErrors(t *testing.T) {
	_, err := newLocal().Search(context.Background(), Params{})
	require.Error(t, err)

	failing := NewLocal(func(ctx context.Context, uid string) ([]model.Transaction, error) {
		return nil, errors.New("not loaded")
	})
	_, err = failing.Search(context.Background(), Params{UserID: "u1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not loaded")
}

func TestPageBounds(t *testing.T) {
	page, size := pageBounds(Params{Page: -2})
	assert.Equal(t, 0, page)
	assert.Equal(t, defaultPageSize, size)

	_, size = pageBounds(Params{PageSize: 500})
	assert.Equal(t, maxPageSize, size)
}

func TestBuildFilters(t *testing.T) {
	start := time.Unix(1767225600, 0)
	got := buildFilters(Params{
		UserID:    "u1",
		Category:  "Dining",
		Type:      model.FilterExpense,
		AmountMin: 10,
		StartDate: &start,
	})
	assert.Equal(t, `userId:"u1" AND category:"Dining" AND type:"expense" AND amount >= 10.000000 AND dateUnix >= 1767225600`, got)

	assert.Equal(t, `userId:"u1"`, buildFilters(Params{UserID: "u1", Type: model.FilterAll}))
}

func TestRecordConversion(t *testing.T) {
	tx := model.Transaction{
		ID:         "t1",
		Amount:     19.99,
		Type:       model.Expense,
		Category:   "Dining",
		CategoryID: "c1",
		Date:       "2026-03-02T10:00:00Z",
		Notes:      "lunch",
		Currency:   model.ZAR,
	}
	record := ToRecord("u1", tx)
	assert.Equal(t, "u1", record["userId"])
	assert.Equal(t, int64(1999), record["amountCents"])
	assert.Equal(t, int64(1772445600), record["dateUnix"])

	// hits arrive decoded from JSON, so numbers are float64
	hit := map[string]any{}
	for k, v := range record {
		hit[k] = v
	}
	hit["amountCents"] = float64(1999)
	hit["dateUnix"] = float64(1772445600)

	got, ok := fromRecord(hit)
	require.True(t, ok)
	assert.Equal(t, tx, got)

	_, ok = fromRecord(map[string]any{"notes": "orphan"})
	assert.False(t, ok)
}
