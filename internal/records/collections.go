package records

import (
	"context"
	"strings"

	"github.com/budgetbolt/backend/internal/model"
	"github.com/budgetbolt/backend/internal/store"
)

func decode[T any](doc store.Document) (T, error) {
	var v T
	err := doc.DataTo(&v)
	return v, err
}

// byDateDesc matches the transactions query: newest date first.
func byDateDesc(a, b model.Transaction) int {
	return strings.Compare(b.Date, a.Date)
}

// WatchTransactions mirrors users/{uid}/transactions ordered by date, newest first.
func WatchTransactions(ctx context.Context, st store.Store, uid string, onChange func()) (*Live[model.Transaction], error) {
	return Watch(ctx, st, Options[model.Transaction]{
		Query: store.Query{
			Collection: store.UserCollection(uid, store.Transactions),
			OrderBy:    "date",
			Direction:  store.Desc,
		},
		Decode:   decode[model.Transaction],
		ID:       func(t model.Transaction) string { return t.ID },
		Order:    byDateDesc,
		OnChange: onChange,
	})
}

// WatchCategories mirrors users/{uid}/categories.
func WatchCategories(ctx context.Context, st store.Store, uid string, onChange func()) (*Live[model.Category], error) {
	return Watch(ctx, st, Options[model.Category]{
		Query:    store.Query{Collection: store.UserCollection(uid, store.Categories)},
		Decode:   decode[model.Category],
		ID:       func(c model.Category) string { return c.ID },
		OnChange: onChange,
	})
}

// WatchGoals mirrors users/{uid}/goals.
func WatchGoals(ctx context.Context, st store.Store, uid string, onChange func()) (*Live[model.Goal], error) {
	return Watch(ctx, st, Options[model.Goal]{
		Query:    store.Query{Collection: store.UserCollection(uid, store.Goals)},
		Decode:   decode[model.Goal],
		ID:       func(g model.Goal) string { return g.ID },
		OnChange: onChange,
	})
}
