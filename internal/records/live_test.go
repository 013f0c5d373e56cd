package records

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/budgetbolt/backend/internal/model"
	"github.com/budgetbolt/backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func waitLoaded[T any](t *testing.T, l *Live[T]) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, l.WaitLoaded(ctx))
}

func TestWatchTransactions(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st := store.NewMemoryStore()
	coll := store.UserCollection("u1", store.Transactions)
	require.NoError(t, st.Create(ctx, coll, "old", map[string]any{"amount": 5.0, "type": "expense", "date": "2024-01-01"}))

	var changes atomic.Int32
	live, err := WatchTransactions(ctx, st, "u1", func() { changes.Add(1) })
	require.NoError(t, err)
	waitLoaded(t, live)

	items := live.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "old", items[0].ID)
	assert.Equal(t, 5.0, items[0].Amount)

	require.NoError(t, st.Create(ctx, coll, "new", map[string]any{"amount": 7.0, "type": "income", "date": "2024-02-01"}))
	require.Eventually(t, func() bool { return len(live.Items()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "new", live.Items()[0].ID)
	assert.GreaterOrEqual(t, changes.Load(), int32(2))
}

func TestLiveOptimisticMutations(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st := store.NewMemoryStore()
	live, err := WatchTransactions(ctx, st, "u1", nil)
	require.NoError(t, err)
	waitLoaded(t, live)

	live.Upsert(model.Transaction{ID: "a", Amount: 1, Date: "2024-01-01"})
	live.Upsert(model.Transaction{ID: "b", Amount: 2, Date: "2024-03-01"})
	assert.Equal(t, []string{"b", "a"}, idsOf(live.Items()))

	live.Upsert(model.Transaction{ID: "a", Amount: 9, Date: "2024-05-01"})
	assert.Equal(t, []string{"a", "b"}, idsOf(live.Items()))

	ok := live.Update("b", func(tx model.Transaction) model.Transaction {
		tx.Notes = "edited"
		return tx
	})
	require.True(t, ok)
	got, found := live.Get("b")
	require.True(t, found)
	assert.Equal(t, "edited", got.Notes)
	assert.False(t, live.Update("missing", func(tx model.Transaction) model.Transaction { return tx }))

	require.True(t, live.Remove("a"))
	require.False(t, live.Remove("a"))
	assert.Equal(t, []string{"b"}, idsOf(live.Items()))
}

func TestLiveSnapshotReplacesOptimisticState(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st := store.NewMemoryStore()
	live, err := WatchGoals(ctx, st, "u1", nil)
	require.NoError(t, err)
	waitLoaded(t, live)

	// a write that never lands
	live.Upsert(model.Goal{ID: "ghost", Title: "Never saved"})
	require.Len(t, live.Items(), 1)

	// the next snapshot reflects the store only
	require.NoError(t, st.Create(ctx, store.UserCollection("u1", store.Goals), "real", map[string]any{"title": "Car"}))
	require.Eventually(t, func() bool {
		items := live.Items()
		return len(items) == 1 && items[0].ID == "real"
	}, time.Second, 5*time.Millisecond)
}

func TestLiveSubscriptionError(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := store.NewMockStore(ctrl)

	ch := make(chan store.CollectionSnapshot, 1)
	ch <- store.CollectionSnapshot{Err: errors.New("permission denied")}
	close(ch)

	mockStore.EXPECT().
		Subscribe(gomock.Any(), store.Query{Collection: "users/u1/categories"}).
		Return((<-chan store.CollectionSnapshot)(ch), nil)

	live, err := WatchCategories(context.Background(), mockStore, "u1", nil)
	require.NoError(t, err)
	waitLoaded(t, live)

	assert.Empty(t, live.Items())
	assert.EqualError(t, live.Err(), "permission denied")
}

func TestWatchSubscribeFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := store.NewMockStore(ctrl)
	mockStore.EXPECT().Subscribe(gomock.Any(), gomock.Any()).Return(nil, errors.New("offline"))

	_, err := WatchGoals(context.Background(), mockStore, "u1", nil)
	require.EqualError(t, err, "offline")
}

func TestWaitLoadedTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := store.NewMockStore(ctrl)
	never := make(chan store.CollectionSnapshot)
	mockStore.EXPECT().Subscribe(gomock.Any(), gomock.Any()).Return((<-chan store.CollectionSnapshot)(never), nil)

	live, err := WatchGoals(context.Background(), mockStore, "u1", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, live.WaitLoaded(ctx), context.DeadlineExceeded)
	assert.False(t, live.Loaded())
	assert.Empty(t, live.Items())
}

func idsOf(txs []model.Transaction) []string {
	out := make([]string, 0, len(txs))
	for _, tx := range txs {
		out = append(out, tx.ID)
	}
	return out
}
