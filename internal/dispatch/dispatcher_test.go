package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/budgetbolt/backend/internal/notify"
	"github.com/budgetbolt/backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type recorder struct {
	mu      sync.Mutex
	uids    []string
	notices []notify.Notice
}

func (r *recorder) Notify(ctx context.Context, uid string, n notify.Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.uids = append(r.uids, uid)
	r.notices = append(r.notices, n)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notices)
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestCreateAllocatesIDSynchronously(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := store.NewMockStore(ctrl)
	rec := &recorder{}
	d := New(mockStore, rec)

	coll := store.UserCollection("u1", store.Transactions)
	release := make(chan struct{})

	mockStore.EXPECT().NewID(coll).Return("tx-1")
	mockStore.EXPECT().
		Create(gomock.Any(), coll, "tx-1", map[string]any{"amount": 10.0}).
		DoAndReturn(func(ctx context.Context, collection, id string, data map[string]any) error {
			<-release
			return nil
		})

	p := d.Create(context.Background(), "u1", coll, map[string]any{"amount": 10.0})
	assert.Equal(t, "tx-1", p.ID)
	assert.Equal(t, "users/u1/transactions/tx-1", p.Path)

	// the write has not settled yet
	select {
	case <-p.Done():
		t.Fatal("create settled before the store answered")
	default:
	}
	assert.NoError(t, p.Err())

	close(release)
	require.NoError(t, p.Wait(waitCtx(t)))
	assert.Zero(t, rec.count())
}

func TestWriteSurvivesCallerCancellation(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := store.NewMockStore(ctrl)
	d := New(mockStore, &recorder{})

	ctx, cancel := context.WithCancel(context.Background())
	mockStore.EXPECT().
		Merge(gomock.Any(), "users/u1/goals/g1", map[string]any{"currentAmount": 150.0}).
		DoAndReturn(func(wctx context.Context, path string, data map[string]any) error {
			cancel()
			time.Sleep(10 * time.Millisecond)
			return wctx.Err()
		})

	p := d.Merge(ctx, "u1", "users/u1/goals/g1", map[string]any{"currentAmount": 150.0})
	require.NoError(t, p.Wait(waitCtx(t)))
}

func TestFailureIsReported(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(m *store.MockStore, boom error)
		dispatch func(d *Dispatcher) *Pending
		op       Op
		body     string
	}{
		{
			name: "create",
			setup: func(m *store.MockStore, boom error) {
				m.EXPECT().NewID("users/u1/transactions").Return("t9")
				m.EXPECT().Create(gomock.Any(), "users/u1/transactions", "t9", gomock.Any()).Return(boom)
			},
			dispatch: func(d *Dispatcher) *Pending {
				return d.Create(context.Background(), "u1", "users/u1/transactions", map[string]any{})
			},
			op:   OpCreate,
			body: "We couldn't save the new transaction. Please try again.",
		},
		{
			name: "replace",
			setup: func(m *store.MockStore, boom error) {
				m.EXPECT().Set(gomock.Any(), "users/u1/categories/c1", gomock.Any()).Return(boom)
			},
			dispatch: func(d *Dispatcher) *Pending {
				return d.Replace(context.Background(), "u1", "users/u1/categories/c1", map[string]any{})
			},
			op:   OpReplace,
			body: "We couldn't save the category. Please try again.",
		},
		{
			name: "merge",
			setup: func(m *store.MockStore, boom error) {
				m.EXPECT().Merge(gomock.Any(), "users/u1/settings/main", gomock.Any()).Return(boom)
			},
			dispatch: func(d *Dispatcher) *Pending {
				return d.Merge(context.Background(), "u1", "users/u1/settings/main", map[string]any{"theme": "light"})
			},
			op:   OpMerge,
			body: "We couldn't update the settings. Please try again.",
		},
		{
			name: "delete",
			setup: func(m *store.MockStore, boom error) {
				m.EXPECT().Delete(gomock.Any(), "users/u1/goals/g1").Return(boom)
			},
			dispatch: func(d *Dispatcher) *Pending {
				return d.Delete(context.Background(), "u1", "users/u1/goals/g1")
			},
			op:   OpDelete,
			body: "We couldn't delete the goal. Please try again.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockStore := store.NewMockStore(ctrl)
			rec := &recorder{}
			d := New(mockStore, rec)
			boom := errors.New("permission denied")
			tt.setup(mockStore, boom)

			p := tt.dispatch(d)
			err := p.Wait(waitCtx(t))

			require.ErrorIs(t, err, boom)
			var werr *WriteError
			require.ErrorAs(t, err, &werr)
			assert.Equal(t, tt.op, werr.Op)
			assert.Equal(t, err, p.Err())

			require.Equal(t, 1, rec.count())
			assert.Equal(t, "u1", rec.uids[0])
			assert.Equal(t, notify.LevelError, rec.notices[0].Level)
			assert.Equal(t, tt.body, rec.notices[0].Body)
		})
	}
}

func TestFlushWaitsForAllWrites(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := store.NewMockStore(ctrl)
	d := New(mockStore, &recorder{})

	var mu sync.Mutex
	written := 0
	mockStore.EXPECT().
		Delete(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, path string) error {
			time.Sleep(5 * time.Millisecond)
			mu.Lock()
			written++
			mu.Unlock()
			return nil
		}).
		Times(3)

	for _, id := range []string{"a", "b", "c"} {
		d.Delete(context.Background(), "u1", "users/u1/transactions/"+id)
	}
	require.NoError(t, d.Flush(waitCtx(t)))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, written)
}

func TestFlushConcurrentWithWrites(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := store.NewMockStore(ctrl)
	d := New(mockStore, &recorder{})

	const writers, perWriter = 8, 25
	var mu sync.Mutex
	written := 0
	mockStore.EXPECT().
		Delete(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, path string) error {
			time.Sleep(time.Millisecond)
			mu.Lock()
			written++
			mu.Unlock()
			return nil
		}).
		Times(writers * perWriter)

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				d.Delete(context.Background(), "u1", "users/u1/transactions/t")
			}
		}()
	}

	stop := make(chan struct{})
	flushed := make(chan struct{})
	go func() {
		defer close(flushed)
		for {
			select {
			case <-stop:
				return
			default:
				assert.NoError(t, d.Flush(waitCtx(t)))
			}
		}
	}()

	wg.Wait()
	close(stop)
	<-flushed
	require.NoError(t, d.Flush(waitCtx(t)))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, writers*perWriter, written)
}

func TestFlushReturnsFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := store.NewMockStore(ctrl)
	d := New(mockStore, nil, WithTimeout(time.Second))

	mockStore.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("unavailable"))
	d.Replace(context.Background(), "u1", "users/u1/goals/g1", map[string]any{})

	err := d.Flush(waitCtx(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unavailable")

	// the next flush starts clean
	require.NoError(t, d.Flush(waitCtx(t)))
}

func TestWriteTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := store.NewMockStore(ctrl)
	rec := &recorder{}
	d := New(mockStore, rec, WithTimeout(20*time.Millisecond))

	mockStore.EXPECT().
		Set(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, path string, data map[string]any) error {
			<-ctx.Done()
			return ctx.Err()
		})

	p := d.Replace(context.Background(), "u1", "users/u1/categories/c1", map[string]any{})
	require.ErrorIs(t, p.Wait(waitCtx(t)), context.DeadlineExceeded)
	assert.Equal(t, 1, rec.count())
}

func TestRedactPath(t *testing.T) {
	got := redactPath("users/secret-uid/goals/g1")
	assert.NotContains(t, got, "secret-uid")
	assert.Equal(t, "goals/g1", got[len(got)-8:])
	assert.Equal(t, "other/x", redactPath("other/x"))
}
