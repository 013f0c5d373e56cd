// Package records keeps live, typed mirrors of a user's collections.
//
// A Live view is a write-through cache: callers apply optimistic changes
// locally the moment they dispatch a write, and every snapshot from the
// store replaces the local copy wholesale. A failed write therefore
// disappears from the view on the next snapshot.
package records

import (
	"context"
	"slices"
	"sync"

	"github.com/budgetbolt/backend/internal/logger"
	"github.com/budgetbolt/backend/internal/store"
	"github.com/rs/zerolog"
)

// Decoder turns a stored document into a record.
type Decoder[T any] func(store.Document) (T, error)

// Live is a subscribed view of one collection.
type Live[T any] struct {
	mu      sync.RWMutex
	items   []T
	loaded  bool
	lastErr error
	ready   chan struct{}

	idOf     func(T) string
	less     func(a, b T) int
	onChange func()
	log      zerolog.Logger
}

// Options configures a Live view.
type Options[T any] struct {
	Query  store.Query
	Decode Decoder[T]
	ID     func(T) string
	// Order keeps optimistic inserts in the same order the query returns.
	Order func(a, b T) int
	// OnChange runs after every snapshot or local mutation, outside the lock.
	OnChange func()
}

// Watch subscribes to opts.Query and keeps the view current until ctx ends.
func Watch[T any](ctx context.Context, st store.Store, opts Options[T]) (*Live[T], error) {
	ch, err := st.Subscribe(ctx, opts.Query)
	if err != nil {
		return nil, err
	}

	l := &Live[T]{
		items:    []T{},
		ready:    make(chan struct{}),
		idOf:     opts.ID,
		less:     opts.Order,
		onChange: opts.OnChange,
		log:      logger.Component("records").With().Str("collection", opts.Query.Collection).Logger(),
	}

	go func() {
		for snap := range ch {
			l.apply(snap, opts.Decode)
		}
	}()

	return l, nil
}

func (l *Live[T]) apply(snap store.CollectionSnapshot, decode Decoder[T]) {
	if snap.Err != nil {
		l.log.Error().Err(snap.Err).Msg("snapshot failed")
		l.mu.Lock()
		l.lastErr = snap.Err
		l.markLoaded()
		l.mu.Unlock()
		l.changed()
		return
	}

	items := make([]T, 0, len(snap.Docs))
	for _, doc := range snap.Docs {
		item, err := decode(doc)
		if err != nil {
			l.log.Warn().Err(err).Str("doc_id", doc.ID).Msg("skipping undecodable document")
			continue
		}
		items = append(items, item)
	}

	l.mu.Lock()
	l.items = items
	l.lastErr = nil
	l.markLoaded()
	l.mu.Unlock()
	l.changed()
}

// markLoaded must be called with l.mu held.
func (l *Live[T]) markLoaded() {
	if !l.loaded {
		l.loaded = true
		close(l.ready)
	}
}

func (l *Live[T]) changed() {
	if l.onChange != nil {
		l.onChange()
	}
}

// Items returns a copy of the current records.
func (l *Live[T]) Items() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.items)
}

// Loaded reports whether the first snapshot has arrived.
func (l *Live[T]) Loaded() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loaded
}

// Err returns the last subscription error, if the most recent snapshot failed.
func (l *Live[T]) Err() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lastErr
}

// WaitLoaded blocks until the first snapshot or until ctx ends.
func (l *Live[T]) WaitLoaded(ctx context.Context) error {
	select {
	case <-l.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Get finds a record by id.
func (l *Live[T]) Get(id string) (T, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, item := range l.items {
		if l.idOf(item) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Upsert optimistically inserts or replaces a record.
func (l *Live[T]) Upsert(item T) {
	l.mu.Lock()
	id := l.idOf(item)
	i := slices.IndexFunc(l.items, func(x T) bool { return l.idOf(x) == id })
	if i >= 0 {
		l.items[i] = item
	} else {
		l.items = append(l.items, item)
	}
	if l.less != nil {
		slices.SortStableFunc(l.items, l.less)
	}
	l.mu.Unlock()
	l.changed()
}

// Update optimistically applies fn to the record with the given id.
func (l *Live[T]) Update(id string, fn func(T) T) bool {
	l.mu.Lock()
	i := slices.IndexFunc(l.items, func(x T) bool { return l.idOf(x) == id })
	if i >= 0 {
		l.items[i] = fn(l.items[i])
	}
	l.mu.Unlock()
	if i >= 0 {
		l.changed()
	}
	return i >= 0
}

// Remove optimistically drops the record with the given id.
func (l *Live[T]) Remove(id string) bool {
	l.mu.Lock()
	n := len(l.items)
	l.items = slices.DeleteFunc(l.items, func(x T) bool { return l.idOf(x) == id })
	removed := len(l.items) != n
	l.mu.Unlock()
	if removed {
		l.changed()
	}
	return removed
}
