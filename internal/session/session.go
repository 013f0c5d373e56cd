// Package session owns the live state of each signed-in user: their
// subscribed collections and their settings resolver.
package session

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/budgetbolt/backend/internal/model"
	"github.com/budgetbolt/backend/internal/records"
	"github.com/budgetbolt/backend/internal/settings"
)

// Session is one user's live view. Its subscriptions run until End.
type Session struct {
	UID          string
	Transactions *records.Live[model.Transaction]
	Categories   *records.Live[model.Category]
	Goals        *records.Live[model.Goal]
	Settings     *settings.Resolver

	// ctx lives as long as the session, not as long as any request
	ctx    context.Context
	cancel context.CancelFunc

	lastUsed atomic.Int64
	watchers atomic.Int32

	mu   sync.Mutex
	subs []chan struct{}
}

func newSession(uid string) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{UID: uid, ctx: ctx, cancel: cancel}
}

// Context is cancelled when the session ends.
func (s *Session) Context() context.Context {
	return s.ctx
}

// Done is closed when the session ends.
func (s *Session) Done() <-chan struct{} {
	return s.ctx.Done()
}

// WaitLoaded blocks until every collection and the settings have seen their
// first snapshot, or until ctx ends.
func (s *Session) WaitLoaded(ctx context.Context) error {
	waits := []func(context.Context) error{
		s.Transactions.WaitLoaded,
		s.Categories.WaitLoaded,
		s.Goals.WaitLoaded,
		s.Settings.WaitLoaded,
	}
	for _, wait := range waits {
		if err := wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Loaded reports whether every first snapshot has arrived.
func (s *Session) Loaded() bool {
	return s.Transactions.Loaded() && s.Categories.Loaded() && s.Goals.Loaded() && !s.Settings.Loading()
}

// Err returns the first subscription error among the collections.
func (s *Session) Err() error {
	return errors.Join(s.Transactions.Err(), s.Categories.Err(), s.Goals.Err())
}

// Changes returns a channel signalled after any change to the session's
// state, and a function releasing it. Signals coalesce: a slow reader sees
// one pending signal, never a backlog. A watched session is never idle.
func (s *Session) Changes() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	s.watchers.Add(1)

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			s.subs = slices.DeleteFunc(s.subs, func(x chan struct{}) bool { return x == ch })
			s.mu.Unlock()
			s.watchers.Add(-1)
			s.touch(time.Now())
		})
	}
}

func (s *Session) changed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (s *Session) touch(now time.Time) {
	s.lastUsed.Store(now.UnixNano())
}

func (s *Session) idleSince(now time.Time) time.Duration {
	if s.watchers.Load() > 0 {
		return 0
	}
	return now.Sub(time.Unix(0, s.lastUsed.Load()))
}

func (s *Session) end() {
	s.cancel()
	s.Settings.Reset()
}

// Snapshot is a consistent-enough copy of the session state for one response.
type Snapshot struct {
	Transactions []model.Transaction
	Categories   []model.Category
	Goals        []model.Goal
	Settings     model.UserSettings
}

// Snapshot copies the current state.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Transactions: s.Transactions.Items(),
		Categories:   s.Categories.Items(),
		Goals:        s.Goals.Items(),
		Settings:     s.Settings.Settings(),
	}
}
