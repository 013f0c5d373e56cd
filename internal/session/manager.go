package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/budgetbolt/backend/internal/logger"
	"github.com/budgetbolt/backend/internal/records"
	"github.com/budgetbolt/backend/internal/settings"
	"github.com/budgetbolt/backend/internal/store"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultIdleTTL      = 30 * time.Minute
	DefaultSnapshotWait = 3 * time.Second
)

// ErrClosed is returned by Get after Close.
var ErrClosed = errors.New("session manager closed")

// Manager opens one session per user and ends idle ones.
type Manager struct {
	store        store.Store
	writer       settings.Writer
	idleTTL      time.Duration
	snapshotWait time.Duration
	onEnd        func(uid string)
	now          func() time.Time
	log          zerolog.Logger

	group singleflight.Group

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithIdleTTL ends sessions unused for longer than d.
func WithIdleTTL(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.idleTTL = d
		}
	}
}

// WithSnapshotWait bounds how long Get waits for a new session's first snapshots.
func WithSnapshotWait(d time.Duration) Option {
	return func(m *Manager) {
		if d >= 0 {
			m.snapshotWait = d
		}
	}
}

// WithOnEnd runs fn after a session ends, for any reason.
func WithOnEnd(fn func(uid string)) Option {
	return func(m *Manager) {
		m.onEnd = fn
	}
}

// NewManager creates a manager opening sessions on st. Settings writes go
// through w.
func NewManager(st store.Store, w settings.Writer, opts ...Option) *Manager {
	m := &Manager{
		store:        st,
		writer:       w,
		idleTTL:      DefaultIdleTTL,
		snapshotWait: DefaultSnapshotWait,
		now:          time.Now,
		log:          logger.Component("session"),
		sessions:     make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns the session of uid, opening it on first use. Concurrent
// first calls share one open. A freshly opened session is returned once its
// first snapshots arrive or the snapshot wait runs out, whichever is first;
// until then lists are empty and settings are the defaults.
func (m *Manager) Get(ctx context.Context, uid string) (*Session, error) {
	if uid == "" {
		return nil, settings.ErrNoUser
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrClosed
	}
	if s, ok := m.sessions[uid]; ok {
		s.touch(m.now())
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	v, err, _ := m.group.Do(uid, func() (any, error) {
		m.mu.Lock()
		if s, ok := m.sessions[uid]; ok {
			m.mu.Unlock()
			return s, nil
		}
		m.mu.Unlock()

		s, err := m.open(uid)
		if err != nil {
			return nil, err
		}

		s.touch(m.now())
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.closed {
			s.end()
			return nil, ErrClosed
		}
		m.sessions[uid] = s
		return s, nil
	})
	if err != nil {
		return nil, err
	}

	s := v.(*Session)
	s.touch(m.now())
	m.waitFirstSnapshots(ctx, s)
	return s, nil
}

func (m *Manager) waitFirstSnapshots(ctx context.Context, s *Session) {
	if s.Loaded() || m.snapshotWait == 0 {
		return
	}
	wctx, cancel := context.WithTimeout(ctx, m.snapshotWait)
	defer cancel()
	if err := s.WaitLoaded(wctx); err != nil {
		m.log.Debug().Err(err).Str("user", logger.HashUserID(s.UID)).Msg("serving session before first snapshots")
	}
}

func (m *Manager) open(uid string) (*Session, error) {
	s := newSession(uid)
	log := m.log.With().Str("user", logger.HashUserID(uid)).Logger()

	fail := func(what string, err error) (*Session, error) {
		s.cancel()
		log.Error().Err(err).Msgf("failed to subscribe to %s", what)
		return nil, fmt.Errorf("failed to subscribe to %s: %w", what, err)
	}

	var err error
	if s.Transactions, err = records.WatchTransactions(s.ctx, m.store, uid, s.changed); err != nil {
		return fail("transactions", err)
	}
	if s.Categories, err = records.WatchCategories(s.ctx, m.store, uid, s.changed); err != nil {
		return fail("categories", err)
	}
	if s.Goals, err = records.WatchGoals(s.ctx, m.store, uid, s.changed); err != nil {
		return fail("goals", err)
	}

	s.Settings = settings.NewResolver(m.store, m.writer, s.changed)
	if err := s.Settings.Start(s.ctx, uid); err != nil {
		return fail("settings", err)
	}

	log.Info().Msg("session opened")
	return s, nil
}

// Lookup returns the session of uid without opening one.
func (m *Manager) Lookup(uid string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[uid]
	return s, ok
}

// End tears down the session of uid. It reports whether one was open.
func (m *Manager) End(uid string) bool {
	m.mu.Lock()
	s, ok := m.sessions[uid]
	delete(m.sessions, uid)
	m.mu.Unlock()

	if !ok {
		return false
	}
	m.finish(s, "ended")
	return true
}

func (m *Manager) finish(s *Session, reason string) {
	s.end()
	m.log.Info().Str("user", logger.HashUserID(s.UID)).Str("reason", reason).Msg("session closed")
	if m.onEnd != nil {
		m.onEnd(s.UID)
	}
}

// Sweep ends every session idle for longer than the TTL. Sessions with an
// active change watcher are never idle.
func (m *Manager) Sweep() int {
	now := m.now()

	m.mu.Lock()
	var idle []*Session
	for uid, s := range m.sessions {
		if s.idleSince(now) > m.idleTTL {
			idle = append(idle, s)
			delete(m.sessions, uid)
		}
	}
	m.mu.Unlock()

	for _, s := range idle {
		m.finish(s, "idle")
	}
	return len(idle)
}

// Run sweeps idle sessions until ctx ends.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.idleTTL / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				m.log.Debug().Int("count", n).Msg("swept idle sessions")
			}
		}
	}
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close ends every session and refuses new ones.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	all := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range all {
		m.finish(s, "shutdown")
	}
}
