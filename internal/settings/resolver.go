// Package settings resolves a user's preferences from their settings record.
package settings

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/budgetbolt/backend/internal/dispatch"
	"github.com/budgetbolt/backend/internal/logger"
	"github.com/budgetbolt/backend/internal/model"
	"github.com/budgetbolt/backend/internal/store"
	"github.com/rs/zerolog"
)

// ErrNoUser is returned by Update when no user is signed in.
var ErrNoUser = errors.New("no user signed in")

// State is the resolver's lifecycle position.
type State int

const (
	Uninitialized State = iota
	Loading
	Loaded
	Creating
	Ready
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Creating:
		return "creating"
	case Ready:
		return "ready"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Writer is the subset of the dispatcher the resolver writes through.
type Writer interface {
	Replace(ctx context.Context, uid, path string, data map[string]any) *dispatch.Pending
	Merge(ctx context.Context, uid, path string, partial map[string]any) *dispatch.Pending
}

// Resolver owns the cached settings of one user. Until the stored record
// is known it serves the defaults, so readers never see an empty value.
// A missing record is created with the defaults; updates are merged.
type Resolver struct {
	store    store.Store
	writer   Writer
	onChange func()
	log      zerolog.Logger

	mu      sync.RWMutex
	uid     string
	gen     uint64
	state   State
	current model.UserSettings
	cancel  context.CancelFunc
	ready   chan struct{}
}

// NewResolver creates an idle resolver. onChange, if set, runs after every
// change to the resolved settings.
func NewResolver(st store.Store, w Writer, onChange func()) *Resolver {
	return &Resolver{
		store:    st,
		writer:   w,
		onChange: onChange,
		log:      logger.Component("settings"),
		current:  model.DefaultSettings(),
		ready:    make(chan struct{}),
	}
}

// Start subscribes to the settings of uid, replacing any previous user.
// An empty uid is the signed-out state and resets the resolver.
func (r *Resolver) Start(ctx context.Context, uid string) error {
	r.Reset()
	if uid == "" {
		return nil
	}

	sctx, cancel := context.WithCancel(ctx)
	ch, err := r.store.SubscribeDoc(sctx, store.SettingsPath(uid))
	if err != nil {
		cancel()
		return fmt.Errorf("failed to subscribe to settings: %w", err)
	}

	r.mu.Lock()
	r.uid = uid
	r.gen++
	gen := r.gen
	r.cancel = cancel
	r.state = Loading
	r.current = model.DefaultSettings()
	r.ready = make(chan struct{})
	r.mu.Unlock()

	go func() {
		for snap := range ch {
			r.apply(sctx, gen, snap)
		}
	}()
	return nil
}

// Reset drops the subscription and returns to the defaults.
func (r *Resolver) Reset() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	changed := r.uid != ""
	r.gen++
	r.uid = ""
	r.state = Uninitialized
	r.current = model.DefaultSettings()
	r.markReady()
	r.mu.Unlock()

	if changed {
		r.changed()
	}
}

func (r *Resolver) apply(ctx context.Context, gen uint64, snap store.DocumentSnapshot) {
	r.mu.Lock()
	if gen != r.gen {
		r.mu.Unlock()
		return
	}
	log := r.log.With().Str("user", logger.HashUserID(r.uid)).Logger()

	switch {
	case snap.Err != nil:
		log.Error().Err(snap.Err).Msg("settings subscription failed")
		if r.state == Loading {
			r.state = Ready
		}
		r.markReady()
		r.mu.Unlock()
		return

	case snap.Exists:
		s := model.DefaultSettings()
		if err := snap.Doc.DataTo(&s); err != nil {
			log.Warn().Err(err).Msg("stored settings unreadable, keeping current")
			s = r.current
		}
		r.current = s
		if r.state == Loading {
			r.state = Loaded
			log.Debug().Msg("settings loaded")
		}
		r.state = Ready
		r.markReady()
		r.mu.Unlock()
		r.changed()
		return

	default:
		if r.state == Creating {
			r.mu.Unlock()
			return
		}
		uid := r.uid
		r.state = Creating
		r.current = model.DefaultSettings()
		r.mu.Unlock()

		log.Info().Msg("no settings record, creating defaults")
		r.create(ctx, gen, uid)

		r.mu.Lock()
		if gen == r.gen {
			r.markReady()
		}
		r.mu.Unlock()
		r.changed()
	}
}

func (r *Resolver) create(ctx context.Context, gen uint64, uid string) {
	data, err := store.ToData(model.DefaultSettings())
	if err != nil {
		r.log.Error().Err(err).Msg("failed to encode default settings")
		return
	}

	p := r.writer.Replace(ctx, uid, store.SettingsPath(uid), data)
	if p == nil {
		return
	}
	go func() {
		<-p.Done()
		r.mu.Lock()
		defer r.mu.Unlock()
		if gen == r.gen && r.state == Creating {
			r.state = Ready
		}
	}()
}

// markReady must be called with r.mu held.
func (r *Resolver) markReady() {
	select {
	case <-r.ready:
	default:
		close(r.ready)
	}
}

func (r *Resolver) changed() {
	if r.onChange != nil {
		r.onChange()
	}
}

// Settings returns the resolved settings, or the defaults while loading.
func (r *Resolver) Settings() model.UserSettings {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Loading reports whether a signed-in user's settings are still unknown.
func (r *Resolver) Loading() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state == Loading
}

// State returns the lifecycle state.
func (r *Resolver) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// UserID returns the user being resolved, or "" when signed out.
func (r *Resolver) UserID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.uid
}

// WaitLoaded blocks until the first snapshot has been handled or ctx ends.
func (r *Resolver) WaitLoaded(ctx context.Context) error {
	r.mu.RLock()
	ready := r.ready
	r.mu.RUnlock()

	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Update validates patch, merges it into the local settings immediately
// and dispatches the same fields as a merge write. Fields absent from the
// patch are never written.
func (r *Resolver) Update(ctx context.Context, patch model.SettingsPatch) (model.UserSettings, *dispatch.Pending, error) {
	if err := patch.Validate(); err != nil {
		return r.Settings(), nil, err
	}

	r.mu.Lock()
	uid := r.uid
	if uid == "" {
		r.mu.Unlock()
		return r.current, nil, ErrNoUser
	}
	r.current = patch.Apply(r.current)
	updated := r.current
	r.mu.Unlock()

	if patch.Empty() {
		return updated, nil, nil
	}

	r.changed()
	p := r.writer.Merge(ctx, uid, store.SettingsPath(uid), patch.Fields())
	return updated, p, nil
}
