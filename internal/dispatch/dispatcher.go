// Package dispatch issues store writes without waiting for them.
//
// Every operation returns as soon as the write is queued. Ids for new
// documents are allocated synchronously so callers can update their local
// view before the store acknowledges anything. Failures are reported
// through a notify.Notifier and are never retried.
package dispatch

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/budgetbolt/backend/internal/logger"
	"github.com/budgetbolt/backend/internal/notify"
	"github.com/budgetbolt/backend/internal/store"
	"github.com/budgetbolt/backend/internal/telemetry"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// DefaultTimeout bounds a single background write.
const DefaultTimeout = 15 * time.Second

// Op names a kind of write.
type Op string

const (
	OpCreate  Op = "create"
	OpReplace Op = "replace"
	OpMerge   Op = "merge"
	OpDelete  Op = "delete"
)

// WriteError is the settled error of a failed background write.
type WriteError struct {
	Op   Op
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Pending tracks one in-flight write. Callers may ignore it.
type Pending struct {
	ID   string
	Path string
	done chan struct{}
	err  error
}

// Done is closed when the write settles.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Err returns the settled error. It is only meaningful after Done is closed.
func (p *Pending) Err() error {
	select {
	case <-p.done:
		return p.err
	default:
		return nil
	}
}

// Wait blocks until the write settles or ctx ends.
func (p *Pending) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dispatcher runs writes in the background.
type Dispatcher struct {
	store    store.Store
	notifier notify.Notifier
	timeout  time.Duration
	log      zerolog.Logger

	mu    sync.Mutex
	group *errgroup.Group
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithTimeout bounds each background write.
func WithTimeout(d time.Duration) Option {
	return func(disp *Dispatcher) {
		if d > 0 {
			disp.timeout = d
		}
	}
}

// New creates a dispatcher writing to st and reporting failures to n.
func New(st store.Store, n notify.Notifier, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		store:    st,
		notifier: n,
		timeout:  DefaultTimeout,
		log:      logger.Component("dispatch"),
		group:    new(errgroup.Group),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Create writes a new document to collection under a freshly allocated id.
func (d *Dispatcher) Create(ctx context.Context, uid, collection string, data map[string]any) *Pending {
	id := d.store.NewID(collection)
	return d.run(ctx, uid, OpCreate, store.DocPath(collection, id), func(wctx context.Context) error {
		return d.store.Create(wctx, collection, id, data)
	})
}

// Replace overwrites the whole document at path.
func (d *Dispatcher) Replace(ctx context.Context, uid, path string, data map[string]any) *Pending {
	return d.run(ctx, uid, OpReplace, path, func(wctx context.Context) error {
		return d.store.Set(wctx, path, data)
	})
}

// Merge writes only the given fields; absent fields keep their stored values.
func (d *Dispatcher) Merge(ctx context.Context, uid, path string, partial map[string]any) *Pending {
	return d.run(ctx, uid, OpMerge, path, func(wctx context.Context) error {
		return d.store.Merge(wctx, path, partial)
	})
}

// Delete removes the document at path.
func (d *Dispatcher) Delete(ctx context.Context, uid, path string) *Pending {
	return d.run(ctx, uid, OpDelete, path, func(wctx context.Context) error {
		return d.store.Delete(wctx, path)
	})
}

// Flush waits for every write queued so far to settle. It returns the
// first failure among them, which has already been reported.
func (d *Dispatcher) Flush(ctx context.Context) error {
	d.mu.Lock()
	g := d.group
	d.group = new(errgroup.Group)
	d.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run(ctx context.Context, uid string, op Op, path string, write func(context.Context) error) *Pending {
	_, id := store.SplitPath(path)
	p := &Pending{ID: id, Path: path, done: make(chan struct{})}

	// the caller's request may finish before the write does
	base := context.WithoutCancel(ctx)

	// joined under the lock so Flush never swaps out a group mid-Go
	d.mu.Lock()
	defer d.mu.Unlock()

	d.group.Go(func() error {
		defer close(p.done)

		wctx, cancel := context.WithTimeout(base, d.timeout)
		defer cancel()

		collection, _ := store.SplitPath(path)
		_, name := store.SplitPath(collection)
		wctx, span := telemetry.Tracer().Start(wctx, "dispatch."+string(op),
			trace.WithAttributes(attribute.String("collection", name)))
		defer span.End()

		start := time.Now()
		err := write(wctx)
		log := d.log.With().
			Str("op", string(op)).
			Str("path", redactPath(path)).
			Dur("elapsed", time.Since(start)).
			Logger()

		if err == nil {
			log.Debug().Msg("write confirmed")
			return nil
		}

		p.err = &WriteError{Op: op, Path: path, Err: err}
		span.RecordError(err)
		span.SetStatus(codes.Error, "write failed")
		log.Error().Err(err).Msg("write failed")
		if d.notifier != nil {
			d.notifier.Notify(base, uid, failureNotice(op, path))
		}
		return p.err
	})

	return p
}

// redactPath replaces the user id segment of users/{uid}/... paths.
func redactPath(path string) string {
	parts := strings.Split(path, "/")
	if len(parts) > 1 && parts[0] == "users" {
		parts[1] = logger.HashUserID(parts[1])
	}
	return strings.Join(parts, "/")
}

var nouns = map[string]string{
	store.Transactions: "transaction",
	store.Categories:   "category",
	store.Goals:        "goal",
	store.Settings:     "settings",
}

func failureNotice(op Op, path string) notify.Notice {
	collection, _ := store.SplitPath(path)
	_, name := store.SplitPath(collection)
	noun, ok := nouns[name]
	if !ok {
		noun = "record"
	}

	verb := map[Op]string{
		OpCreate:  "save the new",
		OpReplace: "save the",
		OpMerge:   "update the",
		OpDelete:  "delete the",
	}[op]

	return notify.NewNotice(notify.LevelError, "Something went wrong",
		fmt.Sprintf("We couldn't %s %s. Please try again.", verb, noun))
}
