package notify

import (
	"context"
	"slices"
	"sync"
)

// DefaultFeedSize bounds how many undelivered notices a user keeps.
const DefaultFeedSize = 50

// Feed queues notices per user until the client collects them. When a
// queue is full the oldest notice is dropped.
type Feed struct {
	mu    sync.Mutex
	size  int
	queue map[string][]Notice
	subs  map[string][]chan struct{}
}

func NewFeed(size int) *Feed {
	if size <= 0 {
		size = DefaultFeedSize
	}
	return &Feed{
		size:  size,
		queue: make(map[string][]Notice),
		subs:  make(map[string][]chan struct{}),
	}
}

func (f *Feed) Notify(ctx context.Context, uid string, n Notice) {
	f.mu.Lock()
	defer f.mu.Unlock()

	q := append(f.queue[uid], n)
	if len(q) > f.size {
		q = q[len(q)-f.size:]
	}
	f.queue[uid] = q

	for _, ch := range f.subs[uid] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Drain returns and clears the user's pending notices, oldest first.
func (f *Feed) Drain(uid string) []Notice {
	f.mu.Lock()
	defer f.mu.Unlock()

	q := f.queue[uid]
	delete(f.queue, uid)
	if q == nil {
		return []Notice{}
	}
	return q
}

// Pending returns the user's notices without clearing them.
func (f *Feed) Pending(uid string) []Notice {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.queue[uid])
}

// Watch returns a channel signalled whenever a notice arrives for uid, and
// a function releasing it.
func (f *Feed) Watch(uid string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	f.mu.Lock()
	f.subs[uid] = append(f.subs[uid], ch)
	f.mu.Unlock()

	return ch, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.subs[uid] = slices.DeleteFunc(f.subs[uid], func(x chan struct{}) bool { return x == ch })
		if len(f.subs[uid]) == 0 {
			delete(f.subs, uid)
		}
	}
}

// Forget drops everything queued for uid.
func (f *Feed) Forget(uid string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.queue, uid)
}
