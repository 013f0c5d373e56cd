package store

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// WriteHook is consulted before every write. A non-nil error fails the write.
type WriteHook func(op, path string) error

type collWatcher struct {
	q  Query
	ch chan CollectionSnapshot
}

type docWatcher struct {
	ch chan DocumentSnapshot
}

// MemoryStore implements Store with in-memory storage and live watchers.
type MemoryStore struct {
	mu sync.RWMutex

	// collection path -> id -> fields
	collections map[string]map[string]map[string]any

	collWatchers map[string][]*collWatcher
	docWatchers  map[string][]*docWatcher

	hook WriteHook
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections:  make(map[string]map[string]map[string]any),
		collWatchers: make(map[string][]*collWatcher),
		docWatchers:  make(map[string][]*docWatcher),
	}
}

// SetWriteHook installs a hook used to simulate write failures.
func (m *MemoryStore) SetWriteHook(h WriteHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hook = h
}

func (m *MemoryStore) Get(ctx context.Context, path string) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.lookup(path)
	if !ok {
		return Document{}, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	return doc, nil
}

func (m *MemoryStore) List(ctx context.Context, q Query) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.query(q), nil
}

func (m *MemoryStore) Subscribe(ctx context.Context, q Query) (<-chan CollectionSnapshot, error) {
	w := &collWatcher{q: q, ch: make(chan CollectionSnapshot, 1)}

	m.mu.Lock()
	m.collWatchers[q.Collection] = append(m.collWatchers[q.Collection], w)
	offer(w.ch, CollectionSnapshot{Docs: m.query(q)})
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		defer m.mu.Unlock()
		m.collWatchers[q.Collection] = slices.DeleteFunc(m.collWatchers[q.Collection], func(x *collWatcher) bool { return x == w })
		close(w.ch)
	}()

	return w.ch, nil
}

func (m *MemoryStore) SubscribeDoc(ctx context.Context, path string) (<-chan DocumentSnapshot, error) {
	w := &docWatcher{ch: make(chan DocumentSnapshot, 1)}

	m.mu.Lock()
	m.docWatchers[path] = append(m.docWatchers[path], w)
	offer(w.ch, m.docSnapshot(path))
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		defer m.mu.Unlock()
		m.docWatchers[path] = slices.DeleteFunc(m.docWatchers[path], func(x *docWatcher) bool { return x == w })
		close(w.ch)
	}()

	return w.ch, nil
}

func (m *MemoryStore) NewID(collection string) string {
	return uuid.New().String()
}

func (m *MemoryStore) Create(ctx context.Context, collection, id string, data map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	path := DocPath(collection, id)
	if err := m.runHook("create", path); err != nil {
		return err
	}
	if _, ok := m.lookup(path); ok {
		return fmt.Errorf("%s: %w", path, ErrAlreadyExists)
	}

	m.put(collection, id, maps.Clone(data))
	m.broadcast(path)
	return nil
}

func (m *MemoryStore) Set(ctx context.Context, path string, data map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.runHook("set", path); err != nil {
		return err
	}
	collection, id := SplitPath(path)
	m.put(collection, id, maps.Clone(data))
	m.broadcast(path)
	return nil
}

func (m *MemoryStore) Merge(ctx context.Context, path string, data map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.runHook("merge", path); err != nil {
		return err
	}
	collection, id := SplitPath(path)
	fields := make(map[string]any)
	if existing, ok := m.collections[collection][id]; ok {
		maps.Copy(fields, existing)
	}
	maps.Copy(fields, data)
	m.put(collection, id, fields)
	m.broadcast(path)
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.runHook("delete", path); err != nil {
		return err
	}
	collection, id := SplitPath(path)
	if docs, ok := m.collections[collection]; ok {
		delete(docs, id)
	}
	m.broadcast(path)
	return nil
}

// Helpers below expect m.mu to be held.

func (m *MemoryStore) runHook(op, path string) error {
	if m.hook == nil {
		return nil
	}
	return m.hook(op, path)
}

func (m *MemoryStore) put(collection, id string, data map[string]any) {
	docs, ok := m.collections[collection]
	if !ok {
		docs = make(map[string]map[string]any)
		m.collections[collection] = docs
	}
	docs[id] = data
}

func (m *MemoryStore) lookup(path string) (Document, bool) {
	collection, id := SplitPath(path)
	data, ok := m.collections[collection][id]
	if !ok {
		return Document{}, false
	}
	return Document{ID: id, Path: path, Data: maps.Clone(data)}, true
}

func (m *MemoryStore) docSnapshot(path string) DocumentSnapshot {
	doc, ok := m.lookup(path)
	if !ok {
		_, id := SplitPath(path)
		doc = Document{ID: id, Path: path}
	}
	return DocumentSnapshot{Doc: doc, Exists: ok}
}

func (m *MemoryStore) query(q Query) []Document {
	docs := make([]Document, 0, len(m.collections[q.Collection]))
	for id, data := range m.collections[q.Collection] {
		docs = append(docs, Document{ID: id, Path: DocPath(q.Collection, id), Data: maps.Clone(data)})
	}

	slices.SortFunc(docs, func(a, b Document) int {
		if q.OrderBy != "" {
			c := compareValues(a.Data[q.OrderBy], b.Data[q.OrderBy])
			if q.Direction == Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return cmp.Compare(a.ID, b.ID)
	})

	if q.Limit > 0 && len(docs) > q.Limit {
		docs = docs[:q.Limit]
	}
	return docs
}

func (m *MemoryStore) broadcast(path string) {
	collection, _ := SplitPath(path)
	for _, w := range m.collWatchers[collection] {
		offer(w.ch, CollectionSnapshot{Docs: m.query(w.q)})
	}
	for _, w := range m.docWatchers[path] {
		offer(w.ch, m.docSnapshot(path))
	}
}

// offer replaces any undelivered snapshot with v so readers always see the latest state.
func offer[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func compareValues(a, b any) int {
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return cmp.Compare(av, bv)
		}
	case float64:
		if bv, ok := toFloat(b); ok {
			return cmp.Compare(av, bv)
		}
	case int64:
		if bv, ok := toFloat(b); ok {
			return cmp.Compare(float64(av), bv)
		}
	case int:
		if bv, ok := toFloat(b); ok {
			return cmp.Compare(float64(av), bv)
		}
	case nil:
		if b == nil {
			return 0
		}
		return -1
	}
	if b == nil {
		return 1
	}
	return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}
