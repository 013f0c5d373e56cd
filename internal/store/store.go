package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

//go:generate mockgen -source=store.go -destination=store_mock.go -package=store

var (
	// ErrNotFound is returned by Get when no document exists at the path.
	ErrNotFound = errors.New("document not found")
	// ErrAlreadyExists is returned by Create when the id is taken.
	ErrAlreadyExists = errors.New("document already exists")
)

// Collection names under users/{uid}.
const (
	Transactions = "transactions"
	Categories   = "categories"
	Goals        = "goals"
	Settings     = "settings"
	PushTokens   = "pushTokens"

	settingsDocID = "main"
)

// Direction orders query results.
type Direction int

const (
	Asc Direction = iota
	Desc
)

// Query selects documents from one collection.
type Query struct {
	Collection string
	OrderBy    string
	Direction  Direction
	Limit      int
}

// Document is a stored record addressed by path. Data holds the stored
// fields; the id is never part of Data.
type Document struct {
	ID   string
	Path string
	Data map[string]any
}

// CollectionSnapshot is the full result set of a query at one point in time.
type CollectionSnapshot struct {
	Docs []Document
	Err  error
}

// DocumentSnapshot is the state of one document. Exists is false when it is absent.
type DocumentSnapshot struct {
	Doc    Document
	Exists bool
	Err    error
}

// Store defines the document operations used by BudgetBolt. Subscriptions
// deliver a complete snapshot on every change and close their channel when
// ctx is cancelled.
type Store interface {
	Get(ctx context.Context, path string) (Document, error)
	List(ctx context.Context, q Query) ([]Document, error)
	Subscribe(ctx context.Context, q Query) (<-chan CollectionSnapshot, error)
	SubscribeDoc(ctx context.Context, path string) (<-chan DocumentSnapshot, error)

	// NewID allocates a document id without touching the database.
	NewID(collection string) string
	Create(ctx context.Context, collection, id string, data map[string]any) error
	// Set replaces the whole document.
	Set(ctx context.Context, path string, data map[string]any) error
	// Merge writes only the given fields, creating the document if needed.
	Merge(ctx context.Context, path string, data map[string]any) error
	Delete(ctx context.Context, path string) error
}

// UserCollection returns the path of a per-user collection.
func UserCollection(uid, name string) string {
	return "users/" + uid + "/" + name
}

// DocPath joins a collection path and a document id.
func DocPath(collection, id string) string {
	return collection + "/" + id
}

// SettingsPath is the path of a user's settings singleton.
func SettingsPath(uid string) string {
	return DocPath(UserCollection(uid, Settings), settingsDocID)
}

// SplitPath separates a document path into its collection and id.
func SplitPath(path string) (collection, id string) {
	i := strings.LastIndex(path, "/")
	if i < 0 {
		return "", path
	}
	return path[:i], path[i+1:]
}

// DataTo decodes the document into v, populating an "id" field from the document id.
func (d Document) DataTo(v any) error {
	fields := make(map[string]any, len(d.Data)+1)
	for k, val := range d.Data {
		fields[k] = val
	}
	fields["id"] = d.ID

	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", d.Path, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", d.Path, err)
	}
	return nil
}

// ToData converts a record to stored fields, dropping its id.
func ToData(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	delete(fields, "id")
	return fields, nil
}
