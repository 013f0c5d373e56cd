package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore implements the Store interface using Firestore
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a new Firestore-backed store
func NewFirestoreStore(client *firestore.Client) Store {
	return &FirestoreStore{
		client: client,
	}
}

func (s *FirestoreStore) query(q Query) firestore.Query {
	query := s.client.Collection(q.Collection).Query
	if q.OrderBy != "" {
		dir := firestore.Asc
		if q.Direction == Desc {
			dir = firestore.Desc
		}
		query = query.OrderBy(q.OrderBy, dir)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	return query
}

func toDocument(snap *firestore.DocumentSnapshot) Document {
	return Document{
		ID:   snap.Ref.ID,
		Path: relativePath(snap.Ref),
		Data: snap.Data(),
	}
}

// relativePath strips the database prefix Firestore puts on ref paths.
func relativePath(ref *firestore.DocumentRef) string {
	if ref.Parent == nil {
		return ref.ID
	}
	return DocPath(collectionPath(ref.Parent), ref.ID)
}

func collectionPath(ref *firestore.CollectionRef) string {
	if ref.Parent == nil {
		return ref.ID
	}
	return DocPath(relativePath(ref.Parent), ref.ID)
}

// Get retrieves a single document
func (s *FirestoreStore) Get(ctx context.Context, path string) (Document, error) {
	snap, err := s.client.Doc(path).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return Document{}, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return Document{}, fmt.Errorf("failed to get %s: %w", path, err)
	}
	return toDocument(snap), nil
}

// List runs a one-shot query
func (s *FirestoreStore) List(ctx context.Context, q Query) ([]Document, error) {
	snaps, err := s.query(q).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", q.Collection, err)
	}
	docs := make([]Document, 0, len(snaps))
	for _, snap := range snaps {
		docs = append(docs, toDocument(snap))
	}
	return docs, nil
}

// Subscribe streams the query's full result set on every change
func (s *FirestoreStore) Subscribe(ctx context.Context, q Query) (<-chan CollectionSnapshot, error) {
	it := s.query(q).Snapshots(ctx)
	out := make(chan CollectionSnapshot, 1)

	go func() {
		defer close(out)
		defer it.Stop()

		for {
			qs, err := it.Next()
			if err != nil {
				if ctx.Err() == nil && status.Code(err) != codes.Canceled {
					send(ctx, out, CollectionSnapshot{Err: fmt.Errorf("watch %s: %w", q.Collection, err)})
				}
				return
			}

			snaps, err := qs.Documents.GetAll()
			if err != nil {
				send(ctx, out, CollectionSnapshot{Err: fmt.Errorf("read %s snapshot: %w", q.Collection, err)})
				return
			}
			docs := make([]Document, 0, len(snaps))
			for _, snap := range snaps {
				docs = append(docs, toDocument(snap))
			}
			if !send(ctx, out, CollectionSnapshot{Docs: docs}) {
				return
			}
		}
	}()

	return out, nil
}

// SubscribeDoc streams the state of one document, including its absence
func (s *FirestoreStore) SubscribeDoc(ctx context.Context, path string) (<-chan DocumentSnapshot, error) {
	it := s.client.Doc(path).Snapshots(ctx)
	out := make(chan DocumentSnapshot, 1)
	_, id := SplitPath(path)

	go func() {
		defer close(out)
		defer it.Stop()

		for {
			snap, err := it.Next()
			if err != nil && status.Code(err) != codes.NotFound {
				if ctx.Err() == nil && status.Code(err) != codes.Canceled {
					send(ctx, out, DocumentSnapshot{Err: fmt.Errorf("watch %s: %w", path, err)})
				}
				return
			}

			ds := DocumentSnapshot{Doc: Document{ID: id, Path: path}}
			if snap != nil && snap.Exists() {
				ds.Doc.Data = snap.Data()
				ds.Exists = true
			}
			if !send(ctx, out, ds) {
				return
			}
		}
	}()

	return out, nil
}

// NewID allocates a Firestore auto-id
func (s *FirestoreStore) NewID(collection string) string {
	return s.client.Collection(collection).NewDoc().ID
}

// Create writes a new document, failing if the id exists
func (s *FirestoreStore) Create(ctx context.Context, collection, id string, data map[string]any) error {
	_, err := s.client.Collection(collection).Doc(id).Create(ctx, data)
	if status.Code(err) == codes.AlreadyExists {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrAlreadyExists)
	}
	return err
}

// Set replaces a document
func (s *FirestoreStore) Set(ctx context.Context, path string, data map[string]any) error {
	_, err := s.client.Doc(path).Set(ctx, data)
	return err
}

// Merge writes the given fields only
func (s *FirestoreStore) Merge(ctx context.Context, path string, data map[string]any) error {
	_, err := s.client.Doc(path).Set(ctx, data, firestore.MergeAll)
	return err
}

// Delete removes a document
func (s *FirestoreStore) Delete(ctx context.Context, path string) error {
	_, err := s.client.Doc(path).Delete(ctx)
	return err
}

func send[T any](ctx context.Context, ch chan<- T, v T) bool {
	select {
	case ch <- v:
		return true
	case <-ctx.Done():
		return false
	}
}
