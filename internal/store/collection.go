package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/biharichatkaraa-byte/bihari-chatkara-sub000/internal/model"
)

// Collection is a typed view over one named collection, handling the
// JSON encoding at the boundary so callers work with model records.
type Collection[T model.Record] struct {
	store Store
	name  string
}

// NewCollection creates a typed view over the named collection.
func NewCollection[T model.Record](s Store, name string) *Collection[T] {
	return &Collection[T]{store: s, name: name}
}

// Name returns the underlying collection name.
func (c *Collection[T]) Name() string { return c.name }

// List returns the full collection snapshot.
func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	docs, err := c.store.List(ctx, c.name)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c.name, err)
	}
	return Decode[T](c.name, docs)
}

// Add upserts a single record.
func (c *Collection[T]) Add(ctx context.Context, rec T) error {
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s record: %w", c.name, err)
	}
	return c.store.Add(ctx, c.name, rec.RecordID(), doc)
}

// Update upserts a single record keyed by its id.
func (c *Collection[T]) Update(ctx context.Context, rec T) error {
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s record: %w", c.name, err)
	}
	return c.store.Update(ctx, c.name, rec.RecordID(), doc)
}

// Delete removes a record by id. Deleting a missing id is a no-op.
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	return c.store.Delete(ctx, c.name, id)
}

// BulkAdd upserts a batch of records.
func (c *Collection[T]) BulkAdd(ctx context.Context, recs []T) error {
	docs, err := encodeBatch(c.name, recs)
	if err != nil {
		return err
	}
	return c.store.BulkAdd(ctx, c.name, docs)
}

// BulkUpdate upserts a batch of records keyed by their ids.
func (c *Collection[T]) BulkUpdate(ctx context.Context, recs []T) error {
	if len(recs) == 0 {
		return nil
	}
	docs, err := encodeBatch(c.name, recs)
	if err != nil {
		return err
	}
	return c.store.BulkUpdate(ctx, c.name, docs)
}

// BulkDelete removes a batch of records by id.
func (c *Collection[T]) BulkDelete(ctx context.Context, ids []string) error {
	return c.store.BulkDelete(ctx, c.name, ids)
}

func encodeBatch[T model.Record](name string, recs []T) (map[string][]byte, error) {
	docs := make(map[string][]byte, len(recs))
	for _, rec := range recs {
		doc, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("encode %s record: %w", name, err)
		}
		docs[rec.RecordID()] = doc
	}
	return docs, nil
}

// Decode unmarshals a raw snapshot into model records.
func Decode[T model.Record](name string, docs [][]byte) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		var rec T
		if err := json.Unmarshal(doc, &rec); err != nil {
			return nil, fmt.Errorf("decode %s record: %w", name, err)
		}
		out = append(out, rec)
	}
	return out, nil
}
