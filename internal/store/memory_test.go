package store

import (
	"context"
	"errors"
	"testing"
)

func TestMemory_AddListDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if err := m.Add(ctx, Ingredients, "i-1", []byte(`{"id":"i-1"}`)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := m.Add(ctx, Ingredients, "i-2", []byte(`{"id":"i-2"}`)); err != nil {
		t.Fatalf("add: %v", err)
	}

	docs, err := m.List(ctx, Ingredients)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 docs, got %d", len(docs))
	}
	// Snapshots come back in id order.
	if string(docs[0]) != `{"id":"i-1"}` {
		t.Errorf("unexpected first doc: %s", docs[0])
	}

	if err := m.Delete(ctx, Ingredients, "i-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	docs, _ = m.List(ctx, Ingredients)
	if len(docs) != 1 {
		t.Fatalf("expected 1 doc after delete, got %d", len(docs))
	}
}

func TestMemory_UpdateIsLastWriteWins(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_ = m.Add(ctx, Orders, "o-1", []byte(`{"v":1}`))
	if err := m.Update(ctx, Orders, "o-1", []byte(`{"v":2}`)); err != nil {
		t.Fatalf("update: %v", err)
	}
	docs, _ := m.List(ctx, Orders)
	if string(docs[0]) != `{"v":2}` {
		t.Errorf("expected second write to win, got %s", docs[0])
	}

	// Updating a missing id is an upsert, not an error.
	if err := m.Update(ctx, Orders, "o-2", []byte(`{"v":3}`)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
}

func TestMemory_BulkOps(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	err := m.BulkAdd(ctx, Customers, map[string][]byte{
		"c-1": []byte(`{"id":"c-1"}`),
		"c-2": []byte(`{"id":"c-2"}`),
		"c-3": []byte(`{"id":"c-3"}`),
	})
	if err != nil {
		t.Fatalf("bulk add: %v", err)
	}

	if err := m.BulkDelete(ctx, Customers, []string{"c-1", "c-3", "c-missing"}); err != nil {
		t.Fatalf("bulk delete: %v", err)
	}
	docs, _ := m.List(ctx, Customers)
	if len(docs) != 1 || string(docs[0]) != `{"id":"c-2"}` {
		t.Fatalf("unexpected remainder: %v", docs)
	}
}

func TestMemory_UnknownCollection(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if _, err := m.List(ctx, "receipts"); !errors.Is(err, ErrUnknownCollection) {
		t.Fatalf("expected ErrUnknownCollection, got %v", err)
	}
	if err := m.Add(ctx, "receipts", "r-1", nil); !errors.Is(err, ErrUnknownCollection) {
		t.Fatalf("expected ErrUnknownCollection, got %v", err)
	}
}

func TestMemory_ListCopiesDocuments(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	_ = m.Add(ctx, Users, "u-1", []byte(`{"id":"u-1"}`))

	docs, _ := m.List(ctx, Users)
	docs[0][0] = 'X'

	again, _ := m.List(ctx, Users)
	if string(again[0]) != `{"id":"u-1"}` {
		t.Errorf("stored doc was mutated through a snapshot: %s", again[0])
	}
}
