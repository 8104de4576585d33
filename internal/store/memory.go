package store

import (
	"context"
	"sort"
	"sync"
)

// Memory is the in-process fallback store used when no database is
// reachable at startup. Contents live for the process lifetime only.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]map[string][]byte
}

// NewMemory creates an empty in-memory store with all known collections.
func NewMemory() *Memory {
	m := &Memory{collections: make(map[string]map[string][]byte, len(Names))}
	for _, name := range Names {
		m.collections[name] = make(map[string][]byte)
	}
	return m
}

func (m *Memory) List(_ context.Context, collection string) ([][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	docs, ok := m.collections[collection]
	if !ok {
		return nil, ErrUnknownCollection
	}
	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([][]byte, 0, len(ids))
	for _, id := range ids {
		doc := make([]byte, len(docs[id]))
		copy(doc, docs[id])
		out = append(out, doc)
	}
	return out, nil
}

func (m *Memory) Add(_ context.Context, collection, id string, doc []byte) error {
	return m.put(collection, id, doc)
}

func (m *Memory) Update(_ context.Context, collection, id string, doc []byte) error {
	return m.put(collection, id, doc)
}

func (m *Memory) Delete(_ context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	docs, ok := m.collections[collection]
	if !ok {
		return ErrUnknownCollection
	}
	delete(docs, id)
	return nil
}

func (m *Memory) BulkAdd(ctx context.Context, collection string, docs map[string][]byte) error {
	return m.putAll(collection, docs)
}

func (m *Memory) BulkUpdate(ctx context.Context, collection string, docs map[string][]byte) error {
	return m.putAll(collection, docs)
}

func (m *Memory) BulkDelete(_ context.Context, collection string, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	docs, ok := m.collections[collection]
	if !ok {
		return ErrUnknownCollection
	}
	for _, id := range ids {
		delete(docs, id)
	}
	return nil
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) put(collection, id string, doc []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	docs, ok := m.collections[collection]
	if !ok {
		return ErrUnknownCollection
	}
	cp := make([]byte, len(doc))
	copy(cp, doc)
	docs[id] = cp
	return nil
}

func (m *Memory) putAll(collection string, in map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	docs, ok := m.collections[collection]
	if !ok {
		return ErrUnknownCollection
	}
	for id, doc := range in {
		cp := make([]byte, len(doc))
		copy(cp, doc)
		docs[id] = cp
	}
	return nil
}
