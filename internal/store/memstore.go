package store

import (
	"context"
	"sync"
)

// MemoryStore is the in-memory Store used by tests. Load hands out deep
// copies so a caller mutating its snapshot cannot leak changes past Save.
type MemoryStore struct {
	mu  sync.Mutex
	doc *Document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{doc: Seed()}
}

func NewMemoryStoreWith(doc *Document) *MemoryStore {
	return &MemoryStore{doc: doc.Clone()}
}

func (m *MemoryStore) Load(_ context.Context) (*Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.doc.Clone(), nil
}

func (m *MemoryStore) Save(_ context.Context, doc *Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.doc = doc.Clone()
	return nil
}
