package docstore

import (
	"context"
	"slices"
	"sync"
)

type memoryCollection struct {
	order []string
	data  map[string][]byte
}

// MemoryStore keeps documents in process memory.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*memoryCollection)}
}

func memoryKey(ownerUID, collection string) string {
	return ownerUID + "/" + collection
}

func (s *MemoryStore) List(_ context.Context, ownerUID, collection string) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[memoryKey(ownerUID, collection)]
	if !ok {
		return nil, nil
	}
	docs := make([]Document, 0, len(c.order))
	for _, id := range c.order {
		docs = append(docs, Document{ID: id, Data: slices.Clone(c.data[id])})
	}
	return docs, nil
}

func (s *MemoryStore) Put(_ context.Context, ownerUID, collection, id string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := memoryKey(ownerUID, collection)
	c, ok := s.collections[key]
	if !ok {
		c = &memoryCollection{data: make(map[string][]byte)}
		s.collections[key] = c
	}
	if _, exists := c.data[id]; !exists {
		c.order = append(c.order, id)
	}
	c.data[id] = slices.Clone(data)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, ownerUID, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[memoryKey(ownerUID, collection)]
	if !ok {
		return nil
	}
	if _, exists := c.data[id]; !exists {
		return nil
	}
	delete(c.data, id)
	c.order = slices.DeleteFunc(c.order, func(v string) bool { return v == id })
	return nil
}

func (s *MemoryStore) Close() error { return nil }
