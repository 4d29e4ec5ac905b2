package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore is an in-process ItemStore for tests and local development.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]Item
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]Item),
	}
}

// collection returns the named collection, creating it lazily.
// Caller must hold the write lock.
func (s *MemoryStore) collection(name string) map[string]Item {
	c, ok := s.collections[name]
	if !ok {
		c = make(map[string]Item)
		s.collections[name] = c
	}
	return c
}

func (s *MemoryStore) Put(ctx context.Context, collection string, item Item) error {
	id := item.ID()
	if id == "" {
		return fmt.Errorf("item has no id")
	}

	copied, err := cloneItem(item)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.collection(collection)[id] = copied
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string) (Item, error) {
	s.mu.RLock()
	item, ok := s.collections[collection][id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return cloneItem(item)
}

func (s *MemoryStore) Update(ctx context.Context, collection, id string, fields Item) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}

	copied, err := cloneItem(fields)
	if err != nil {
		return nil, err
	}
	merged := merge(item, copied)
	s.collection(collection)[id] = merged
	return cloneItem(merged)
}

func (s *MemoryStore) Scan(ctx context.Context, collection string, limit int) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]Item, 0, limit)
	for _, item := range s.collections[collection] {
		if len(items) >= limit {
			break
		}
		copied, err := cloneItem(item)
		if err != nil {
			return nil, err
		}
		items = append(items, copied)
	}
	return items, nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections[collection], id)
	return nil
}

// cloneItem deep-copies through JSON. Besides preventing aliasing, this
// gives callers the same value types (float64 numbers, map[string]any) that
// the network-backed stores produce.
func cloneItem(item Item) (Item, error) {
	data, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal item: %w", err)
	}
	var copied Item
	if err := json.Unmarshal(data, &copied); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item: %w", err)
	}
	return copied, nil
}
