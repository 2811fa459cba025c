package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps collections in process memory. Documents are copied in
// and out through JSON so callers never share maps with the store.
type MemoryStore struct {
	mu          sync.Mutex
	collections map[string]*memoryCollection
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*memoryCollection)}
}

func (s *MemoryStore) Collection(name string) Collection {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[name]
	if !ok {
		c = &memoryCollection{name: name, docs: make(map[string]map[string]any)}
		s.collections[name] = c
	}
	return c
}

func (s *MemoryStore) Driver() string { return "memory" }

func (s *MemoryStore) Close() error { return nil }

type memoryCollection struct {
	name string
	mu   sync.RWMutex
	docs map[string]map[string]any
}

func (c *memoryCollection) Name() string { return c.name }

func (c *memoryCollection) Get(ctx context.Context, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}

	c.mu.RLock()
	data, ok := c.docs[id]
	c.mu.RUnlock()
	if !ok {
		return Document{}, ErrNotFound
	}

	cp, err := Encode(data)
	if err != nil {
		return Document{}, err
	}
	return Document{ID: id, Data: cp}, nil
}

func (c *memoryCollection) Find(ctx context.Context, q Query) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	docs := make([]Document, 0, len(c.docs))
	for id, data := range c.docs {
		cp, err := Encode(data)
		if err != nil {
			c.mu.RUnlock()
			return nil, err
		}
		docs = append(docs, Document{ID: id, Data: cp})
	}
	c.mu.RUnlock()

	return apply(docs, q), nil
}

func (c *memoryCollection) Add(ctx context.Context, data map[string]any) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}

	cp, err := Encode(data)
	if err != nil {
		return Document{}, err
	}
	id := uuid.NewString()

	c.mu.Lock()
	c.docs[id] = cp
	c.mu.Unlock()

	out, err := Encode(cp)
	if err != nil {
		return Document{}, err
	}
	return Document{ID: id, Data: out}, nil
}

func (c *memoryCollection) Update(ctx context.Context, id string, data map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	patch, err := Encode(data)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	existing, ok := c.docs[id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range patch {
		existing[k] = v
	}
	return nil
}

func (c *memoryCollection) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.docs[id]; !ok {
		return ErrNotFound
	}
	delete(c.docs, id)
	return nil
}
