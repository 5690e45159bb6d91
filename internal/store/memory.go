package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Memory is the in-memory store driver. It is safe for concurrent use and
// keeps insertion order so Find results are deterministic.
// Selected with STORE_DRIVER=memory; also the workhorse of the unit tests.
type Memory struct {
	tags   *memCollection
	people *memCollection
	notes  *memCollection
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		tags:   newMemCollection(),
		people: newMemCollection(),
		notes:  newMemCollection(),
	}
}

func (m *Memory) Tags() Collection   { return m.tags }
func (m *Memory) People() Collection { return m.people }
func (m *Memory) Notes() Collection  { return m.notes }

// Close is a no-op; the driver holds no external resources.
func (m *Memory) Close() {}

type memCollection struct {
	mu    sync.RWMutex
	docs  map[uuid.UUID]Document
	order []uuid.UUID
}

func newMemCollection() *memCollection {
	return &memCollection{docs: map[uuid.UUID]Document{}}
}

func (c *memCollection) Insert(_ context.Context, id uuid.UUID, doc Document) error {
	stored, err := copyDoc(doc)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.docs[id]; !exists {
		c.order = append(c.order, id)
	}
	c.docs[id] = stored
	return nil
}

func (c *memCollection) FindByID(_ context.Context, id uuid.UUID) (Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	doc, ok := c.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyDoc(doc)
}

func (c *memCollection) Find(_ context.Context, f Filter) ([]Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := []Document{}
	for _, id := range c.order {
		doc, ok := c.docs[id]
		if !ok || !f.Matches(doc) {
			continue
		}
		cp, err := copyDoc(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, cp)
	}
	return out, nil
}

func (c *memCollection) Count(_ context.Context, f Filter) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var n int64
	for _, doc := range c.docs {
		if f.Matches(doc) {
			n++
		}
	}
	return n, nil
}

func (c *memCollection) UpdateByID(_ context.Context, id uuid.UUID, doc Document) (Document, error) {
	stored, err := copyDoc(doc)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.docs[id]; !ok {
		return nil, ErrNotFound
	}
	c.docs[id] = stored
	return copyDoc(stored)
}

func (c *memCollection) DeleteByID(_ context.Context, id uuid.UUID) (Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	doc, ok := c.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(c.docs, id)
	for i, oid := range c.order {
		if oid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return doc, nil
}
