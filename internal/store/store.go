// Package store provides the document-oriented persistence layer.
// Each logical collection (tags, people, notes) holds schemaless JSON
// documents addressed by UUID. The store offers no foreign keys, no
// uniqueness constraints on business fields, and no transactions — every
// invariant lives in the service layer above it.
//
// Two drivers exist: an in-memory driver for development and tests, and a
// Postgres driver that keeps each collection in an (id, doc jsonb) table.
package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned by collection operations when no document with the
// requested id exists. The repo layer translates it to domain.ErrNotFound.
var ErrNotFound = errors.New("document not found")

// Document is a schemaless JSON object as stored in a collection.
type Document = map[string]any

// Filter selects documents by field value. Eq matches scalar field equality;
// Has matches membership of a string value in an array-valued field.
// All conditions are ANDed. The zero Filter matches every document.
type Filter struct {
	Eq  map[string]any
	Has map[string]string
}

// Matches reports whether doc satisfies every condition in the filter.
// Used by the memory driver; the Postgres driver compiles the same filter
// to a JSONB containment query instead.
func (f Filter) Matches(doc Document) bool {
	for k, want := range f.Eq {
		if doc[k] != want {
			return false
		}
	}
	for k, want := range f.Has {
		arr, ok := doc[k].([]any)
		if !ok {
			return false
		}
		found := false
		for _, v := range arr {
			if v == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// containment builds the JSONB containment document equivalent to the filter:
// Eq conditions map to scalar members, Has conditions to single-element
// arrays ({"tags": ["<id>"]} is contained by any doc whose tags include it).
func (f Filter) containment() ([]byte, error) {
	m := map[string]any{}
	for k, v := range f.Eq {
		m[k] = v
	}
	for k, v := range f.Has {
		m[k] = []string{v}
	}
	return json.Marshal(m)
}

// Collection is one logical document collection.
// Documents are deep-copied across the boundary; mutating a returned
// Document never affects stored state.
type Collection interface {
	// Insert stores doc under id. The caller assigns the id.
	Insert(ctx context.Context, id uuid.UUID, doc Document) error

	// FindByID returns the document stored under id, or ErrNotFound.
	FindByID(ctx context.Context, id uuid.UUID) (Document, error)

	// Find returns every document matching the filter, oldest first.
	Find(ctx context.Context, f Filter) ([]Document, error)

	// Count returns the number of documents matching the filter.
	Count(ctx context.Context, f Filter) (int64, error)

	// UpdateByID replaces the document stored under id and returns the new
	// document, or ErrNotFound.
	UpdateByID(ctx context.Context, id uuid.UUID, doc Document) (Document, error)

	// DeleteByID removes and returns the document stored under id, or
	// ErrNotFound.
	DeleteByID(ctx context.Context, id uuid.UUID) (Document, error)
}

// Store bundles the three collections behind one handle with clear
// process-lifetime ownership: constructed at startup, closed at shutdown.
type Store interface {
	Tags() Collection
	People() Collection
	Notes() Collection
	Close()
}

// copyDoc deep-copies a document via a JSON round-trip. Inputs at this layer
// are always JSON-shaped, so the round-trip is lossless.
func copyDoc(doc Document) (Document, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var out Document
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
