// Package repo provides typed repositories over the document store.
// Each resource has its own file with an interface and a document-collection
// implementation. The service layer depends on these interfaces, not the
// concrete implementations, so tests can inject hand-written mocks.
package repo

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dkeeling/lifelog/internal/store"
)

// toDoc converts a domain value into a store document via its JSON form.
func toDoc(v any) (store.Document, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc store.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// fromDoc converts a store document back into a domain value.
func fromDoc[T any](doc store.Document) (T, error) {
	var out T
	raw, err := json.Marshal(doc)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, err
	}
	return out, nil
}

// wrapNotFound translates the store's not-found sentinel into the domain's,
// preserving the operation prefix used throughout this package.
func wrapNotFound(op string, err error, notFound error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, notFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
